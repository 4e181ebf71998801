//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"testing"

	"github.com/joho/godotenv"
)

func TestMain(m *testing.M) {
	if err := godotenv.Load("../.outputs.env"); err != nil {
		panic(fmt.Errorf("could not load .outputs.env: %w", err))
	}

	os.Exit(m.Run())
}

func requireEnv(t *testing.T, name string) string {
	t.Helper()

	v := os.Getenv(name)
	if v == "" {
		t.Skipf("%s is not set", name)
	}
	return v
}
