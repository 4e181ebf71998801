// Package sinktest provides Sink implementations for tests.
package sinktest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"event-driven-flow/internal/models"
)

// Expectation describes what every message handed to an ExpectingSink must look like.
// Detail is a JSON object compared field by field; its "id" field is only required
// to be a string, whatever value the expectation carries.
type Expectation struct {
	Source     string
	Detail     string
	DetailType string
}

// ExpectingSink fails the test as soon as a message does not match the expectation
// and otherwise acknowledges every call.
type ExpectingSink struct {
	t      testing.TB
	expect Expectation

	mu    sync.Mutex
	calls int
}

// NewExpectingSink creates a sink bound to t
func NewExpectingSink(t testing.TB, expect Expectation) *ExpectingSink {
	return &ExpectingSink{t: t, expect: expect}
}

// Send checks every message against the expectation
func (s *ExpectingSink) Send(_ context.Context, messages []models.OutgoingMessage) error {
	s.t.Helper()

	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	require.NotEmpty(s.t, messages, "sink received an empty batch")

	var expected map[string]interface{}
	require.NoError(s.t, json.Unmarshal([]byte(s.expect.Detail), &expected), "expectation detail is not a JSON object")

	for _, msg := range messages {
		require.Equal(s.t, s.expect.Source, msg.Source, "source")
		require.Equal(s.t, s.expect.DetailType, msg.DetailType, "detail type")

		raw, err := msg.DetailJSON()
		require.NoError(s.t, err)

		var actual map[string]interface{}
		require.NoError(s.t, json.Unmarshal([]byte(raw), &actual))

		for key, want := range expected {
			if key == "id" {
				continue
			}
			require.Equal(s.t, want, actual[key], "detail.%s", key)
		}

		_, isString := actual["id"].(string)
		require.True(s.t, isString, "detail.id must be a string, got %v", actual["id"])
	}

	return nil
}

// Calls returns how many times Send was invoked
func (s *ExpectingSink) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Recorder keeps every batch it receives and can be scripted to fail.
// FailOn is the 1-based call number that returns Err; zero never fails.
type Recorder struct {
	FailOn int
	Err    error

	mu      sync.Mutex
	batches [][]models.OutgoingMessage
}

// Send records the batch and returns Err on the scripted call
func (r *Recorder) Send(_ context.Context, messages []models.OutgoingMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := append([]models.OutgoingMessage(nil), messages...)
	r.batches = append(r.batches, batch)

	if r.FailOn > 0 && len(r.batches) == r.FailOn {
		return r.Err
	}
	return nil
}

// Calls returns how many times Send was invoked
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

// Batches returns a copy of every batch received, in call order
func (r *Recorder) Batches() [][]models.OutgoingMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]models.OutgoingMessage(nil), r.batches...)
}

// Messages returns every message received, flattened in call order
func (r *Recorder) Messages() []models.OutgoingMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []models.OutgoingMessage
	for _, b := range r.batches {
		all = append(all, b...)
	}
	return all
}
