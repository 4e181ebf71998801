package config

import "github.com/aws/aws-lambda-go/lambdacontext"

// Deployment modes reported by GetDeploymentMode
const (
	ModeServerless = "serverless"
	ModeServer     = "server"
)

// functionName is read once by lambdacontext from AWS_LAMBDA_FUNCTION_NAME
var functionName = lambdacontext.FunctionName

// IsServerlessMode reports whether the process is hosted by AWS Lambda
func IsServerlessMode() bool {
	return functionName != ""
}

// GetDeploymentMode returns ModeServerless inside Lambda and ModeServer otherwise
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return ModeServerless
	}
	return ModeServer
}
