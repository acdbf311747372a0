package awserr

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

var throttlingCodes = map[string]bool{
	"ThrottlingException":      true,
	"TooManyRequestsException": true,
}

var transientCodes = map[string]bool{
	"ServiceUnavailableException": true,
	"InternalServerException":     true,
	"ModelTimeoutException":       true,
	"ModelNotReadyException":      true,
	"RequestTimeout":              true,
}

// Classify returns the service error code of err, if any, and whether a retry
// may succeed.
func Classify(err error) (code string, transient bool) {
	if err == nil {
		return "", false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
		if throttlingCodes[code] || transientCodes[code] {
			return code, true
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status := respErr.HTTPStatusCode()
		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			return code, true
		}
		return code, false
	}

	if code != "" {
		return code, false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "", true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "", true
	}

	return "", looksTransient(err.Error())
}

// IsThrottling reports whether the service rejected the call for rate reasons.
func IsThrottling(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return throttlingCodes[apiErr.ErrorCode()]
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == http.StatusTooManyRequests
	}

	msg := err.Error()
	return strings.Contains(msg, "ThrottlingException") ||
		strings.Contains(msg, "TooManyRequestsException") ||
		strings.Contains(msg, "Rate exceeded")
}

// looksTransient is the message heuristic for errors that carry no code.
func looksTransient(msg string) bool {
	for _, s := range []string{
		"ThrottlingException",
		"TooManyRequestsException",
		"Rate exceeded",
		"InternalServerException",
		"ServiceUnavailableException",
		"connection reset",
		"EOF",
		"timeout",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
