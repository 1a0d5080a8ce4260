// Package apierr maps raw AWS API failures onto the three error classes the
// rest of eectl cares about: bad credentials, missing resources, and
// everything else the provider can throw. Classification happens once, at the
// service-client boundary; callers branch with errors.As.
package apierr

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// AuthenticationError means the credentials in use are missing, expired, or
// rejected. Always terminal; there is no partial result to salvage.
type AuthenticationError struct {
	Op  string
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Op, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// NotFoundError means the referenced resource does not exist in the target
// account or partition.
type NotFoundError struct {
	Op       string
	Resource string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s not found: %v", e.Op, e.Resource, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ProviderQueryError covers every other provider-side failure, transient or
// permanent. No retry logic lives here; callers decide.
type ProviderQueryError struct {
	Op  string
	Err error
}

func (e *ProviderQueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderQueryError) Unwrap() error { return e.Err }

// Smithy error codes that indicate a credential problem rather than a
// resource or service problem.
var authCodes = map[string]bool{
	"UnrecognizedClientException": true,
	"InvalidClientTokenId":        true,
	"ExpiredToken":                true,
	"ExpiredTokenException":       true,
	"SignatureDoesNotMatch":       true,
	"MissingAuthenticationToken":  true,
	"AccessDenied":                true,
	"AccessDeniedException":       true,
}

var notFoundCodes = map[string]bool{
	"NoSuchEntity":              true,
	"NoSuchEntityException":     true,
	"ResourceNotFoundException": true,
	"NotFoundException":         true,
}

// Classify wraps err in the matching taxonomy type. A nil err returns nil so
// call sites can classify unconditionally.
func Classify(op, resource string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case authCodes[code]:
			return &AuthenticationError{Op: op, Err: err}
		case notFoundCodes[code]:
			return &NotFoundError{Op: op, Resource: resource, Err: err}
		}
	}
	return &ProviderQueryError{Op: op, Err: err}
}
