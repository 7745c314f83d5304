// Package errors provides the structured error vocabulary for dice-bridge.
//
// Errors carry a code, a message and optional metadata:
//
//	err := errors.FailedPrecondition("no room selected")
//	err := errors.Unavailablef("engine not ready after %d attempts", n).
//	    WithMeta("attempts", n)
//
// The rolling service reports human-readable failures in a nested
// data.message field. The rolling client returns those as Remote errors so
// that UserMessage can surface the most specific text even after callers
// wrap it:
//
//	if err := client.CreateRoll(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to create roll")
//	}
//	notifier.Error(ctx, errors.UserMessage(err))
//
// IsConnectionError classifies failures that should trigger a reconnect
// cycle. Codes map onto HTTP statuses (page bridge API) and gRPC codes
// (control service) through HTTPStatus, CodeFromHTTPStatus and ToGRPCError.
package errors
