package netaxept

import (
	"errors"
	"fmt"
)

// ErrAmountPrecision is returned by MinorUnits when an amount has more decimal
// places than its currency allows.
var ErrAmountPrecision = errors.New("amount has more decimals than the currency allows")

// InvalidOperationError is a usage error: the operation is not one the gateway
// knows about.
type InvalidOperationError struct {
	Operation Operation
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("netaxept: invalid operation %q", string(e.Operation))
}

// MissingParameterError is a usage error: a parameter required by the
// operation was not supplied.
type MissingParameterError struct {
	Operation Operation
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("netaxept: %s requires %s", e.Operation, e.Parameter)
}

// MalformedResponseError is a protocol error: the body is not a payload the
// gateway contract allows for the operation.
type MalformedResponseError struct {
	Operation Operation
	Reason    string
	Body      string
	Err       error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("netaxept: malformed %s response: %s: %v", e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("netaxept: malformed %s response: %s", e.Operation, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure to complete the HTTP exchange. The request
// may or may not have reached the gateway.
type TransportError struct {
	Operation Operation
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("netaxept: %s transport: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx HTTP reply whose body is not a gateway payload.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IllegalTransitionError is returned by CheckTransition when the lifecycle
// table does not allow the operation from the given state.
type IllegalTransitionError struct {
	From      State
	Operation Operation
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("netaxept: %s is not allowed from state %s", e.Operation, e.From)
}

// IsUsageError reports whether err is a caller mistake detected before any
// network call.
func IsUsageError(err error) bool {
	var invalidOp *InvalidOperationError
	var missing *MissingParameterError
	return errors.As(err, &invalidOp) || errors.As(err, &missing)
}
