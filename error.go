package amqp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Reply codes defined by the AMQP 0-9-1 specification and surfaced verbatim
// to callers.
const (
	replySuccess = 200

	ContentTooLarge   = 311
	NoRoute           = 312
	NoConsumers       = 313
	ConnectionForced  = 320
	InvalidPath       = 402
	AccessRefused     = 403
	NotFound          = 404
	ResourceLocked    = 405
	PreconditionFailed = 406
	FrameError        = 501
	SyntaxError       = 502
	CommandInvalid    = 503
	ChannelErrorCode  = 504
	UnexpectedFrame   = 505
	ResourceError     = 506
	NotAllowed        = 530
	NotImplemented    = 540
	InternalError     = 541
)

// softErrors close only the channel that raised them; everything else is a
// hard, connection-fatal error.
var softErrors = map[int]bool{
	ContentTooLarge:    true,
	NoRoute:            true,
	NoConsumers:        true,
	AccessRefused:      true,
	NotFound:           true,
	ResourceLocked:     true,
	PreconditionFailed: true,
}

func isSoftError(code int) bool {
	return softErrors[code]
}

// Error is the concrete representation of an AMQP close reason, carrying
// the (class, method) the server objected to when known.
type Error struct {
	Code     int
	Reason   string
	Server   bool
	Recover  bool
	ClassId  uint16
	MethodId uint16
}

func newError(code uint16, text string) *Error {
	return &Error{
		Code:    int(code),
		Reason:  text,
		Recover: isSoftError(int(code)),
		Server:  true,
	}
}

func (e Error) Error() string {
	return fmt.Sprintf("Exception (%d) Reason: %q", e.Code, e.Reason)
}

// ChannelError wraps Error for a soft error that closed only the channel it
// occurred on.
type ChannelError struct {
	Err *Error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel closed: %s", e.Err.Error())
}

// ConnectionError wraps Error for a hard error or an orderly close that
// terminated the whole connection.
type ConnectionError struct {
	Err *Error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection closed: %s", e.Err.Error())
}

// BrokerUnreachableError is returned when every candidate endpoint in an
// EndpointResolver's iteration failed to connect.
type BrokerUnreachableError struct {
	Attempts []error
}

func (e *BrokerUnreachableError) Error() string {
	if len(e.Attempts) == 0 {
		return "broker unreachable: no endpoints attempted"
	}
	return fmt.Sprintf("broker unreachable after %d attempt(s): %s", len(e.Attempts), e.Attempts[len(e.Attempts)-1])
}

func (e *BrokerUnreachableError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

// AuthenticationFailureError reports that no SASL mechanism was held in
// common with the server, or the server rejected the credentials presented.
type AuthenticationFailureError struct {
	Reason string
}

func (e *AuthenticationFailureError) Error() string {
	return "authentication failure: " + e.Reason
}

// ProtocolViolationError reports a malformed frame or a method received
// outside of its legal state; always connection-fatal.
type ProtocolViolationError struct {
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	return "protocol violation: " + e.Reason
}

// OperationInterruptedError reports that an in-flight RPC or publish-confirm
// handle was aborted by a channel or connection close.
type OperationInterruptedError struct {
	Cause error
}

func (e *OperationInterruptedError) Error() string {
	if e.Cause == nil {
		return "operation interrupted"
	}
	return "operation interrupted: " + e.Cause.Error()
}

func (e *OperationInterruptedError) Unwrap() error { return e.Cause }

// TimeoutError reports that a continuation or handshake deadline elapsed.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return "timeout waiting for " + e.Op
}

// CancelledError reports a caller-initiated cancellation winning its race
// against a reply.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "operation cancelled" }

// Sentinel errors for conditions with no associated reply code.
var (
	ErrClosed                 = &ConnectionError{&Error{Code: ChannelErrorCode, Reason: "channel/connection is not open"}}
	ErrChannelMax             = errors.New("channel id space exhausted")
	ErrSASL                   = &AuthenticationFailureError{Reason: "no SASL mechanism in common with the server"}
	ErrCredentials            = &AuthenticationFailureError{Reason: "username or password not accepted"}
	ErrVhost                  = errors.New("virtual host not accessible")
	ErrSyntax                 = &ProtocolViolationError{Reason: "invalid frame syntax"}
	ErrFrame                  = &ProtocolViolationError{Reason: "frame could not be parsed"}
	ErrCommandInvalid         = &ProtocolViolationError{Reason: "unexpected command received"}
	ErrUnexpectedFrame        = &ProtocolViolationError{Reason: "unexpected frame received"}
	ErrFieldType              = &ProtocolViolationError{Reason: "unsupported field-table type"}
	ErrAlreadyClosed          = errors.New("already closed: connection/channel is not open")
	ErrShutdown               = errors.New("channel/connection shut down")
	ErrDeliveryNotInitialized = errors.New("delivery not initialized, use Channel.Consume or Channel.Get")
)
