package rpc

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	// KindTransport covers connection failures and malformed URLs.
	KindTransport ErrorKind = iota
	// KindProtocol covers non-2xx answers and unexpected content.
	KindProtocol
	// KindDecode covers bodies that do not fit the target schema.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrTransport = errors.New("rpc: transport error")
	ErrProtocol  = errors.New("rpc: protocol error")
	ErrDecode    = errors.New("rpc: decode error")
)

// Error is the failure carried in a Response.
type Error struct {
	Kind   ErrorKind
	Target Target
	// Status is the HTTP status for protocol errors, 0 otherwise.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Target, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Target, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

type errUnknownTarget string

func (e errUnknownTarget) Error() string { return "unknown target " + string(e) }
