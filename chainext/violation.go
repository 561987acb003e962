package chainext

import (
	"errors"
	"fmt"
)

type ViolationKind uint8

const (
	// UnknownStatusCode: the host returned a status outside {0, 1}.
	UnknownStatusCode ViolationKind = iota + 1
	// MalformedOutput: the host output did not decode as the declared type.
	MalformedOutput
)

func (k ViolationKind) String() string {
	switch k {
	case UnknownStatusCode:
		return "unknown status code"
	case MalformedOutput:
		return "malformed output"
	default:
		return fmt.Sprintf("ViolationKind(%d)", uint8(k))
	}
}

// ProtocolViolation means the host and the contract disagree about the wire
// contract. It is raised with panic and never returned as an error value;
// only the transaction boundary recovers it, and it aborts the transaction.
type ProtocolViolation struct {
	Kind   ViolationKind
	Func   FuncID
	Status uint32
	Cause  error
}

func (v *ProtocolViolation) Error() string {
	switch {
	case v.Kind == UnknownStatusCode:
		return fmt.Sprintf("protocol violation in %s: unknown status code %d", v.Func, v.Status)
	case v.Cause != nil:
		return fmt.Sprintf("protocol violation in %s: %s: %v", v.Func, v.Kind, v.Cause)
	default:
		return fmt.Sprintf("protocol violation in %s: %s", v.Func, v.Kind)
	}
}

func (v *ProtocolViolation) Unwrap() error {
	return v.Cause
}

// IsProtocolViolation checks a recovered panic value or an error chain for a
// ProtocolViolation and returns it.
func IsProtocolViolation(v any) (*ProtocolViolation, bool) {
	switch x := v.(type) {
	case *ProtocolViolation:
		return x, x != nil
	case error:
		var pv *ProtocolViolation
		if errors.As(x, &pv) {
			return pv, true
		}
	}
	return nil, false
}
