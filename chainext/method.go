package chainext

import (
	"fmt"

	"github.com/colorfulnotion/dappstaking/codec"
)

// Method describes how one call identifier is invoked: whether the status
// code is translated before the output is looked at.
type Method struct {
	id           FuncID
	handleStatus bool
}

// NewMethod returns a status-checked method for id.
func NewMethod(id FuncID) Method {
	return Method{id: id, handleStatus: true}
}

// IgnoreStatus returns a copy of m that never inspects the status code.
func (m Method) IgnoreStatus() Method {
	m.handleStatus = false
	return m
}

func (m Method) ID() FuncID {
	return m.id
}

func (m Method) HandlesStatus() bool {
	return m.handleStatus
}

// EncodeInput returns the SCALE form of input; nil encodes as empty input.
func (m Method) EncodeInput(input any) []byte {
	if input == nil {
		return nil
	}
	b, err := codec.Marshal(input)
	if err != nil {
		panic(fmt.Errorf("encoding %s input: %w", m.id, err))
	}
	return b
}

// Call invokes the host. With status handling on, a Failed status is
// returned as ErrorCodeFailed without looking at the output.
func (m Method) Call(h Host, input any) ([]byte, error) {
	status, output := h.Call(m.id, m.EncodeInput(input))
	if m.handleStatus {
		if err := checkStatus(m.id, status); err != nil {
			return nil, err
		}
	}
	return output, nil
}

// DecodeOutput decodes output into dst, consuming it exactly. Malformed
// output panics with a ProtocolViolation.
func (m Method) DecodeOutput(output []byte, dst any) {
	if err := codec.UnmarshalExact(output, dst); err != nil {
		panic(&ProtocolViolation{Kind: MalformedOutput, Func: m.id, Cause: err})
	}
}

// Invoke runs m and decodes the output as a plain O.
func Invoke[O any](h Host, m Method, input any) (O, error) {
	var out O
	output, err := m.Call(h, input)
	if err != nil {
		return out, err
	}
	m.DecodeOutput(output, &out)
	return out, nil
}

// InvokeUnchecked runs a method that ignores the status and decodes the
// output as a plain O. It panics when m inspects the status.
func InvokeUnchecked[O any](h Host, m Method, input any) O {
	if m.HandlesStatus() {
		panic(fmt.Sprintf("chainext: %s checks its status", m.ID()))
	}
	var out O
	_, output := h.Call(m.id, m.EncodeInput(input))
	m.DecodeOutput(output, &out)
	return out
}

// InvokeResult runs m and decodes the output as Result<O, ErrorCode>. An
// Err branch is returned as the ErrorCode.
func InvokeResult[O any](h Host, m Method, input any) (O, error) {
	var zero O
	output, err := m.Call(h, input)
	if err != nil {
		return zero, err
	}
	res := codec.NewResult(zero, ErrorCode(0))
	m.DecodeOutput(output, &res)
	ok, e := res.Unwrap()
	if !res.IsOK() {
		return zero, e.(ErrorCode)
	}
	return ok.(O), nil
}

// EncodeOk returns the SCALE form of Ok(value) in a Result<_, ErrorCode>.
func EncodeOk(value any) ([]byte, error) {
	res := codec.NewResult(value, ErrorCode(0))
	if err := res.Set(codec.OK, value); err != nil {
		return nil, err
	}
	return codec.Marshal(res)
}

// EncodeErr returns the SCALE form of Err(code) in a Result<_, ErrorCode>.
func EncodeErr(code ErrorCode) ([]byte, error) {
	res := codec.NewResult(struct{}{}, code)
	if err := res.Set(codec.Err, code); err != nil {
		return nil, err
	}
	return codec.Marshal(res)
}
