package chainext

import (
	"fmt"

	"github.com/colorfulnotion/dappstaking/codec"
)

// ErrorCode is the closed set of failures the host reports. It doubles as
// the error value for a failed status. On the wire it is a one-byte enum
// without payloads.
type ErrorCode uint8

const (
	ErrorCodeFailed ErrorCode = 0
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeFailed: "Failed",
}

var (
	_ codec.EncodeVaryingDataType = ErrorCode(0)
	_ codec.VaryingDataType       = (*ErrorCode)(nil)
)

func (c ErrorCode) Error() string {
	return c.String()
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

func (c ErrorCode) Known() bool {
	_, ok := errorCodeNames[c]
	return ok
}

func (c ErrorCode) IndexValue() (int, interface{}, error) {
	if !c.Known() {
		return 0, nil, fmt.Errorf("%w: error code %d", codec.ErrUnknownVaryingDataTypeValue, uint8(c))
	}
	return int(c), nil, nil
}

// ValueAt selects the variant; none of them carries a payload.
func (c *ErrorCode) ValueAt(index uint) (interface{}, error) {
	code := ErrorCode(index)
	if index > 0xff || !code.Known() {
		return nil, fmt.Errorf("unknown error code discriminant %d", index)
	}
	*c = code
	return nil, nil
}

func (c *ErrorCode) SetValue(v interface{}) error {
	if v != nil {
		return fmt.Errorf("error code %s takes no payload, got %T", c, v)
	}
	return nil
}
