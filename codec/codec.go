// Package codec implements the SCALE codec used on both sides of the
// chain-extension boundary: fixed-width little-endian integers, compact
// integers, structs as tuples, one-byte enum discriminants, Option and Result.
package codec

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType             = errors.New("unsupported type")
	ErrUnsupportedCustomPrimitive  = errors.New("unsupported custom primitive")
	ErrUnsupportedDestination      = errors.New("unsupported destination type")
	ErrUnsupportedResult           = errors.New("unsupported result value")
	ErrUnsupportedOption           = errors.New("unsupported option")
	ErrResultNotSet                = errors.New("result not set")
	ErrUnknownVaryingDataTypeValue = errors.New("unknown varying data type value")
	ErrCompactOverflow             = errors.New("compact integer overflows destination")
	ErrCompactNonCanonical         = errors.New("compact integer not canonically encoded")
	ErrNegativeInteger             = errors.New("negative integer has no compact form")
	ErrLengthExceedsInput          = errors.New("declared length exceeds remaining input")
	ErrTrailingBytes               = errors.New("trailing bytes after value")
	errDecodeBool                  = errors.New("failed to decode bool")
	errBigIntIsNil                 = errors.New("big.Int is nil")
)

// Encode serializes the given object using the SCALE rules.
func Encode(obj interface{}) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	encoder := NewEncoder(buffer)

	err := encoder.Encode(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}

	return buffer.Bytes(), nil
}

// Decode deserializes inp into typ, which must be a non-nil pointer.
func Decode(inp []byte, typ interface{}) (interface{}, error) {
	decoder := NewDecoder(bytes.NewReader(inp))

	err := decoder.Decode(typ)
	if err != nil {
		return nil, fmt.Errorf("decoding failed: %w", err)
	}

	return typ, nil
}
