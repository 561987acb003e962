package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

// Compact mode boundaries. The two low bits of the first byte select the mode.
var (
	compactSingleMax = uint256.NewInt(1<<6 - 1)
	compactTwoMax    = uint256.NewInt(1<<14 - 1)
	compactFourMax   = uint256.NewInt(1<<30 - 1)
)

// maxCompactBytes bounds the big-integer mode to what a uint256.Int can hold.
const maxCompactBytes = 32

// EncodeCompact writes x in SCALE compact form.
func EncodeCompact(w io.Writer, x *uint256.Int) (err error) {
	switch {
	case x == nil:
		return fmt.Errorf("%w: nil compact value", ErrUnsupportedType)
	case !x.Gt(compactSingleMax):
		_, err = w.Write([]byte{byte(x.Uint64()) << 2})
	case !x.Gt(compactTwoMax):
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(x.Uint64())<<2|0b01)
		_, err = w.Write(buf)
	case !x.Gt(compactFourMax):
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(x.Uint64())<<2|0b10)
		_, err = w.Write(buf)
	default:
		n := x.ByteLen()
		if n < 4 {
			n = 4
		}
		be := x.Bytes32()
		out := make([]byte, 0, n+1)
		out = append(out, byte(n-4)<<2|0b11)
		for i := 0; i < n; i++ {
			out = append(out, be[31-i])
		}
		_, err = w.Write(out)
	}
	return
}

// CompactBytes returns the compact encoding of x.
func CompactBytes(x uint64) []byte {
	var sink byteSink
	_ = EncodeCompact(&sink, uint256.NewInt(x))
	return sink
}

// DecodeCompact reads a SCALE compact integer and rejects non-canonical forms.
func DecodeCompact(r io.Reader) (*uint256.Int, error) {
	first := make([]byte, 1)
	if _, err := io.ReadFull(r, first); err != nil {
		return nil, fmt.Errorf("reading compact prefix: %w", err)
	}
	prefix := first[0]

	switch prefix & 0b11 {
	case 0b00:
		return uint256.NewInt(uint64(prefix >> 2)), nil
	case 0b01:
		rest := make([]byte, 1)
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, fmt.Errorf("reading compact u16: %w", err)
		}
		v := uint64(binary.LittleEndian.Uint16([]byte{prefix, rest[0]}) >> 2)
		if v <= compactSingleMax.Uint64() {
			return nil, fmt.Errorf("%w: %d in two-byte mode", ErrCompactNonCanonical, v)
		}
		return uint256.NewInt(v), nil
	case 0b10:
		rest := make([]byte, 3)
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, fmt.Errorf("reading compact u32: %w", err)
		}
		v := uint64(binary.LittleEndian.Uint32(append([]byte{prefix}, rest...)) >> 2)
		if v <= compactTwoMax.Uint64() {
			return nil, fmt.Errorf("%w: %d in four-byte mode", ErrCompactNonCanonical, v)
		}
		return uint256.NewInt(v), nil
	default:
		n := int(prefix>>2) + 4
		if n > maxCompactBytes {
			return nil, fmt.Errorf("%w: %d bytes", ErrCompactOverflow, n)
		}
		le := make([]byte, n)
		if _, err := io.ReadFull(r, le); err != nil {
			return nil, fmt.Errorf("reading compact big integer: %w", err)
		}
		v := new(uint256.Int).SetBytes(reverseBytes(le))
		if n == 4 && !v.Gt(compactFourMax) {
			return nil, fmt.Errorf("%w: %s in big-integer mode", ErrCompactNonCanonical, v.Dec())
		}
		if n > 4 && le[n-1] == 0 {
			return nil, fmt.Errorf("%w: leading zero byte", ErrCompactNonCanonical)
		}
		return v, nil
	}
}

type byteSink []byte

func (s *byteSink) Write(p []byte) (int, error) {
	*s = append(*s, p...)
	return len(p), nil
}

// reverseBytes reverses the order of bytes in a slice
func reverseBytes(input []byte) []byte {
	output := make([]byte, len(input))
	for i := range input {
		output[i] = input[len(input)-1-i]
	}
	return output
}
