package chainext

import (
	"errors"
	"fmt"
	"testing"

	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncIDs(t *testing.T) {
	assert.Equal(t, FuncID(3401), ReadCurrentEra)
	assert.Equal(t, FuncID(3402), ReadEraInfo)
	assert.Equal(t, FuncID(3403), BondAndStake)
	assert.Equal(t, []FuncID{3401, 3402, 3403}, FuncIDs())

	assert.Equal(t, "READ_ERA_INFO", ReadEraInfo.String())
	assert.Equal(t, "FuncID(7)", FuncID(7).String())
	assert.False(t, FuncID(7).Known())

	id, err := ParseFuncID("BOND_AND_STAKE")
	require.NoError(t, err)
	assert.Equal(t, BondAndStake, id)
	id, err = ParseFuncID("3401")
	require.NoError(t, err)
	assert.Equal(t, ReadCurrentEra, id)
	for _, bad := range []string{"3404", "3401junk", "3403.9", " 3401", "-3401", "read_current_era", ""} {
		_, err = ParseFuncID(bad)
		assert.Error(t, err, bad)
	}
}

func TestFromStatusCode(t *testing.T) {
	assert.NoError(t, FromStatusCode(0))

	err := FromStatusCode(1)
	assert.Equal(t, ErrorCodeFailed, err)
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrorCodeFailed))

	for _, code := range []uint32{2, 42, 1 << 31, ^uint32(0)} {
		func() {
			defer func() {
				pv, ok := IsProtocolViolation(recover())
				require.True(t, ok, "status %d", code)
				assert.Equal(t, UnknownStatusCode, pv.Kind)
				assert.Equal(t, code, pv.Status)
			}()
			_ = FromStatusCode(code)
			t.Fatalf("status %d did not abort", code)
		}()
	}
}

func TestErrorCodeDecoding(t *testing.T) {
	var code ErrorCode
	m := NewMethod(ReadEraInfo)
	m.DecodeOutput([]byte{0}, &code)
	assert.Equal(t, ErrorCodeFailed, code)

	func() {
		defer func() {
			pv, ok := IsProtocolViolation(recover())
			require.True(t, ok)
			assert.Equal(t, MalformedOutput, pv.Kind)
			assert.ErrorIs(t, pv, codec.ErrUnknownVaryingDataTypeValue)
			assert.Contains(t, pv.Error(), "unknown error code discriminant 1")
		}()
		m.DecodeOutput([]byte{1}, &code)
	}()

	b, err := codec.Marshal(ErrorCodeFailed)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, b)

	_, err = codec.Marshal(ErrorCode(9))
	assert.ErrorIs(t, err, codec.ErrUnknownVaryingDataTypeValue)
	assert.Equal(t, "ErrorCode(9)", ErrorCode(9).String())
	assert.False(t, ErrorCode(9).Known())
}

type scriptedHost struct {
	status uint32
	output []byte
	calls  []FuncID
	inputs [][]byte
}

func (h *scriptedHost) Call(id FuncID, input []byte) (uint32, []byte) {
	h.calls = append(h.calls, id)
	h.inputs = append(h.inputs, input)
	return h.status, h.output
}

func TestInvokeIgnoringStatus(t *testing.T) {
	h := &scriptedHost{status: 42, output: []byte{5, 0, 0, 0}}
	era, err := Invoke[uint32](h, NewMethod(ReadCurrentEra).IgnoreStatus(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), era)
	assert.Equal(t, []FuncID{ReadCurrentEra}, h.calls)
	assert.Empty(t, h.inputs[0])
}

func TestInvokeUnchecked(t *testing.T) {
	h := &scriptedHost{status: 42, output: []byte{6, 0, 0, 0}}
	assert.Equal(t, uint32(6), InvokeUnchecked[uint32](h, NewMethod(ReadCurrentEra).IgnoreStatus(), nil))

	assert.Panics(t, func() {
		InvokeUnchecked[uint32](h, NewMethod(ReadCurrentEra), nil)
	})

	h.output = []byte{6}
	assert.Panics(t, func() {
		InvokeUnchecked[uint32](h, NewMethod(ReadCurrentEra).IgnoreStatus(), nil)
	})
}

func TestInvokeResult(t *testing.T) {
	m := NewMethod(BondAndStake)

	ok, err := EncodeOk(struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, ok)
	_, err = InvokeResult[struct{}](&scriptedHost{output: ok}, m, uint32(1))
	assert.NoError(t, err)

	failed, err := EncodeErr(ErrorCodeFailed)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0}, failed)
	_, err = InvokeResult[struct{}](&scriptedHost{output: failed}, m, uint32(1))
	assert.Equal(t, ErrorCodeFailed, err)

	// A failed status short-circuits before the output is decoded.
	_, err = InvokeResult[struct{}](&scriptedHost{status: 1, output: []byte{0xff}}, m, nil)
	assert.Equal(t, ErrorCodeFailed, err)
}

func TestInvokeViolations(t *testing.T) {
	m := NewMethod(ReadEraInfo)
	testCases := []struct {
		name string
		host *scriptedHost
		kind ViolationKind
	}{
		{"unknown status", &scriptedHost{status: 42}, UnknownStatusCode},
		{"empty output", &scriptedHost{}, MalformedOutput},
		{"bad result tag", &scriptedHost{output: []byte{2, 0, 0, 0, 0}}, MalformedOutput},
		{"short ok value", &scriptedHost{output: []byte{0, 1, 0}}, MalformedOutput},
		{"trailing bytes", &scriptedHost{output: []byte{0, 1, 0, 0, 0, 9}}, MalformedOutput},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				pv, ok := IsProtocolViolation(recover())
				require.True(t, ok)
				assert.Equal(t, tc.kind, pv.Kind)
				assert.Equal(t, ReadEraInfo, pv.Func)
			}()
			_, _ = InvokeResult[uint32](tc.host, m, uint32(7))
			t.Fatal("call returned")
		})
	}
}

func TestIsProtocolViolation(t *testing.T) {
	pv := &ProtocolViolation{Kind: MalformedOutput, Func: BondAndStake, Cause: errors.New("eof")}
	got, ok := IsProtocolViolation(fmt.Errorf("trapped: %w", pv))
	require.True(t, ok)
	assert.Same(t, pv, got)
	assert.ErrorContains(t, pv, "BOND_AND_STAKE")

	_, ok = IsProtocolViolation("boom")
	assert.False(t, ok)
	_, ok = IsProtocolViolation(nil)
	assert.False(t, ok)
}
