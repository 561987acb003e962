package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/holiman/uint256"
)

// BalanceBits is the width of the host chain's balance type (u128).
const BalanceBits = 128

var (
	ErrBalanceOverflow  = errors.New("balance exceeds u128")
	ErrBalanceUnderflow = errors.New("balance underflow")
)

// MaxBalance is the largest representable balance, 2^128 - 1.
var MaxBalance = Balance{v: *new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), BalanceBits), uint256.NewInt(1))}

// Balance is an unsigned amount of the chain's native token. In SCALE it
// encodes in compact form; see Fixed for the fixed-width u128 form.
type Balance struct {
	v uint256.Int
}

func NewBalance(x uint64) Balance {
	return Balance{v: *uint256.NewInt(x)}
}

// BalanceFromUint256 checks x against the u128 range.
func BalanceFromUint256(x *uint256.Int) (Balance, error) {
	if x.Gt(&MaxBalance.v) {
		return Balance{}, fmt.Errorf("%w: %s", ErrBalanceOverflow, x.Dec())
	}
	return Balance{v: *x}, nil
}

// BalanceFromDecimal parses a base-10 amount.
func BalanceFromDecimal(s string) (Balance, error) {
	x, err := uint256.FromDecimal(s)
	if err != nil {
		return Balance{}, fmt.Errorf("balance %q: %w", s, err)
	}
	return BalanceFromUint256(x)
}

// Uint256 returns a copy of the amount.
func (b Balance) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&b.v)
}

func (b Balance) IsZero() bool {
	return b.v.IsZero()
}

func (b Balance) Cmp(o Balance) int {
	return b.v.Cmp(&o.v)
}

func (b Balance) Add(o Balance) (Balance, error) {
	sum, overflow := new(uint256.Int).AddOverflow(&b.v, &o.v)
	if overflow {
		return Balance{}, ErrBalanceOverflow
	}
	return BalanceFromUint256(sum)
}

func (b Balance) Sub(o Balance) (Balance, error) {
	if b.v.Lt(&o.v) {
		return Balance{}, fmt.Errorf("%w: %s - %s", ErrBalanceUnderflow, b, o)
	}
	return Balance{v: *new(uint256.Int).Sub(&b.v, &o.v)}, nil
}

func (b Balance) String() string {
	return b.v.Dec()
}

// MarshalSCALE writes the compact form.
func (b Balance) MarshalSCALE() ([]byte, error) {
	var buf bytes.Buffer
	if err := codec.EncodeCompact(&buf, &b.v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalSCALE reads the compact form and rejects values above u128.
func (b *Balance) UnmarshalSCALE(r io.Reader) error {
	x, err := codec.DecodeCompact(r)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	v, err := BalanceFromUint256(x)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Fixed returns the fixed-width little-endian u128 form.
func (b Balance) Fixed() [16]byte {
	var out [16]byte
	binary.LittleEndian.PutUint64(out[:8], b.v[0])
	binary.LittleEndian.PutUint64(out[8:], b.v[1])
	return out
}

// BalanceFromFixed is the inverse of Fixed.
func BalanceFromFixed(le [16]byte) Balance {
	var v uint256.Int
	v[0] = binary.LittleEndian.Uint64(le[:8])
	v[1] = binary.LittleEndian.Uint64(le[8:])
	return Balance{v: v}
}

func (b Balance) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Balance) UnmarshalText(text []byte) error {
	v, err := BalanceFromDecimal(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// FixedBalance is a Balance whose SCALE form is the fixed-width u128, as
// used for message arguments.
type FixedBalance struct {
	Balance
}

func (f FixedBalance) MarshalSCALE() ([]byte, error) {
	le := f.Fixed()
	return le[:], nil
}

func (f *FixedBalance) UnmarshalSCALE(r io.Reader) error {
	var le [16]byte
	if _, err := io.ReadFull(r, le[:]); err != nil {
		return fmt.Errorf("u128: %w", err)
	}
	f.Balance = BalanceFromFixed(le)
	return nil
}
