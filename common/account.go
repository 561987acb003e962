package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AccountIdLength is the width of an account identifier on the host chain.
const AccountIdLength = 32

// AccountId is the fixed-size account identifier of the default contract
// environment. It encodes as its raw 32 bytes.
type AccountId [AccountIdLength]byte

// BytesToAccountId copies b into an AccountId. It fails unless b is exactly
// 32 bytes long.
func BytesToAccountId(b []byte) (AccountId, error) {
	var id AccountId
	if len(b) != AccountIdLength {
		return id, fmt.Errorf("account id: want %d bytes, got %d", AccountIdLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// HexToAccountId parses a 0x-prefixed hex account id.
func HexToAccountId(s string) (AccountId, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return AccountId{}, fmt.Errorf("account id %q: %w", s, err)
	}
	return BytesToAccountId(b)
}

// ParseAccountId accepts either a dev account name (alice, bob, ...) or a hex id.
func ParseAccountId(s string) (AccountId, error) {
	if id, ok := DevAccount(s); ok {
		return id, nil
	}
	return HexToAccountId(s)
}

func (a AccountId) Bytes() []byte {
	return a[:]
}

func (a AccountId) Hex() string {
	return hexutil.Encode(a[:])
}

func (a AccountId) String() string {
	return a.Hex()
}

func (a AccountId) IsZero() bool {
	return a == AccountId{}
}

func (a AccountId) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *AccountId) UnmarshalText(text []byte) error {
	id, err := ParseAccountId(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

func (a AccountId) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

func (a *AccountId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}

// Well-known development accounts (sr25519 public keys of //Alice, //Bob, ...).
var devAccounts = map[string]string{
	"alice":   "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d",
	"bob":     "0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48",
	"charlie": "0x90b5ab205c6974c9ea841be688864633dc9ca8a357843eeacf2314649965fe22",
	"dave":    "0x306721211d5404bd9da88e0204360a1a9ab8b87c66c1bc2fcdd37f3c2222cc20",
	"eve":     "0xe659a7a1628cdd93febc04a4e0646ea20e9f5f0ce097d9a05290d4a9e054df4e",
}

// DevAccount returns the account id of a named development account.
func DevAccount(name string) (AccountId, bool) {
	s, ok := devAccounts[strings.ToLower(name)]
	if !ok {
		return AccountId{}, false
	}
	b, _ := hexutil.Decode(s)
	id, _ := BytesToAccountId(b)
	return id, true
}

// MustDevAccount is DevAccount for names known at compile time.
func MustDevAccount(name string) AccountId {
	id, ok := DevAccount(name)
	if !ok {
		panic("unknown dev account " + name)
	}
	return id
}
