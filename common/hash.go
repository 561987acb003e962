package common

import (
	"encoding/json"

	ethereumCommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"
)

// HashLength is the size of an event topic.
const HashLength = ethereumCommon.HashLength

// Hash is an event topic or a BLAKE2b-256 digest.
type Hash ethereumCommon.Hash

func (h Hash) Bytes() []byte {
	return ethereumCommon.Hash(h).Bytes()
}

func (h Hash) String() string {
	return ethereumCommon.Hash(h).String()
}

func (h Hash) Hex() string {
	return ethereumCommon.Hash(h).Hex()
}

// BytesToHash sets b to the hash, cropping from the left if b is too long.
func BytesToHash(b []byte) Hash {
	return Hash(ethereumCommon.BytesToHash(b))
}

func HexToHash(s string) Hash {
	return Hash(ethereumCommon.HexToHash(s))
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Hex())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	*h = HexToHash(hexStr)
	return nil
}

// ComputeHash computes the BLAKE2b-256 hash of the given data
func ComputeHash(data []byte) []byte {
	hash := blake2b.Sum256(data)
	return hash[:]
}

func Blake2Hash(data []byte) Hash {
	return BytesToHash(ComputeHash(data))
}

// Selector returns the four-byte message selector for a contract message or
// constructor name: the leading bytes of its BLAKE2b-256 hash.
func Selector(name string) [4]byte {
	var sel [4]byte
	copy(sel[:], ComputeHash([]byte(name)))
	return sel
}

// PadToHash right-pads data shorter than a hash with zero bytes; longer
// input is hashed.
func PadToHash(data []byte) Hash {
	if len(data) <= HashLength {
		var h Hash
		copy(h[:], data)
		return h
	}
	return Blake2Hash(data)
}
