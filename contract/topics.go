package contract

import (
	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/colorfulnotion/dappstaking/common"
)

// SignatureTopic is the first topic of every event: the BLAKE2b-256 hash of
// its qualified name.
func SignatureTopic(eventName string) common.Hash {
	return common.Blake2Hash([]byte(eventName))
}

// FieldTopic derives the topic of an indexed field from the qualified field
// path and the SCALE encoding of the value. Up to 32 bytes are zero padded,
// longer input is hashed.
func FieldTopic(eventName, field string, value any) common.Hash {
	buf := []byte(eventName + "::" + field)
	buf = append(buf, codec.MustMarshal(value)...)
	return common.PadToHash(buf)
}
