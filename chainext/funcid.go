// Package chainext defines the wire contract between contract code and the
// host runtime's dapps-staking chain extension: call identifiers, the status
// code translation and the encode, invoke and decode pipeline shared by every
// call.
package chainext

import (
	"fmt"
	"strconv"
)

// FuncID addresses one host capability. The numeric values are fixed by the
// host runtime; changing one is a breaking protocol change.
type FuncID uint32

const (
	ReadCurrentEra FuncID = 3401 // () -> u32, status ignored
	ReadEraInfo    FuncID = 3402 // u32 -> Result<EraInfo, ErrorCode>
	BondAndStake   FuncID = 3403 // BondStakeInput -> Result<(), ErrorCode>
)

var funcNames = map[FuncID]string{
	ReadCurrentEra: "READ_CURRENT_ERA",
	ReadEraInfo:    "READ_ERA_INFO",
	BondAndStake:   "BOND_AND_STAKE",
}

func (id FuncID) String() string {
	if name, ok := funcNames[id]; ok {
		return name
	}
	return fmt.Sprintf("FuncID(%d)", uint32(id))
}

// Known reports whether id is one of the defined call identifiers.
func (id FuncID) Known() bool {
	_, ok := funcNames[id]
	return ok
}

// FuncIDs returns the defined call identifiers in ascending order.
func FuncIDs() []FuncID {
	return []FuncID{ReadCurrentEra, ReadEraInfo, BondAndStake}
}

// ParseFuncID accepts either the name or the decimal value of a call identifier.
func ParseFuncID(s string) (FuncID, error) {
	for id, name := range funcNames {
		if name == s {
			return id, nil
		}
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil && FuncID(n).Known() {
		return FuncID(n), nil
	}
	return 0, fmt.Errorf("unknown chain extension function %q", s)
}
