package types

import (
	"fmt"
	"io"

	"github.com/colorfulnotion/dappstaking/common"
	"github.com/xlab/treeprint"
)

// RewardInfo is the reward split of one era.
type RewardInfo struct {
	// Total rewards for stakers in the era.
	Stakers Balance `json:"stakers"`
	// Total rewards for dapps in the era.
	Dapps Balance `json:"dapps"`
}

// EraInfo is the host's aggregate staking record for one era. Field order
// is part of the wire format.
type EraInfo struct {
	Rewards RewardInfo `json:"rewards"`
	// Total staked amount in the era.
	Staked Balance `json:"staked"`
	// Total locked amount in the era.
	Locked Balance `json:"locked"`
}

// BondStakeInput is the argument of the bond-and-stake call. Unlike the era
// records its value travels as a fixed-width u128.
type BondStakeInput struct {
	AccountId common.AccountId
	Value     Balance
}

func (in BondStakeInput) MarshalSCALE() ([]byte, error) {
	value, _ := FixedBalance{in.Value}.MarshalSCALE()
	out := make([]byte, 0, common.AccountIdLength+len(value))
	out = append(out, in.AccountId[:]...)
	return append(out, value...), nil
}

func (in *BondStakeInput) UnmarshalSCALE(r io.Reader) error {
	if _, err := io.ReadFull(r, in.AccountId[:]); err != nil {
		return fmt.Errorf("bond stake input: %w", err)
	}
	var value FixedBalance
	if err := value.UnmarshalSCALE(r); err != nil {
		return fmt.Errorf("bond stake input: %w", err)
	}
	in.Value = value.Balance
	return nil
}

func (in BondStakeInput) String() string {
	return fmt.Sprintf("account=%s value=%s", in.AccountId, in.Value)
}

// ToTree renders the record of era for terminal output.
func (e EraInfo) ToTree(era uint32) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("era %d", era))
	rewards := tree.AddBranch("rewards")
	rewards.AddNode(fmt.Sprintf("stakers: %s", e.Rewards.Stakers))
	rewards.AddNode(fmt.Sprintf("dapps: %s", e.Rewards.Dapps))
	tree.AddNode(fmt.Sprintf("staked: %s", e.Staked))
	tree.AddNode(fmt.Sprintf("locked: %s", e.Locked))
	return tree
}
