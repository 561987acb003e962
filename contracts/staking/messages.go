package staking

import (
	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/colorfulnotion/dappstaking/contract"
	"github.com/colorfulnotion/dappstaking/types"
)

const (
	MsgGetCurrentEra = "get_current_era"
	MsgReadEraInfo   = "read_era_info"
	MsgBondAndStake  = "bond_and_stake"
)

func encodeError(err error) (any, bool) {
	se, ok := IsStakingError(err)
	return se, ok
}

func (s *Staking) messages() *contract.Dispatcher {
	d := contract.NewDispatcher(ContractName)
	d.Register(MsgGetCurrentEra, func(input []byte) ([]byte, error) {
		if err := contract.DecodeArgs(input, &struct{}{}); err != nil {
			return nil, err
		}
		return codec.Marshal(s.GetCurrentEra())
	})
	d.Register(MsgReadEraInfo, func(input []byte) ([]byte, error) {
		var era uint32
		if err := contract.DecodeArgs(input, &era); err != nil {
			return nil, err
		}
		info, err := s.ReadEraInfo(era)
		return contract.EncodeReturn(info, err, encodeError)
	})
	d.Register(MsgBondAndStake, func(input []byte) ([]byte, error) {
		var value types.FixedBalance
		if err := contract.DecodeArgs(input, &value); err != nil {
			return nil, err
		}
		err := s.BondAndStake(value.Balance)
		return contract.EncodeReturn(struct{}{}, err, encodeError)
	})
	return d
}

// Dispatch runs the message with the given selector on SCALE encoded
// arguments and returns its SCALE encoded return value.
func (s *Staking) Dispatch(selector [4]byte, input []byte) ([]byte, error) {
	return s.dispatcher.Dispatch(selector, input)
}

func (s *Staking) Messages() []contract.Message {
	return s.dispatcher.Messages()
}
