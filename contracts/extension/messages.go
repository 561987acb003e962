package extension

import (
	"errors"

	"github.com/colorfulnotion/dappstaking/contract"
	"github.com/colorfulnotion/dappstaking/types"
)

const (
	MsgReadCurrentEra = "read_current_era"
	MsgReadEraInfo    = "read_era_info"
	MsgBondAndStake   = "bond_and_stake"
)

func encodeError(err error) (any, bool) {
	var extErr *ExtensionError
	if errors.As(err, &extErr) {
		return extErr, true
	}
	return nil, false
}

func (e *DappsStakingExtension) messages() *contract.Dispatcher {
	d := contract.NewDispatcher(ContractName)
	d.Register(MsgReadCurrentEra, func(input []byte) ([]byte, error) {
		if err := contract.DecodeArgs(input, &struct{}{}); err != nil {
			return nil, err
		}
		era, err := e.ReadCurrentEra()
		return contract.EncodeReturn(era, err, encodeError)
	})
	d.Register(MsgReadEraInfo, func(input []byte) ([]byte, error) {
		var era uint32
		if err := contract.DecodeArgs(input, &era); err != nil {
			return nil, err
		}
		info, err := e.ReadEraInfo(era)
		return contract.EncodeReturn(info, err, encodeError)
	})
	d.Register(MsgBondAndStake, func(input []byte) ([]byte, error) {
		var args types.BondStakeInput
		if err := contract.DecodeArgs(input, &args); err != nil {
			return nil, err
		}
		err := e.BondAndStake(args.AccountId, args.Value)
		return contract.EncodeReturn(struct{}{}, err, encodeError)
	})
	return d
}

// Dispatch runs the message with the given selector on SCALE encoded
// arguments and returns its SCALE encoded Result.
func (e *DappsStakingExtension) Dispatch(selector [4]byte, input []byte) ([]byte, error) {
	return e.dispatcher.Dispatch(selector, input)
}

func (e *DappsStakingExtension) Messages() []contract.Message {
	return e.dispatcher.Messages()
}
