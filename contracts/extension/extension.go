// Package extension is the DappsStakingExtension contract: a one-to-one
// facade over the dapps-staking capabilities that also emits
// CurrentEraUpdated whenever the current era is read.
package extension

import (
	"errors"
	"fmt"

	"github.com/colorfulnotion/dappstaking/chainext"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/contract"
	"github.com/colorfulnotion/dappstaking/dappsstaking"
	"github.com/colorfulnotion/dappstaking/log"
	"github.com/colorfulnotion/dappstaking/types"
)

const ContractName = "DappsStakingExtension"

// CurrentEraUpdated is emitted on every current era read, with the era as
// an indexed topic.
type CurrentEraUpdated struct {
	New uint32
}

func (CurrentEraUpdated) EventName() string {
	return ContractName + "::CurrentEraUpdated"
}

func (e CurrentEraUpdated) Topics() []common.Hash {
	return []common.Hash{
		contract.SignatureTopic(e.EventName()),
		contract.FieldTopic(e.EventName(), "new", e.New),
	}
}

// ExtensionError tags every host failure as ErrorCode(code).
type ExtensionError struct {
	Code chainext.ErrorCode
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("ExtensionError::ErrorCode(%s)", e.Code)
}

func (e *ExtensionError) Unwrap() error {
	return e.Code
}

// ExtensionError has the single variant ErrorCode(code) at index 0.
func (e *ExtensionError) IndexValue() (int, interface{}, error) {
	return 0, e.Code, nil
}

func (e *ExtensionError) ValueAt(index uint) (interface{}, error) {
	if index != 0 {
		return nil, fmt.Errorf("extension error variant %d", index)
	}
	return chainext.ErrorCode(0), nil
}

func (e *ExtensionError) SetValue(v interface{}) error {
	code, ok := v.(chainext.ErrorCode)
	if !ok {
		return fmt.Errorf("extension error payload %T", v)
	}
	e.Code = code
	return nil
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var code chainext.ErrorCode
	if errors.As(err, &code) {
		return &ExtensionError{Code: code}
	}
	return err
}

type DappsStakingExtension struct {
	env        contract.Env
	caps       dappsstaking.Capabilities
	dispatcher *contract.Dispatcher
}

func New(env contract.Env, caps dappsstaking.Capabilities) *DappsStakingExtension {
	e := &DappsStakingExtension{env: env, caps: caps}
	e.dispatcher = e.messages()
	return e
}

// ReadCurrentEra never fails; the error is part of the message signature.
func (e *DappsStakingExtension) ReadCurrentEra() (uint32, error) {
	era := e.caps.ReadCurrentEra()
	e.env.EmitEvent(CurrentEraUpdated{New: era})
	log.Debug(log.Contract, "CurrentEraUpdated", "contract", e.env.AccountID(), "era", era)
	return era, nil
}

func (e *DappsStakingExtension) ReadEraInfo(era uint32) (types.EraInfo, error) {
	info, err := e.caps.ReadEraInfo(era)
	return info, wrapError(err)
}

func (e *DappsStakingExtension) BondAndStake(account common.AccountId, value types.Balance) error {
	return wrapError(e.caps.BondAndStake(account, value))
}
