// Package staking is the Staking contract. It exposes the dapps-staking
// capabilities with the contract's own account as the implicit staker and
// wraps every failure one level deeper as DsError.
package staking

import (
	"errors"
	"fmt"

	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/contract"
	"github.com/colorfulnotion/dappstaking/contracts/extension"
	"github.com/colorfulnotion/dappstaking/dappsstaking"
	"github.com/colorfulnotion/dappstaking/log"
	"github.com/colorfulnotion/dappstaking/types"
)

const ContractName = "Staking"

// StakingError wraps the failure of the layer below, keeping it intact.
type StakingError struct {
	Inner error
}

func (e *StakingError) Error() string {
	return fmt.Sprintf("StakingError::DsError(%v)", e.Inner)
}

func (e *StakingError) Unwrap() error {
	return e.Inner
}

// StakingError has the single variant DsError(inner) at index 0. The inner
// error must itself be a SCALE enum.
func (e *StakingError) IndexValue() (int, interface{}, error) {
	if _, ok := e.Inner.(codec.EncodeVaryingDataType); !ok {
		return 0, nil, fmt.Errorf("staking error: %T has no SCALE form", e.Inner)
	}
	return 0, e.Inner, nil
}

// ValueAt decodes the payload as the type of the Inner already set, which
// defaults to the host's DSError.
func (e *StakingError) ValueAt(index uint) (interface{}, error) {
	if index != 0 {
		return nil, fmt.Errorf("staking error variant %d", index)
	}
	if _, ok := e.Inner.(*extension.ExtensionError); ok {
		return extension.ExtensionError{}, nil
	}
	return dappsstaking.DSError{}, nil
}

func (e *StakingError) SetValue(v interface{}) error {
	switch v := v.(type) {
	case extension.ExtensionError:
		e.Inner = &v
	case dappsstaking.DSError:
		e.Inner = &v
	default:
		return fmt.Errorf("staking error payload %T", v)
	}
	return nil
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	return &StakingError{Inner: err}
}

// backend is what Staking composes over: the raw capabilities or the
// extension facade.
type backend interface {
	ReadCurrentEra() (uint32, error)
	ReadEraInfo(era uint32) (types.EraInfo, error)
	BondAndStake(account common.AccountId, value types.Balance) error
}

type capsBackend struct {
	dappsstaking.Capabilities
}

func (b capsBackend) ReadCurrentEra() (uint32, error) {
	return b.Capabilities.ReadCurrentEra(), nil
}

var (
	_ backend = capsBackend{}
	_ backend = (*extension.DappsStakingExtension)(nil)
)

type Staking struct {
	env        contract.Env
	backend    backend
	dispatcher *contract.Dispatcher
}

// New composes directly over the typed call layer.
func New(env contract.Env, caps dappsstaking.Capabilities) *Staking {
	return newStaking(env, capsBackend{caps})
}

// NewOverExtension composes over an extension facade; failures then surface
// as DsError(ErrorCode(code)) from that facade.
func NewOverExtension(env contract.Env, ext *extension.DappsStakingExtension) *Staking {
	return newStaking(env, ext)
}

func newStaking(env contract.Env, b backend) *Staking {
	s := &Staking{env: env, backend: b}
	s.dispatcher = s.messages()
	return s
}

func (s *Staking) GetCurrentEra() uint32 {
	era, err := s.backend.ReadCurrentEra()
	if err != nil {
		log.Warn(log.Contract, "GetCurrentEra", "err", err)
	}
	return era
}

func (s *Staking) ReadEraInfo(era uint32) (types.EraInfo, error) {
	info, err := s.backend.ReadEraInfo(era)
	return info, wrapError(err)
}

// BondAndStake bonds value from the contract's own account.
func (s *Staking) BondAndStake(value types.Balance) error {
	self := s.env.AccountID()
	err := s.backend.BondAndStake(self, value)
	log.Debug(log.Contract, "BondAndStake", "contract", self, "value", value, "err", err)
	return wrapError(err)
}

// IsStakingError checks whether err is a StakingError and returns it.
func IsStakingError(err error) (*StakingError, bool) {
	var se *StakingError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
