// Package dappsstaking is the typed call layer over the dapps-staking chain
// extension: one function per call identifier, each doing encode, invoke,
// decode and error translation.
package dappsstaking

import (
	"errors"
	"fmt"

	"github.com/colorfulnotion/dappstaking/chainext"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/types"
)

var (
	// The host guarantees the current era read never fails, so its status is
	// not inspected.
	readCurrentEra = chainext.NewMethod(chainext.ReadCurrentEra).IgnoreStatus()
	readEraInfo    = chainext.NewMethod(chainext.ReadEraInfo)
	bondAndStake   = chainext.NewMethod(chainext.BondAndStake)
)

// DSError is a failure reported by the dapps-staking host.
type DSError struct {
	Code chainext.ErrorCode
}

func (e *DSError) Error() string {
	return fmt.Sprintf("ErrorCode(%s)", e.Code)
}

func (e *DSError) Unwrap() error {
	return e.Code
}

func wrapError(err error) error {
	var code chainext.ErrorCode
	if errors.As(err, &code) {
		return &DSError{Code: code}
	}
	return err
}

// ReadCurrentEra returns the host's current era.
func ReadCurrentEra(h chainext.Host) uint32 {
	return chainext.InvokeUnchecked[uint32](h, readCurrentEra, nil)
}

// ReadEraInfo returns the staking record of era.
func ReadEraInfo(h chainext.Host, era uint32) (types.EraInfo, error) {
	info, err := chainext.InvokeResult[types.EraInfo](h, readEraInfo, era)
	if err != nil {
		return types.EraInfo{}, wrapError(err)
	}
	return info, nil
}

// BondAndStake bonds value from account and stakes it.
func BondAndStake(h chainext.Host, account common.AccountId, value types.Balance) error {
	in := types.BondStakeInput{AccountId: account, Value: value}
	_, err := chainext.InvokeResult[struct{}](h, bondAndStake, in)
	return wrapError(err)
}

// DSError travels as the host's error code enum.
func (e *DSError) IndexValue() (int, interface{}, error) {
	return e.Code.IndexValue()
}

func (e *DSError) ValueAt(index uint) (interface{}, error) {
	return e.Code.ValueAt(index)
}

func (e *DSError) SetValue(v interface{}) error {
	return e.Code.SetValue(v)
}
