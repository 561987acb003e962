// Package dappsstakingtest provides doubles for the dapps-staking layers: a
// configurable Capabilities mock that records calls, and a scripted raw
// chain extension host for fault injection.
package dappsstakingtest

import (
	"sync"
	"sync/atomic"

	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/dappsstaking"
	"github.com/colorfulnotion/dappstaking/types"
)

var _ dappsstaking.Capabilities = (*Mock)(nil)

// BondCall is one recorded BondAndStake invocation.
type BondCall struct {
	Account common.AccountId
	Value   types.Balance
}

// Mock is a configurable Capabilities double. Unconfigured methods return
// zero values and no error.
type Mock struct {
	ReadCurrentEraFn func() uint32
	ReadEraInfoFn    func(era uint32) (types.EraInfo, error)
	BondAndStakeFn   func(account common.AccountId, value types.Balance) error

	ReadCurrentEraCalls atomic.Int64
	ReadEraInfoCalls    atomic.Int64

	mu    sync.Mutex
	bonds []BondCall
	eras  []uint32
}

func (m *Mock) ReadCurrentEra() uint32 {
	m.ReadCurrentEraCalls.Add(1)
	if m.ReadCurrentEraFn != nil {
		return m.ReadCurrentEraFn()
	}
	return 0
}

func (m *Mock) ReadEraInfo(era uint32) (types.EraInfo, error) {
	m.ReadEraInfoCalls.Add(1)
	m.mu.Lock()
	m.eras = append(m.eras, era)
	m.mu.Unlock()
	if m.ReadEraInfoFn != nil {
		return m.ReadEraInfoFn(era)
	}
	return types.EraInfo{}, nil
}

func (m *Mock) BondAndStake(account common.AccountId, value types.Balance) error {
	m.mu.Lock()
	m.bonds = append(m.bonds, BondCall{Account: account, Value: value})
	m.mu.Unlock()
	if m.BondAndStakeFn != nil {
		return m.BondAndStakeFn(account, value)
	}
	return nil
}

// Bonds returns the recorded BondAndStake calls in order.
func (m *Mock) Bonds() []BondCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BondCall(nil), m.bonds...)
}

// ErasRead returns the eras passed to ReadEraInfo in order.
func (m *Mock) ErasRead() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.eras...)
}
