package hostsim

import (
	"errors"
	"testing"
	"time"

	"github.com/colorfulnotion/dappstaking/chainext"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/contracts/extension"
	"github.com/colorfulnotion/dappstaking/contracts/staking"
	"github.com/colorfulnotion/dappstaking/dappsstaking"
	"github.com/colorfulnotion/dappstaking/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	contractAccount = common.MustDevAccount("charlie")
	alice           = common.MustDevAccount("alice")
)

func newRuntime(t *testing.T) *Runtime {
	t.Helper()
	r, err := New(Config{Contract: contractAccount})
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func facades(tx *Tx) (*extension.DappsStakingExtension, *staking.Staking) {
	ext := extension.New(tx, dappsstaking.NewExtension(tx))
	return ext, staking.NewOverExtension(tx, ext)
}

func TestGenesis(t *testing.T) {
	r := newRuntime(t)
	assert.Equal(t, uint32(1), dappsstaking.ReadCurrentEra(r))
	info, err := dappsstaking.ReadEraInfo(r, 1)
	require.NoError(t, err)
	assert.Equal(t, types.EraInfo{}, info)
	assert.Equal(t, []chainext.FuncID{chainext.ReadCurrentEra, chainext.ReadEraInfo, chainext.BondAndStake}, r.Handlers())
	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.currentEra))
}

func TestReadEraInfoScenarios(t *testing.T) {
	r := newRuntime(t)
	want := types.EraInfo{
		Rewards: types.RewardInfo{Stakers: types.NewBalance(100), Dapps: types.NewBalance(50)},
		Staked:  types.NewBalance(1000),
		Locked:  types.NewBalance(200),
	}
	require.NoError(t, r.update(func(l *Ledger) error { return l.PutEraInfo(5, want) }))

	require.NoError(t, r.Transact(alice, func(tx *Tx) error {
		_, s := facades(tx)
		info, err := s.ReadEraInfo(5)
		require.NoError(t, err)
		assert.Equal(t, want, info)

		_, err = s.ReadEraInfo(7)
		assert.EqualError(t, err, "StakingError::DsError(ExtensionError::ErrorCode(Failed))")
		return nil
	}))

	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.calls.WithLabelValues("READ_ERA_INFO", "0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.calls.WithLabelValues("READ_ERA_INFO", "1")))
}

func TestBondAndStakeMovesFunds(t *testing.T) {
	r := newRuntime(t)
	require.NoError(t, r.Fund(contractAccount, types.NewBalance(1000)))

	require.NoError(t, r.Transact(alice, func(tx *Tx) error {
		_, s := facades(tx)
		return s.BondAndStake(types.NewBalance(400))
	}))
	free, bonded, err := r.Balances(contractAccount)
	require.NoError(t, err)
	assert.Equal(t, types.NewBalance(600), free)
	assert.Equal(t, types.NewBalance(400), bonded)

	info, ok, err := r.View().EraInfo(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.NewBalance(400), info.Staked)
	assert.Equal(t, types.NewBalance(400), info.Locked)

	// The caller's balance is never touched.
	free, bonded, err = r.Balances(alice)
	require.NoError(t, err)
	assert.True(t, free.IsZero())
	assert.True(t, bonded.IsZero())
}

func TestBondAndStakeFailures(t *testing.T) {
	r := newRuntime(t)
	require.NoError(t, r.Fund(contractAccount, types.NewBalance(10)))

	for _, value := range []uint64{0, 11} {
		err := r.Transact(alice, func(tx *Tx) error {
			_, s := facades(tx)
			return s.BondAndStake(types.NewBalance(value))
		})
		assert.ErrorIs(t, err, chainext.ErrorCodeFailed, "value %d", value)
	}
	free, bonded, err := r.Balances(contractAccount)
	require.NoError(t, err)
	assert.Equal(t, types.NewBalance(10), free)
	assert.True(t, bonded.IsZero())
}

func TestProtocolViolationTrapsTransaction(t *testing.T) {
	r := newRuntime(t)
	require.NoError(t, r.Fund(contractAccount, types.NewBalance(100)))
	r.InjectStatus(chainext.BondAndStake, 42)

	reached := false
	err := r.Transact(alice, func(tx *Tx) error {
		ext, s := facades(tx)
		_, _ = ext.ReadCurrentEra()
		_ = s.BondAndStake(types.NewBalance(50))
		reached = true
		return nil
	})
	require.ErrorIs(t, err, ErrTrapped)
	assert.False(t, reached)
	pv, ok := chainext.IsProtocolViolation(err)
	require.True(t, ok)
	assert.Equal(t, chainext.UnknownStatusCode, pv.Kind)
	assert.Equal(t, uint32(42), pv.Status)

	// The handler ran, but none of its writes nor the event survive.
	free, bonded, err := r.Balances(contractAccount)
	require.NoError(t, err)
	assert.Equal(t, types.NewBalance(100), free)
	assert.True(t, bonded.IsZero())
	events, err := r.Events()
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.traps))

	r.ClearFaults()
	require.NoError(t, r.Transact(alice, func(tx *Tx) error {
		_, s := facades(tx)
		return s.BondAndStake(types.NewBalance(50))
	}))
}

func TestMalformedOutputTraps(t *testing.T) {
	r := newRuntime(t)
	r.InjectOutput(chainext.ReadCurrentEra, []byte{1})
	err := r.Transact(alice, func(tx *Tx) error {
		dappsstaking.ReadCurrentEra(tx)
		return nil
	})
	pv, ok := chainext.IsProtocolViolation(err)
	require.True(t, ok)
	assert.Equal(t, chainext.MalformedOutput, pv.Kind)
}

func TestTransactDiscardsOnError(t *testing.T) {
	r := newRuntime(t)
	boom := errors.New("boom")
	err := r.Transact(alice, func(tx *Tx) error {
		ext, _ := facades(tx)
		_, _ = ext.ReadCurrentEra()
		return boom
	})
	assert.Equal(t, boom, err)
	events, err := r.Events()
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, r.Transact(alice, func(tx *Tx) error {
		assert.Equal(t, alice, tx.Caller())
		ext, _ := facades(tx)
		_, err := ext.ReadCurrentEra()
		return err
	}))
	events, err = r.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, contractAccount, events[0].Emitter)
	assert.Equal(t, extension.CurrentEraUpdated{}.EventName(), events[0].Name)
}

func TestOtherPanicsPropagate(t *testing.T) {
	r := newRuntime(t)
	assert.PanicsWithValue(t, "bug", func() {
		_ = r.Transact(alice, func(*Tx) error { panic("bug") })
	})
	// The runtime stays usable.
	require.NoError(t, r.Transact(alice, func(*Tx) error { return nil }))
}

func TestAdvanceEra(t *testing.T) {
	r := newRuntime(t)
	require.NoError(t, r.Fund(contractAccount, types.NewBalance(10)))
	require.NoError(t, r.Transact(alice, func(tx *Tx) error {
		_, s := facades(tx)
		return s.BondAndStake(types.NewBalance(4))
	}))

	rewards := types.RewardInfo{Stakers: types.NewBalance(7), Dapps: types.NewBalance(3)}
	next, err := r.AdvanceEra(rewards)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), next)
	assert.Equal(t, uint32(2), dappsstaking.ReadCurrentEra(r))

	closed, err := dappsstaking.ReadEraInfo(r, 1)
	require.NoError(t, err)
	assert.Equal(t, rewards, closed.Rewards)
	opened, err := dappsstaking.ReadEraInfo(r, 2)
	require.NoError(t, err)
	assert.Equal(t, types.NewBalance(4), opened.Staked)
	assert.True(t, opened.Rewards.Stakers.IsZero())

	eras, err := r.View().Eras()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, eras)
}

func TestLedgerPersists(t *testing.T) {
	dir := t.TempDir()
	r, err := New(Config{DataDir: dir, Contract: contractAccount})
	require.NoError(t, err)
	require.NoError(t, r.Fund(alice, types.NewBalance(5)))
	_, err = r.AdvanceEra(types.RewardInfo{})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = New(Config{DataDir: dir, Contract: contractAccount})
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, uint32(2), dappsstaking.ReadCurrentEra(r))
	free, _, err := r.Balances(alice)
	require.NoError(t, err)
	assert.Equal(t, types.NewBalance(5), free)
}

func TestRegisterReplacesHandler(t *testing.T) {
	r := newRuntime(t)
	r.Register(chainext.ReadCurrentEra, func(ctx *CallContext, _ []byte) (uint32, []byte) {
		assert.Equal(t, contractAccount, ctx.Contract)
		return chainext.StatusOK, []byte{9, 0, 0, 0}
	})
	assert.Equal(t, uint32(9), dappsstaking.ReadCurrentEra(r))

	status, _ := r.Call(chainext.FuncID(1), nil)
	assert.Equal(t, chainext.StatusFailed, status)
}

func TestStandaloneCallWaitsForTransaction(t *testing.T) {
	r := newRuntime(t)
	require.NoError(t, r.Fund(alice, types.NewBalance(100)))

	opened := make(chan struct{})
	release := make(chan struct{})
	abort := errors.New("abort")
	txDone := make(chan error, 1)
	go func() {
		txDone <- r.Transact(contractAccount, func(tx *Tx) error {
			close(opened)
			<-release
			return abort
		})
	}()
	<-opened

	bondDone := make(chan error, 1)
	go func() {
		bondDone <- dappsstaking.BondAndStake(r, alice, types.NewBalance(40))
	}()
	select {
	case err := <-bondDone:
		t.Fatalf("call ran inside another transaction: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.Equal(t, abort, <-txDone)
	require.NoError(t, <-bondDone)

	free, bonded, err := r.Balances(alice)
	require.NoError(t, err)
	assert.Equal(t, types.NewBalance(60), free)
	assert.Equal(t, types.NewBalance(40), bonded)
}

func TestStandaloneCallRollsBackOnFailure(t *testing.T) {
	r := newRuntime(t)
	require.NoError(t, r.Fund(alice, types.NewBalance(100)))
	r.InjectStatus(chainext.BondAndStake, chainext.StatusFailed)

	err := dappsstaking.BondAndStake(r, alice, types.NewBalance(40))
	assert.ErrorIs(t, err, chainext.ErrorCodeFailed)

	free, bonded, err := r.Balances(alice)
	require.NoError(t, err)
	assert.Equal(t, types.NewBalance(100), free)
	assert.True(t, bonded.IsZero())
}

func TestTxLedgerIsUncommitted(t *testing.T) {
	r := newRuntime(t)
	require.NoError(t, r.Transact(alice, func(tx *Tx) error {
		require.NoError(t, tx.Ledger().SetFree(alice, types.NewBalance(3)))
		free, err := tx.Ledger().Free(alice)
		require.NoError(t, err)
		assert.Equal(t, types.NewBalance(3), free)

		free, _, err = r.Balances(alice)
		require.NoError(t, err)
		assert.True(t, free.IsZero())
		return nil
	}))
	free, _, err := r.Balances(alice)
	require.NoError(t, err)
	assert.Equal(t, types.NewBalance(3), free)
}
