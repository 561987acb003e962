package hostsim

import (
	"errors"
	"fmt"

	"github.com/colorfulnotion/dappstaking/chainext"
	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/log"
	"github.com/colorfulnotion/dappstaking/types"
)

var (
	ErrZeroValue           = errors.New("zero value")
	ErrInsufficientBalance = errors.New("insufficient free balance")
)

func registerStakingHandlers(r *Runtime) {
	r.handlers[chainext.ReadCurrentEra] = handleReadCurrentEra
	r.handlers[chainext.ReadEraInfo] = handleReadEraInfo
	r.handlers[chainext.BondAndStake] = handleBondAndStake
}

func failed(ctx *CallContext, reason string, kv ...any) (uint32, []byte) {
	log.Debug(log.HostSim, "call failed: "+reason, append([]any{"func", ctx.ID}, kv...)...)
	return chainext.StatusFailed, nil
}

func handleReadCurrentEra(ctx *CallContext, _ []byte) (uint32, []byte) {
	era, err := ctx.Ledger.CurrentEra()
	if err != nil {
		log.Error(log.HostSim, "reading current era", "err", err)
	}
	return chainext.StatusOK, codec.MustMarshal(era)
}

func handleReadEraInfo(ctx *CallContext, input []byte) (uint32, []byte) {
	var era uint32
	if err := codec.UnmarshalExact(input, &era); err != nil {
		return failed(ctx, "bad input", "err", err)
	}
	info, ok, err := ctx.Ledger.EraInfo(era)
	switch {
	case err != nil:
		return failed(ctx, "ledger", "err", err)
	case !ok:
		return failed(ctx, "unknown era", "era", era)
	}
	out, err := chainext.EncodeOk(info)
	if err != nil {
		return failed(ctx, "encoding", "err", err)
	}
	return chainext.StatusOK, out
}

func handleBondAndStake(ctx *CallContext, input []byte) (uint32, []byte) {
	var in types.BondStakeInput
	if err := codec.UnmarshalExact(input, &in); err != nil {
		return failed(ctx, "bad input", "err", err)
	}
	if err := bond(ctx.Ledger, in.AccountId, in.Value); err != nil {
		return failed(ctx, "bond", "account", in.AccountId, "value", in.Value, "err", err)
	}
	out, err := chainext.EncodeOk(struct{}{})
	if err != nil {
		return failed(ctx, "encoding", "err", err)
	}
	return chainext.StatusOK, out
}

// bond moves value from the free to the bonded balance of account and adds
// it to the stake of the current era. Nothing is written on failure.
func bond(l *Ledger, account common.AccountId, value types.Balance) error {
	if value.IsZero() {
		return ErrZeroValue
	}
	free, err := l.Free(account)
	if err != nil {
		return err
	}
	remaining, err := free.Sub(value)
	if err != nil {
		return fmt.Errorf("%w: %s < %s", ErrInsufficientBalance, free, value)
	}
	bonded, err := l.Bonded(account)
	if err != nil {
		return err
	}
	newBonded, err := bonded.Add(value)
	if err != nil {
		return err
	}
	era, err := l.CurrentEra()
	if err != nil {
		return err
	}
	info, _, err := l.EraInfo(era)
	if err != nil {
		return err
	}
	if info.Staked, err = info.Staked.Add(value); err != nil {
		return err
	}
	if info.Locked, err = info.Locked.Add(value); err != nil {
		return err
	}

	if err := l.SetFree(account, remaining); err != nil {
		return err
	}
	if err := l.SetBonded(account, newBonded); err != nil {
		return err
	}
	return l.PutEraInfo(era, info)
}

// Fund credits value to the free balance of account.
func (r *Runtime) Fund(account common.AccountId, value types.Balance) error {
	return r.update(func(l *Ledger) error {
		free, err := l.Free(account)
		if err != nil {
			return err
		}
		if free, err = free.Add(value); err != nil {
			return err
		}
		return l.SetFree(account, free)
	})
}

// AdvanceEra books rewards on the current era and opens the next one, which
// carries over the staked and locked totals. It returns the new era.
func (r *Runtime) AdvanceEra(rewards types.RewardInfo) (uint32, error) {
	var next uint32
	err := r.update(func(l *Ledger) error {
		era, err := l.CurrentEra()
		if err != nil {
			return err
		}
		info, _, err := l.EraInfo(era)
		if err != nil {
			return err
		}
		info.Rewards = rewards
		if err := l.PutEraInfo(era, info); err != nil {
			return err
		}
		next = era + 1
		if err := l.PutEraInfo(next, types.EraInfo{Staked: info.Staked, Locked: info.Locked}); err != nil {
			return err
		}
		return l.SetCurrentEra(next)
	})
	if err != nil {
		return 0, err
	}
	r.metrics.currentEra.Set(float64(next))
	log.Info(log.HostSim, "era advanced", "era", next, "stakers", rewards.Stakers, "dapps", rewards.Dapps)
	return next, nil
}

// Balances returns the committed free and bonded balance of account.
func (r *Runtime) Balances(account common.AccountId) (free, bonded types.Balance, err error) {
	v := r.View()
	if free, err = v.Free(account); err != nil {
		return
	}
	bonded, err = v.Bonded(account)
	return
}
