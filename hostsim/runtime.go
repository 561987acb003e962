// Package hostsim is a simulated host runtime for the dapps-staking chain
// extension. It answers the extension calls from a LevelDB ledger, runs
// contract work in all-or-nothing transactions, and serves as the contract
// environment of the facades.
package hostsim

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/colorfulnotion/dappstaking/chainext"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/contract"
	"github.com/colorfulnotion/dappstaking/log"
	"github.com/colorfulnotion/dappstaking/types"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrTrapped wraps the protocol violation that aborted a transaction.
var ErrTrapped = errors.New("transaction trapped")

// errRolledBack keeps the writes of a failed standalone call out of the ledger.
var errRolledBack = errors.New("call rolled back")

var (
	_ chainext.Host = (*Runtime)(nil)
	_ chainext.Host = (*Tx)(nil)
	_ contract.Env  = (*Tx)(nil)
)

// CallContext carries what an extension handler may use.
type CallContext struct {
	ID       chainext.FuncID
	Contract common.AccountId
	Caller   common.AccountId
	Ledger   *Ledger
}

// HandlerFunc answers one chain extension call.
type HandlerFunc func(ctx *CallContext, input []byte) (status uint32, output []byte)

type fault struct {
	status *uint32
	output []byte
}

type Config struct {
	// DataDir holds the ledger. Empty keeps it in memory.
	DataDir string
	// Contract is the account of the contract the runtime executes.
	Contract common.AccountId
}

// Runtime is the simulated host. All ledger writes happen in serialised
// transactions: Transact for contract work, and a transaction of its own
// for every other write.
type Runtime struct {
	store    *Store
	contract common.AccountId
	metrics  *metrics

	txMu sync.Mutex

	mu       sync.Mutex
	handlers map[chainext.FuncID]HandlerFunc
	faults   map[chainext.FuncID]fault
}

// Tx is an open transaction. It is the chain extension host and the
// contract environment of the facades run inside it, and is only valid
// until Transact returns.
type Tx struct {
	rt     *Runtime
	ledger *Ledger
	caller common.AccountId
}

// Call implements chainext.Host against the uncommitted state.
func (tx *Tx) Call(id chainext.FuncID, input []byte) (uint32, []byte) {
	return tx.rt.dispatch(tx.ledger, tx.caller, id, input)
}

// AccountID implements contract.Env.
func (tx *Tx) AccountID() common.AccountId {
	return tx.rt.contract
}

func (tx *Tx) Caller() common.AccountId {
	return tx.caller
}

// EmitEvent appends ev to the event log of the transaction.
func (tx *Tx) EmitEvent(ev contract.Event) {
	rec := contract.MustRecord(tx.rt.contract, ev)
	if err := tx.ledger.AppendEvent(rec); err != nil {
		panic(fmt.Errorf("hostsim: storing event %s: %w", rec.Name, err))
	}
}

// Ledger returns the uncommitted state of the transaction.
func (tx *Tx) Ledger() *Ledger {
	return tx.ledger
}

// New opens the ledger, installs the staking handlers and opens era 1 on a
// fresh ledger.
func New(cfg Config) (*Runtime, error) {
	store, err := OpenStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	r := &Runtime{
		store:    store,
		contract: cfg.Contract,
		metrics:  newMetrics(),
		handlers: make(map[chainext.FuncID]HandlerFunc),
		faults:   make(map[chainext.FuncID]fault),
	}
	registerStakingHandlers(r)

	era, err := r.View().CurrentEra()
	if err == nil && era == 0 {
		err = r.update(func(l *Ledger) error {
			if err := l.SetCurrentEra(1); err != nil {
				return err
			}
			return l.PutEraInfo(1, types.EraInfo{})
		})
		era = 1
	}
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("hostsim genesis: %w", err)
	}
	r.metrics.currentEra.Set(float64(era))
	log.Debug(log.HostSim, "runtime ready", "datadir", cfg.DataDir, "contract", cfg.Contract, "era", era)
	return r, nil
}

func (r *Runtime) Close() error {
	return r.store.Close()
}

// Register installs or replaces the handler of id.
func (r *Runtime) Register(id chainext.FuncID, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = h
}

// Handlers lists the registered call identifiers.
func (r *Runtime) Handlers() []chainext.FuncID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]chainext.FuncID, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// InjectStatus makes id report code after its handler ran.
func (r *Runtime) InjectStatus(id chainext.FuncID, code uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.faults[id]
	f.status = &code
	r.faults[id] = f
}

// InjectOutput makes id return output after its handler ran.
func (r *Runtime) InjectOutput(id chainext.FuncID, output []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.faults[id]
	f.output = append([]byte{}, output...)
	r.faults[id] = f
}

func (r *Runtime) ClearFaults() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults = make(map[chainext.FuncID]fault)
}

// Call implements chainext.Host outside of any transaction. The call runs
// in a transaction of its own, committed only when it reports StatusOK. It
// waits for an open Transact to finish.
func (r *Runtime) Call(id chainext.FuncID, input []byte) (status uint32, output []byte) {
	err := r.update(func(l *Ledger) error {
		status, output = r.dispatch(l, common.AccountId{}, id, input)
		if status != chainext.StatusOK {
			return errRolledBack
		}
		return nil
	})
	if err != nil && !errors.Is(err, errRolledBack) {
		log.Error(log.HostSim, "standalone call", "func", id, "err", err)
		return chainext.StatusFailed, nil
	}
	return status, output
}

func (r *Runtime) dispatch(l *Ledger, caller common.AccountId, id chainext.FuncID, input []byte) (uint32, []byte) {
	r.mu.Lock()
	h, ok := r.handlers[id]
	f, faulty := r.faults[id]
	r.mu.Unlock()

	status, output := chainext.StatusFailed, []byte(nil)
	if ok {
		status, output = h(&CallContext{ID: id, Contract: r.contract, Caller: caller, Ledger: l}, input)
	} else {
		log.Warn(log.HostSim, "no handler", "func", id)
	}
	if faulty {
		if f.status != nil {
			status = *f.status
		}
		if f.output != nil {
			output = f.output
		}
	}
	r.metrics.observeCall(id, status)
	log.Debug(log.HostSim, "extension call", "func", id, "input", len(input), "status", status, "output", len(output))
	return status, output
}

// AccountID is the account of the contract the runtime executes.
func (r *Runtime) AccountID() common.AccountId {
	return r.contract
}

// Transact runs fn as one transaction on behalf of caller. The writes are
// committed only when fn returns nil. A protocol violation raised inside fn
// is recovered and returned wrapped in ErrTrapped. fn must reach the ledger
// through tx; calling the Runtime's own Call from fn deadlocks.
func (r *Runtime) Transact(caller common.AccountId, fn func(tx *Tx) error) (err error) {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	store, err := r.store.OpenTransaction()
	if err != nil {
		return err
	}
	defer store.Discard()

	tx := &Tx{rt: r, ledger: &Ledger{store: store}, caller: caller}
	if err = r.run(func() error { return fn(tx) }); err != nil {
		if errors.Is(err, ErrTrapped) {
			r.metrics.traps.Inc()
			log.Warn(log.HostSim, "transaction trapped", "caller", caller, "err", err)
		}
		return err
	}
	if err = store.Commit(); err != nil {
		return err
	}
	r.refreshEraGauge()
	return nil
}

func (r *Runtime) run(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pv, ok := chainext.IsProtocolViolation(rec)
			if !ok {
				panic(rec)
			}
			err = fmt.Errorf("%w: %w", ErrTrapped, pv)
		}
	}()
	return fn()
}

// update applies host-side changes in their own transaction.
func (r *Runtime) update(fn func(l *Ledger) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	store, err := r.store.OpenTransaction()
	if err != nil {
		return err
	}
	defer store.Discard()
	if err := fn(&Ledger{store: store}); err != nil {
		return err
	}
	return store.Commit()
}

func (r *Runtime) refreshEraGauge() {
	if era, err := r.View().CurrentEra(); err == nil {
		r.metrics.currentEra.Set(float64(era))
	}
}

// View returns the committed ledger.
func (r *Runtime) View() *Ledger {
	return &Ledger{store: r.store}
}

// Events returns the committed event log.
func (r *Runtime) Events() ([]contract.EmittedEvent, error) {
	return r.View().Events()
}

// Registry exposes the runtime's metrics.
func (r *Runtime) Registry() *prometheus.Registry {
	return r.metrics.registry
}
