package contract

import (
	"sync"

	"github.com/colorfulnotion/dappstaking/common"
)

var _ Env = (*TestEnv)(nil)

// TestEnv is an in-memory Env with settable identities that records every
// emitted event.
type TestEnv struct {
	mu        sync.Mutex
	accountID common.AccountId
	caller    common.AccountId
	events    []EmittedEvent
}

func NewTestEnv(accountID, caller common.AccountId) *TestEnv {
	return &TestEnv{accountID: accountID, caller: caller}
}

func (e *TestEnv) AccountID() common.AccountId {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.accountID
}

func (e *TestEnv) Caller() common.AccountId {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.caller
}

func (e *TestEnv) SetAccountID(id common.AccountId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accountID = id
}

func (e *TestEnv) SetCaller(id common.AccountId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.caller = id
}

func (e *TestEnv) EmitEvent(ev Event) {
	rec := MustRecord(e.AccountID(), ev)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, rec)
}

func (e *TestEnv) Events() []EmittedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]EmittedEvent(nil), e.events...)
}
