// Package contract holds what the staking facades need from their execution
// environment: their own account, the caller, and an event log.
package contract

import (
	"fmt"

	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/colorfulnotion/dappstaking/common"
)

// Env is the execution environment of one contract instance.
type Env interface {
	// AccountID is the account of the executing contract.
	AccountID() common.AccountId
	Caller() common.AccountId
	EmitEvent(ev Event)
}

// Event is a contract event. Its SCALE encoding is the event data.
type Event interface {
	// EventName is the qualified name, "<Contract>::<Event>".
	EventName() string
	Topics() []common.Hash
}

// EmittedEvent is an event as it lands in the event log.
type EmittedEvent struct {
	Emitter common.AccountId `json:"emitter"`
	Name    string           `json:"name"`
	Topics  []common.Hash    `json:"topics"`
	Data    []byte           `json:"data"`
}

// Record encodes ev as emitted by emitter.
func Record(emitter common.AccountId, ev Event) (EmittedEvent, error) {
	data, err := codec.Marshal(ev)
	if err != nil {
		return EmittedEvent{}, fmt.Errorf("encoding event %s: %w", ev.EventName(), err)
	}
	return EmittedEvent{
		Emitter: emitter,
		Name:    ev.EventName(),
		Topics:  ev.Topics(),
		Data:    data,
	}, nil
}

// MustRecord is Record for events whose encoding cannot fail.
func MustRecord(emitter common.AccountId, ev Event) EmittedEvent {
	rec, err := Record(emitter, ev)
	if err != nil {
		panic(err)
	}
	return rec
}
