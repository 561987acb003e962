package hostsim

import (
	"encoding/binary"
	"fmt"

	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/contract"
	"github.com/colorfulnotion/dappstaking/types"
)

var (
	keyCurrentEra   = []byte("era")
	keyEventSeq     = []byte("eventseq")
	prefixEraInfo   = []byte("erainfo/")
	prefixFree      = []byte("free/")
	prefixBonded    = []byte("bonded/")
	prefixEventData = []byte("event/")
)

func eraKey(era uint32) []byte {
	return binary.BigEndian.AppendUint32(append([]byte(nil), prefixEraInfo...), era)
}

func accountKey(prefix []byte, account common.AccountId) []byte {
	return append(append([]byte(nil), prefix...), account[:]...)
}

// Ledger is the staking state of the simulated host. Values are stored in
// their SCALE form.
type Ledger struct {
	store *Store
}

func (l *Ledger) read(key []byte, dst any) (bool, error) {
	data, ok, err := l.store.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := codec.UnmarshalExact(data, dst); err != nil {
		return true, fmt.Errorf("ledger entry %q: %w", key, err)
	}
	return true, nil
}

func (l *Ledger) write(key []byte, value any) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("ledger entry %q: %w", key, err)
	}
	return l.store.Put(key, data)
}

// CurrentEra returns 0 before genesis.
func (l *Ledger) CurrentEra() (uint32, error) {
	var era uint32
	_, err := l.read(keyCurrentEra, &era)
	return era, err
}

func (l *Ledger) SetCurrentEra(era uint32) error {
	return l.write(keyCurrentEra, era)
}

func (l *Ledger) EraInfo(era uint32) (types.EraInfo, bool, error) {
	var info types.EraInfo
	ok, err := l.read(eraKey(era), &info)
	return info, ok, err
}

func (l *Ledger) PutEraInfo(era uint32, info types.EraInfo) error {
	return l.write(eraKey(era), info)
}

// Eras lists the recorded eras in ascending order.
func (l *Ledger) Eras() ([]uint32, error) {
	pairs, err := l.store.GetWithPrefix(prefixEraInfo)
	if err != nil {
		return nil, err
	}
	eras := make([]uint32, 0, len(pairs))
	for _, p := range pairs {
		eras = append(eras, binary.BigEndian.Uint32(p[0][len(prefixEraInfo):]))
	}
	return eras, nil
}

func (l *Ledger) balance(prefix []byte, account common.AccountId) (types.Balance, error) {
	var b types.Balance
	_, err := l.read(accountKey(prefix, account), &b)
	return b, err
}

func (l *Ledger) Free(account common.AccountId) (types.Balance, error) {
	return l.balance(prefixFree, account)
}

func (l *Ledger) SetFree(account common.AccountId, b types.Balance) error {
	return l.setBalance(prefixFree, account, b)
}

func (l *Ledger) Bonded(account common.AccountId) (types.Balance, error) {
	return l.balance(prefixBonded, account)
}

func (l *Ledger) SetBonded(account common.AccountId, b types.Balance) error {
	return l.setBalance(prefixBonded, account, b)
}

// setBalance drops the entry of a zero balance.
func (l *Ledger) setBalance(prefix []byte, account common.AccountId, b types.Balance) error {
	key := accountKey(prefix, account)
	if b.IsZero() {
		return l.store.Delete(key)
	}
	return l.write(key, b)
}

// AppendEvent stores ev under the next sequence number.
func (l *Ledger) AppendEvent(ev contract.EmittedEvent) error {
	var seq uint64
	if _, err := l.read(keyEventSeq, &seq); err != nil {
		return err
	}
	key := binary.BigEndian.AppendUint64(append([]byte(nil), prefixEventData...), seq)
	if err := l.write(key, ev); err != nil {
		return err
	}
	return l.write(keyEventSeq, seq+1)
}

// Events returns the event log in emission order.
func (l *Ledger) Events() ([]contract.EmittedEvent, error) {
	pairs, err := l.store.GetWithPrefix(prefixEventData)
	if err != nil {
		return nil, err
	}
	events := make([]contract.EmittedEvent, 0, len(pairs))
	for _, p := range pairs {
		var ev contract.EmittedEvent
		if err := codec.UnmarshalExact(p[1], &ev); err != nil {
			return nil, fmt.Errorf("event %x: %w", p[0], err)
		}
		events = append(events, ev)
	}
	return events, nil
}
