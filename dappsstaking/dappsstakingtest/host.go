package dappsstakingtest

import (
	"sync"

	"github.com/colorfulnotion/dappstaking/chainext"
	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/colorfulnotion/dappstaking/types"
)

var _ chainext.Host = (*Host)(nil)

// Response is a raw host reply.
type Response struct {
	Status uint32
	Output []byte
}

// Call is one recorded host invocation.
type Call struct {
	ID    chainext.FuncID
	Input []byte
}

// Host is a scripted chain extension host. Era records and the current era
// answer the well-formed calls; Respond overrides a call identifier with an
// arbitrary reply, which is how out-of-range status codes and malformed
// output are injected.
type Host struct {
	mu         sync.Mutex
	currentEra uint32
	eraInfo    map[uint32]types.EraInfo
	failBonds  bool
	overrides  map[chainext.FuncID]Response
	calls      []Call
}

func NewHost() *Host {
	return &Host{
		eraInfo:   make(map[uint32]types.EraInfo),
		overrides: make(map[chainext.FuncID]Response),
	}
}

func (h *Host) SetCurrentEra(era uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentEra = era
}

// SetEraInfo makes era answer with status 0 and Ok(info).
func (h *Host) SetEraInfo(era uint32, info types.EraInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.eraInfo[era] = info
}

// FailBonds makes every bond answer with status 1.
func (h *Host) FailBonds(fail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failBonds = fail
}

// Respond pins the reply for id regardless of input.
func (h *Host) Respond(id chainext.FuncID, status uint32, output []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overrides[id] = Response{Status: status, Output: output}
}

func (h *Host) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

func (h *Host) Call(id chainext.FuncID, input []byte) (uint32, []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, Call{ID: id, Input: append([]byte(nil), input...)})

	if r, ok := h.overrides[id]; ok {
		return r.Status, r.Output
	}
	switch id {
	case chainext.ReadCurrentEra:
		return chainext.StatusOK, codec.MustMarshal(h.currentEra)
	case chainext.ReadEraInfo:
		var era uint32
		if err := codec.UnmarshalExact(input, &era); err != nil {
			return chainext.StatusFailed, nil
		}
		info, ok := h.eraInfo[era]
		if !ok {
			return chainext.StatusFailed, nil
		}
		out, _ := chainext.EncodeOk(info)
		return chainext.StatusOK, out
	case chainext.BondAndStake:
		if h.failBonds {
			return chainext.StatusFailed, nil
		}
		out, _ := chainext.EncodeOk(struct{}{})
		return chainext.StatusOK, out
	}
	return chainext.StatusFailed, nil
}
