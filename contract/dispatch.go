package contract

import (
	"errors"
	"fmt"
	"sort"

	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/colorfulnotion/dappstaking/common"
)

var (
	ErrUnknownSelector = errors.New("unknown message selector")
	ErrInvalidInput    = errors.New("invalid message input")
)

// MessageFunc handles the SCALE encoded arguments of one message and returns
// its SCALE encoded return value.
type MessageFunc func(input []byte) ([]byte, error)

type Message struct {
	Name     string
	Selector [4]byte
	handle   MessageFunc
}

// Dispatcher routes selectors to the messages of one contract.
type Dispatcher struct {
	contract string
	messages map[[4]byte]Message
}

func NewDispatcher(contract string) *Dispatcher {
	return &Dispatcher{contract: contract, messages: make(map[[4]byte]Message)}
}

// Register adds a message under the selector of its name.
func (d *Dispatcher) Register(name string, fn MessageFunc) {
	sel := common.Selector(name)
	if prev, ok := d.messages[sel]; ok {
		panic(fmt.Sprintf("%s: selector %x of %s collides with %s", d.contract, sel, name, prev.Name))
	}
	d.messages[sel] = Message{Name: name, Selector: sel, handle: fn}
}

func (d *Dispatcher) Dispatch(selector [4]byte, input []byte) ([]byte, error) {
	msg, ok := d.messages[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %s 0x%x", ErrUnknownSelector, d.contract, selector)
	}
	return msg.handle(input)
}

// Messages lists the registered messages by name.
func (d *Dispatcher) Messages() []Message {
	out := make([]Message, 0, len(d.messages))
	for _, m := range d.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DecodeArgs decodes message arguments, rejecting trailing input.
func DecodeArgs(input []byte, dst any) error {
	if err := codec.UnmarshalExact(input, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// EncodeReturn encodes Ok(value) or, when err is a failure of the message,
// Err(code) using encodeErr. Other errors are returned as is.
func EncodeReturn(value any, err error, encodeErr func(error) (any, bool)) ([]byte, error) {
	res := codec.NewResult(value, nil)
	if err != nil {
		errValue, ok := encodeErr(err)
		if !ok {
			return nil, err
		}
		if setErr := res.Set(codec.Err, errValue); setErr != nil {
			return nil, setErr
		}
	} else if setErr := res.Set(codec.OK, value); setErr != nil {
		return nil, setErr
	}
	return codec.Marshal(res)
}
