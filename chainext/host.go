package chainext

// Host invokes a chain extension function with SCALE encoded input and
// returns the raw status code and output. Implementations block until the
// host returns.
type Host interface {
	Call(id FuncID, input []byte) (status uint32, output []byte)
}

// HostFunc adapts a plain function to Host.
type HostFunc func(id FuncID, input []byte) (uint32, []byte)

func (f HostFunc) Call(id FuncID, input []byte) (uint32, []byte) {
	return f(id, input)
}
