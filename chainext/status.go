package chainext

const (
	StatusOK     uint32 = 0
	StatusFailed uint32 = 1
)

// FromStatusCode translates a host status code: 0 is success, 1 is
// ErrorCodeFailed. Any other code panics with a ProtocolViolation.
func FromStatusCode(code uint32) error {
	return checkStatus(0, code)
}

func checkStatus(id FuncID, code uint32) error {
	switch code {
	case StatusOK:
		return nil
	case StatusFailed:
		return ErrorCodeFailed
	default:
		panic(&ProtocolViolation{Kind: UnknownStatusCode, Func: id, Status: code})
	}
}
