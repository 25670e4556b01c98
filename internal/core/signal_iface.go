package core

// Frame is one serialized outbound event.
type Frame []byte

// SignalConnection abstracts a client's messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
