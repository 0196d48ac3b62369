package sip

// Transaction is the common surface every transaction - client or server -
// exposes to the registry that stores and terminates it by key.
type Transaction interface {
	Key() TransactionKey
	Terminate()
	Done() <-chan struct{}
}

// ClientTransaction is the subset of a client transaction that callers
// outside the transaction package need: waiting for responses, canceling
// an INVITE, and observing termination.
type ClientTransaction interface {
	Responses() <-chan *Response
	Cancel() error
	Terminate()
	Err() error
	Done() <-chan struct{}
}

// ServerTransaction is the subset of a server transaction that request
// handlers need: responding, observing ACK/CANCEL, and termination.
type ServerTransaction interface {
	Respond(res *Response) error
	Acks() <-chan *Request
	Cancels() <-chan *Request
	Terminate()
	Err() error
	Done() <-chan struct{}
}
