package sip

import (
	"fmt"
	"strconv"
	"strings"
)

// TransactionKeyKind distinguishes the two ways a TransactionKey can be
// built: the RFC 3261 §17 branch-based match, split into its server and
// client forms since the server key folds in the Via host/port and the
// client key does not, and the RFC 2543 fallback match used when a request
// arrives with a pre-RFC-3261 (non "z9hG4bK"-prefixed) branch.
type TransactionKeyKind uint8

const (
	RFC3261ServerKey TransactionKeyKind = iota
	RFC3261ClientKey
	RFC2543Key
)

func (k TransactionKeyKind) String() string {
	switch k {
	case RFC3261ServerKey:
		return "rfc3261-server"
	case RFC3261ClientKey:
		return "rfc3261-client"
	case RFC2543Key:
		return "rfc2543"
	default:
		return "unknown"
	}
}

// TransactionKey identifies a transaction for the purpose of matching a
// retransmitted request or a response to the transaction that owns it. It
// is a plain comparable struct - usable directly as a map key - rather
// than a pre-concatenated string, so two keys built from independently
// parsed messages compare equal by structure instead of by byte-exact
// string formatting.
type TransactionKey struct {
	Kind   TransactionKeyKind
	Branch string
	Host   string
	Port   int
	Method RequestMethod

	// RFC2543Key fields only.
	FromTag string
	CallID  string
	CSeq    uint32
	Via     string
}

func (k TransactionKey) String() string {
	var b strings.Builder
	switch k.Kind {
	case RFC3261ServerKey:
		b.WriteString(k.Branch)
		b.WriteString(txKeySeparator)
		b.WriteString(k.Host)
		b.WriteString(txKeySeparator)
		b.WriteString(strconv.Itoa(k.Port))
		b.WriteString(txKeySeparator)
		b.WriteString(string(k.Method))
	case RFC3261ClientKey:
		b.WriteString(k.Branch)
		b.WriteString(txKeySeparator)
		b.WriteString(string(k.Method))
	case RFC2543Key:
		b.WriteString(k.FromTag)
		b.WriteString(txKeySeparator)
		b.WriteString(k.CallID)
		b.WriteString(txKeySeparator)
		b.WriteString(string(k.Method))
		b.WriteString(txKeySeparator)
		b.WriteString(strconv.Itoa(int(k.CSeq)))
		b.WriteString(txKeySeparator)
		b.WriteString(k.Via)
	}
	return b.String()
}

const txKeySeparator = "__"

// foldCancelMethod maps ACK/CANCEL onto the INVITE transaction they belong
// to - RFC 3261 §9.2, both match the original INVITE's transaction.
func foldCancelMethod(method RequestMethod) RequestMethod {
	if method == ACK || method == CANCEL {
		return INVITE
	}
	return method
}

// MakeServerTxKey creates the server-side key for matching retransmitted
// requests - RFC 3261 §17.2.3.
func MakeServerTxKey(msg Message) (TransactionKey, error) {
	firstViaHop, ok := msg.Via()
	if !ok {
		return TransactionKey{}, fmt.Errorf("'Via' header not found or empty in message '%s'", MessageShortString(msg))
	}

	cseq, ok := msg.CSeq()
	if !ok {
		return TransactionKey{}, fmt.Errorf("'CSeq' header not found in message '%s'", MessageShortString(msg))
	}
	method := foldCancelMethod(cseq.MethodName)

	branch, ok := firstViaHop.Params.Get("branch")
	isRFC3261 := ok && branch != "" &&
		strings.HasPrefix(branch, RFC3261BranchMagicCookie) &&
		strings.TrimPrefix(branch, RFC3261BranchMagicCookie) != ""

	if isRFC3261 {
		port := firstViaHop.Port
		if port <= 0 {
			port = DefaultPort(firstViaHop.Transport)
		}

		return TransactionKey{
			Kind:   RFC3261ServerKey,
			Branch: branch,
			Host:   firstViaHop.Host,
			Port:   port,
			Method: method,
		}, nil
	}

	// RFC 2543 compliant fallback.
	from, ok := msg.From()
	if !ok {
		return TransactionKey{}, fmt.Errorf("'From' header not found in message '%s'", MessageShortString(msg))
	}
	fromTag, ok := from.Params.Get("tag")
	if !ok {
		return TransactionKey{}, fmt.Errorf("'tag' param not found in 'From' header of message '%s'", MessageShortString(msg))
	}
	callId, ok := msg.CallID()
	if !ok {
		return TransactionKey{}, fmt.Errorf("'Call-ID' header not found in message '%s'", MessageShortString(msg))
	}

	var via strings.Builder
	firstViaHop.StringWrite(&via)

	return TransactionKey{
		Kind:    RFC2543Key,
		FromTag: fromTag,
		CallID:  callId.Value(),
		Method:  method,
		CSeq:    cseq.SeqNo,
		Via:     via.String(),
	}, nil
}

// MakeClientTxKey creates the client-side key for matching responses -
// RFC 3261 §17.1.3.
func MakeClientTxKey(msg Message) (TransactionKey, error) {
	cseq, ok := msg.CSeq()
	if !ok {
		return TransactionKey{}, fmt.Errorf("'CSeq' header not found in message '%s'", MessageShortString(msg))
	}
	method := foldCancelMethod(cseq.MethodName)

	firstViaHop, ok := msg.Via()
	if !ok {
		return TransactionKey{}, fmt.Errorf("'Via' header not found or empty in message '%s'", MessageShortString(msg))
	}

	branch, ok := firstViaHop.Params.Get("branch")
	if !ok || len(branch) == 0 ||
		!strings.HasPrefix(branch, RFC3261BranchMagicCookie) ||
		len(strings.TrimPrefix(branch, RFC3261BranchMagicCookie)) == 0 {
		return TransactionKey{}, fmt.Errorf("'branch' not found or empty in 'Via' header of message '%s'", MessageShortString(msg))
	}

	return TransactionKey{
		Kind:   RFC3261ClientKey,
		Branch: branch,
		Method: method,
	}, nil
}
