package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/arnesip/sipkit/sip"
)

const (
	stateStartLine = 0
	stateHeader    = 1
	stateContent   = 2
	// stateParsed = 1
)

var (
	// ErrParseLineNoCRLF is returned when a line is read without reaching its terminating CRLF yet.
	ErrParseLineNoCRLF = errors.New("parser: line has no CRLF ending")
	// ErrParseInvalidMessage is returned when buffered data cannot form a valid SIP message.
	ErrParseInvalidMessage = errors.New("parser: invalid SIP message")
	// ErrParseReadBodyIncomplete is returned when the buffered body is shorter than Content-Length.
	ErrParseReadBodyIncomplete = errors.New("parser: message body incomplete")
	// ErrParseSipPartial is returned by ParseSIPStream when more data is needed to complete the message.
	ErrParseSipPartial = errors.New("parser: partial SIP message, more data needed")
)

var streamBufReader = sync.Pool{
	New: func() interface{} {
		// The Pool's New function should generally only return pointer
		// types, since a pointer can be put into the return interface
		// value without an allocation:
		return new(bytes.Buffer)
	},
}

type ParserStream struct {
	// HeadersParsers uses default list of headers to be parsed. Smaller list parser will be faster
	headersParsers mapHeadersParser

	// runtime values
	reader            *bytes.Buffer
	msg               sip.Message
	readContentLength int
	state             int
}

// resetState clears per-message state, keeping the buffered reader intact so
// that any data left over for the next message is not lost.
func (p *ParserStream) resetState() {
	p.state = stateStartLine
	p.msg = nil
	p.readContentLength = 0
}

// ParseSIPStream parses messages coming in a stream. data is appended to an
// internal buffer; it returns every message completed by this call. A
// message split across reads (e.g. a TCP segment boundary) is buffered and
// completed on a later call, returning ErrParseSipPartial in the meantime.
// It has slight overhead vs parsing full message
func (p *ParserStream) ParseSIPStream(data []byte) (msgs []sip.Message, err error) {
	if p.reader == nil {
		p.reader = streamBufReader.Get().(*bytes.Buffer)
		p.reader.Reset()
	}
	p.reader.Write(data)

	for {
		msg, err := p.parseOne()
		if err != nil {
			if err == ErrParseSipPartial {
				if len(msgs) > 0 {
					return msgs, nil
				}
				return nil, ErrParseSipPartial
			}
			return msgs, err
		}

		msgs = append(msgs, msg)

		if p.reader.Len() == 0 {
			streamBufReader.Put(p.reader)
			p.reader = nil
			return msgs, nil
		}
	}
}

// parseOne parses a single message out of the buffered reader, carrying
// partial state across calls via the ParserStream's state machine.
func (p *ParserStream) parseOne() (msg sip.Message, err error) {
	reader := p.reader

	unparsed := reader.Bytes() // TODO find a better way as we only want to move our offset

	msg, err = func(reader *bytes.Buffer) (msg sip.Message, err error) {

		// TODO change this with functions and store last function state
		switch p.state {
		case stateStartLine:
			// nextLine reports a line cut short by the end of the buffer as
			// an empty line, so check for a complete line first
			if bytes.IndexByte(reader.Bytes(), '\n') < 0 {
				return nil, ErrParseLineNoCRLF
			}
			startLine, err := nextLine(reader)

			if err != nil {
				if err == io.EOF {
					return nil, ErrParseLineNoCRLF
				}
				return nil, err
			}

			msg, err = ParseLine(startLine)
			if err != nil {
				return nil, err
			}

			p.state = stateHeader
			p.msg = msg
			fallthrough
		case stateHeader:
			msg := p.msg
			for {
				if bytes.IndexByte(reader.Bytes(), '\n') < 0 {
					return nil, ErrParseLineNoCRLF
				}
				line, err := nextLine(reader)

				if err != nil {
					if err == io.EOF {
						// No more to read
						return nil, ErrParseLineNoCRLF
					}
					return nil, err
				}

				if len(line) == 0 {
					// We've hit second CRLF
					break
				}

				err = p.headersParsers.parseMsgHeader(msg, line)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", err.Error(), ErrParseInvalidMessage)
					// log.Info().Err(err).Str("line", line).Msg("skip header due to error")
				}
				unparsed = reader.Bytes()
			}
			unparsed = reader.Bytes()

			// Grab content length header
			// TODO: Maybe this is not best approach
			hdrs := msg.GetHeaders("Content-Length")
			if len(hdrs) == 0 {
				// No body then
				return msg, nil
			}

			h := hdrs[0]

			// TODO: Have fast reference instead casting
			var contentLength int
			if clh, ok := h.(*sip.ContentLengthHeader); ok {
				contentLength = int(*clh)
			} else {
				n, err := strconv.Atoi(h.Value())
				if err != nil {
					return nil, fmt.Errorf("fail to parse content length: %w", err)
				}
				contentLength = n
			}

			if contentLength <= 0 {
				return msg, nil
			}

			body := make([]byte, contentLength)
			msg.SetBody(body)

			p.state = stateContent
			fallthrough
		case stateContent:
			msg := p.msg
			body := msg.Body()
			contentLength := len(body)

			n, err := reader.Read(body[p.readContentLength:])
			unparsed = reader.Bytes()
			if err != nil {
				return nil, fmt.Errorf("read message body failed: %w", err)
			}
			p.readContentLength += n

			if p.readContentLength < contentLength {
				return nil, ErrParseReadBodyIncomplete
			}

			p.state = -1 // Clear state
			return msg, nil
		default:
			return nil, fmt.Errorf("Parser is in unknown state")
		}

	}(reader)

	switch err {
	case ErrParseLineNoCRLF, ErrParseReadBodyIncomplete:
		reader.Reset()
		reader.Write(unparsed)
		return nil, ErrParseSipPartial
	}

	p.resetState()

	return msg, err
}
