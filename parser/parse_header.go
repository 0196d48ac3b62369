package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arnesip/sipkit/sip"
)

// Here we have collection of headers parsing.
// Some of headers parsing are moved to different files for better maintance

// A HeaderParser is any function that turns raw header data into a Header object.
type HeaderParser func(headerName string, headerData string) (sip.Header, error)

type errComaDetected int

func (e errComaDetected) Error() string {
	return "comma detected"
}

// This needs to kept minimalistic in order to avoid overhead of parsing
var headersParsers = map[string]HeaderParser{
	"to":             parseToAddressHeader,
	"t":              parseToAddressHeader,
	"from":           parseFromAddressHeader,
	"f":              parseFromAddressHeader,
	"contact":        parseContactAddressHeader,
	"m":              parseContactAddressHeader,
	"call-id":        parseCallId,
	"i":              parseCallId,
	"cseq":           parseCSeq,
	"via":            parseViaHeader,
	"v":              parseViaHeader,
	"max-forwards":   parseMaxForwards,
	"content-length": parseContentLength,
	"l":              parseContentLength,
	"content-type":   parseContentType,
	"c":              parseContentType,
	"route":          parseRouteHeader,
	"record-route":   parseRecordRouteHeader,

	"allow":                 parseAllowHeader,
	"supported":             parseSupportedHeader,
	"k":                     parseSupportedHeader,
	"unsupported":           parseUnsupportedHeader,
	"require":               parseRequireHeader,
	"in-reply-to":           parseInReplyToHeader,
	"accept":                parseAcceptHeader,
	"accept-language":       parseAcceptLanguageHeader,
	"reply-to":              parseReplyToHeader,
	"organization":           parseOrganizationHeader,
	"mime-version":          parseMIMEVersionHeader,
	"warning":               parseWarningHeader,
	"timestamp":             parseTimestampHeader,
	"content-disposition":   parseContentDispositionHeader,
	"alert-info":            parseAlertInfoHeader,
	"call-info":             parseCallInfoHeader,
	"subject":               parseSubjectHeader,
	"s":                     parseSubjectHeader,

	"www-authenticate":      parseWWWAuthenticateHeader,
	"proxy-authenticate":    parseProxyAuthenticateHeader,
	"authorization":         parseAuthorizationHeader,
	"proxy-authorization":   parseProxyAuthorizationHeader,
	"authentication-info":   parseAuthenticationInfoHeader,
}

// mapHeadersParser lets the streaming parser reuse the same header dispatch
// table as the full message parser.
type mapHeadersParser map[string]HeaderParser

func (m mapHeadersParser) parseMsgHeader(msg sip.Message, headerText string) error {
	colonIdx := strings.Index(headerText, ":")
	if colonIdx == -1 {
		return fmt.Errorf("field name with no value in header: %s", headerText)
	}

	fieldName := strings.TrimSpace(headerText[:colonIdx])
	lowerFieldName := sip.HeaderToLower(fieldName)
	fieldText := strings.TrimSpace(headerText[colonIdx+1:])

	if headerParser, ok := m[lowerFieldName]; ok {
		header, err := headerParser(lowerFieldName, fieldText)
		if err != nil {
			return err
		}
		msg.AppendHeader(header)
		return nil
	}

	msg.AppendHeader(&sip.GenericHeader{
		HeaderName: fieldName,
		Contents:   fieldText,
	})
	return nil
}

// DefaultHeadersParser returns minimal version header parser.
// It can be extended or overwritten. Removing some defaults can break SIP functionality
//
// NOTE this API call may change
func DefaultHeadersParser() map[string]HeaderParser {
	return headersParsers
}

// parseCallId generates sip.CallIDHeader
func parseCallId(headerName string, headerText string) (
	header sip.Header, err error) {
	headerText = strings.TrimSpace(headerText)

	if len(headerText) == 0 {
		err = fmt.Errorf("empty Call-ID body")
		return
	}

	var callId = sip.CallIDHeader(headerText)

	return &callId, nil
}

// parseMaxForwards generates sip.MaxForwardsHeader
func parseMaxForwards(headerName string, headerText string) (header sip.Header, err error) {
	val, err := strconv.ParseUint(headerText, 10, 32)
	if err != nil {
		return nil, err
	}

	maxfwd := sip.MaxForwardsHeader(val)
	return &maxfwd, nil
}

// parseCSeq generates sip.CSeqHeader
func parseCSeq(headerName string, headerText string) (
	headers sip.Header, err error) {
	var cseq sip.CSeqHeader
	ind := strings.IndexAny(headerText, abnfWs)
	if ind < 1 || len(headerText)-ind < 2 {
		err = fmt.Errorf(
			"CSeq field should have precisely one whitespace section: '%s'",
			headerText,
		)
		return
	}

	var seqno uint64
	seqno, err = strconv.ParseUint(headerText[:ind], 10, 32)
	if err != nil {
		return
	}

	if seqno > maxCseq {
		err = fmt.Errorf("invalid CSeq %d: exceeds maximum permitted value "+
			"2**31 - 1", seqno)
		return
	}

	cseq.SeqNo = uint32(seqno)
	cseq.MethodName = sip.RequestMethod(headerText[ind+1:])
	return &cseq, nil
}

// parseContentLength generates sip.ContentLengthHeader
func parseContentLength(headerName string, headerText string) (header sip.Header, err error) {
	var contentLength sip.ContentLengthHeader
	var value uint64
	value, err = strconv.ParseUint(strings.TrimSpace(headerText), 10, 32)
	contentLength = sip.ContentLengthHeader(value)
	return &contentLength, err
}

// parseContentType generates sip.ContentTypeHeader
func parseContentType(headerName string, headerText string) (headers sip.Header, err error) {
	// var contentType sip.ContentType
	headerText = strings.TrimSpace(headerText)
	contentType := sip.ContentTypeHeader(headerText)
	return &contentType, nil
}
