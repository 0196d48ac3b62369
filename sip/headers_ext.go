package sip

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Headers beyond the core addressing/routing set: capability negotiation
// (Allow/Supported/Unsupported/Require), the scalar informational headers,
// and the multi-valued URI-list headers (Alert-Info/Call-Info). Grouped
// here rather than in headers.go since none of them need a dedicated slot
// on the headers struct - callers reach them through GetHeader, the same
// way the teacher's code already reaches WWW-Authenticate/Proxy-Authenticate.

func writeTokenList(buffer io.StringWriter, name string, vals []string) {
	buffer.WriteString(name)
	buffer.WriteString(": ")
	for i, v := range vals {
		if i > 0 {
			buffer.WriteString(", ")
		}
		buffer.WriteString(v)
	}
}

func tokenListValue(vals []string) string {
	return strings.Join(vals, ", ")
}

// AllowHeader is the 'Allow' header - RFC 3261 20.5.
type AllowHeader []RequestMethod

func (h *AllowHeader) Name() string { return "Allow" }

func (h *AllowHeader) Value() string {
	vals := make([]string, len(*h))
	for i, m := range *h {
		vals[i] = string(m)
	}
	return tokenListValue(vals)
}

func (h *AllowHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *AllowHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *AllowHeader) headerClone() Header {
	if h == nil {
		return (*AllowHeader)(nil)
	}
	newH := make(AllowHeader, len(*h))
	copy(newH, *h)
	return &newH
}

// tokenListHeader is the shared representation for headers whose value is
// a comma-separated list of bare tokens (Supported, Unsupported, Require,
// In-Reply-To, Accept, Accept-Language all take this shape).
type tokenListHeader struct {
	name   string
	tokens []string
}

func (h *tokenListHeader) Value() string { return tokenListValue(h.tokens) }

func (h *tokenListHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *tokenListHeader) StringWrite(buffer io.StringWriter) {
	writeTokenList(buffer, h.name, h.tokens)
}

// SupportedHeader is the 'Supported' header - RFC 3261 20.37.
type SupportedHeader struct{ tokenListHeader }

func NewSupportedHeader(tokens ...string) *SupportedHeader {
	return &SupportedHeader{tokenListHeader{name: "Supported", tokens: tokens}}
}

func (h *SupportedHeader) Name() string     { return "Supported" }
func (h *SupportedHeader) Tokens() []string { return h.tokens }

func (h *SupportedHeader) headerClone() Header {
	if h == nil {
		return (*SupportedHeader)(nil)
	}
	return NewSupportedHeader(append([]string(nil), h.tokens...)...)
}

// UnsupportedHeader is the 'Unsupported' header - RFC 3261 20.40.
type UnsupportedHeader struct{ tokenListHeader }

func NewUnsupportedHeader(tokens ...string) *UnsupportedHeader {
	return &UnsupportedHeader{tokenListHeader{name: "Unsupported", tokens: tokens}}
}

func (h *UnsupportedHeader) Name() string     { return "Unsupported" }
func (h *UnsupportedHeader) Tokens() []string { return h.tokens }

func (h *UnsupportedHeader) headerClone() Header {
	if h == nil {
		return (*UnsupportedHeader)(nil)
	}
	return NewUnsupportedHeader(append([]string(nil), h.tokens...)...)
}

// RequireHeader is the 'Require' header - RFC 3261 20.32.
type RequireHeader struct{ tokenListHeader }

func NewRequireHeader(tokens ...string) *RequireHeader {
	return &RequireHeader{tokenListHeader{name: "Require", tokens: tokens}}
}

func (h *RequireHeader) Name() string     { return "Require" }
func (h *RequireHeader) Tokens() []string { return h.tokens }

func (h *RequireHeader) headerClone() Header {
	if h == nil {
		return (*RequireHeader)(nil)
	}
	return NewRequireHeader(append([]string(nil), h.tokens...)...)
}

// InReplyToHeader is the 'In-Reply-To' header - RFC 3261 20.21, a list of
// Call-IDs of calls this request relates to.
type InReplyToHeader struct{ tokenListHeader }

func NewInReplyToHeader(callIDs ...string) *InReplyToHeader {
	return &InReplyToHeader{tokenListHeader{name: "In-Reply-To", tokens: callIDs}}
}

func (h *InReplyToHeader) Name() string     { return "In-Reply-To" }
func (h *InReplyToHeader) CallIDs() []string { return h.tokens }

func (h *InReplyToHeader) headerClone() Header {
	if h == nil {
		return (*InReplyToHeader)(nil)
	}
	return NewInReplyToHeader(append([]string(nil), h.tokens...)...)
}

// AcceptHeader is the 'Accept' header - RFC 3261 20.1, a list of media
// ranges (e.g. "application/sdp").
type AcceptHeader struct{ tokenListHeader }

func NewAcceptHeader(mediaRanges ...string) *AcceptHeader {
	return &AcceptHeader{tokenListHeader{name: "Accept", tokens: mediaRanges}}
}

func (h *AcceptHeader) Name() string        { return "Accept" }
func (h *AcceptHeader) MediaRanges() []string { return h.tokens }

func (h *AcceptHeader) headerClone() Header {
	if h == nil {
		return (*AcceptHeader)(nil)
	}
	return NewAcceptHeader(append([]string(nil), h.tokens...)...)
}

// AcceptLanguageHeader is the 'Accept-Language' header - RFC 3261 20.3.
type AcceptLanguageHeader struct{ tokenListHeader }

func NewAcceptLanguageHeader(langs ...string) *AcceptLanguageHeader {
	return &AcceptLanguageHeader{tokenListHeader{name: "Accept-Language", tokens: langs}}
}

func (h *AcceptLanguageHeader) Name() string     { return "Accept-Language" }
func (h *AcceptLanguageHeader) Languages() []string { return h.tokens }

func (h *AcceptLanguageHeader) headerClone() Header {
	if h == nil {
		return (*AcceptLanguageHeader)(nil)
	}
	return NewAcceptLanguageHeader(append([]string(nil), h.tokens...)...)
}

// ReplyToHeader is the 'Reply-To' header - RFC 3261 20.31. Same shape as
// To/From: a display name plus a SIP address and header params.
type ReplyToHeader struct {
	DisplayName string
	Address     Uri
	Params      HeaderParams
}

func (h *ReplyToHeader) Name() string { return "Reply-To" }

func (h *ReplyToHeader) Value() string {
	var buffer strings.Builder
	h.ValueStringWrite(&buffer)
	return buffer.String()
}

func (h *ReplyToHeader) ValueStringWrite(buffer io.StringWriter) {
	if h.DisplayName != "" {
		buffer.WriteString("\"")
		buffer.WriteString(h.DisplayName)
		buffer.WriteString("\" ")
	}
	buffer.WriteString("<")
	h.Address.StringWrite(buffer)
	buffer.WriteString(">")

	if h.Params != nil && h.Params.Length() > 0 {
		buffer.WriteString(";")
		h.Params.ToStringWrite(';', buffer)
	}
}

func (h *ReplyToHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *ReplyToHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	h.ValueStringWrite(buffer)
}

func (h *ReplyToHeader) headerClone() Header {
	if h == nil {
		return (*ReplyToHeader)(nil)
	}
	newH := &ReplyToHeader{
		DisplayName: h.DisplayName,
		Address:     h.Address,
	}
	if h.Params != nil {
		newH.Params = h.Params.Clone()
	}
	return newH
}

// OrganizationHeader is the 'Organization' header - RFC 3261 20.25.
type OrganizationHeader string

func (h *OrganizationHeader) Name() string { return "Organization" }

func (h *OrganizationHeader) Value() string { return string(*h) }

func (h *OrganizationHeader) String() string {
	return fmt.Sprintf("%s: %s", h.Name(), h.Value())
}

func (h *OrganizationHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *OrganizationHeader) headerClone() Header { return h }

// SubjectHeader is the 'Subject' header - RFC 3261 20.36.
type SubjectHeader string

func (h *SubjectHeader) Name() string { return "Subject" }

func (h *SubjectHeader) Value() string { return string(*h) }

func (h *SubjectHeader) String() string {
	return fmt.Sprintf("%s: %s", h.Name(), h.Value())
}

func (h *SubjectHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *SubjectHeader) headerClone() Header { return h }

// MIMEVersionHeader is the 'MIME-Version' header - RFC 3261 20.24.
type MIMEVersionHeader string

func (h *MIMEVersionHeader) Name() string { return "MIME-Version" }

func (h *MIMEVersionHeader) Value() string { return string(*h) }

func (h *MIMEVersionHeader) String() string {
	return fmt.Sprintf("%s: %s", h.Name(), h.Value())
}

func (h *MIMEVersionHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *MIMEVersionHeader) headerClone() Header { return h }

// WarningHeader is the 'Warning' header - RFC 3261 20.43: warn-code SP
// warn-agent SP warn-text.
type WarningHeader struct {
	Code  uint16
	Agent string
	Text  string
}

func (h *WarningHeader) Name() string { return "Warning" }

func (h *WarningHeader) Value() string {
	return fmt.Sprintf("%d %s %q", h.Code, h.Agent, h.Text)
}

func (h *WarningHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *WarningHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *WarningHeader) headerClone() Header {
	if h == nil {
		return (*WarningHeader)(nil)
	}
	newH := *h
	return &newH
}

// TimestampHeader is the 'Timestamp' header - RFC 3261 20.38: a request
// timestamp, optionally followed by the delay before the response was sent.
type TimestampHeader struct {
	Timestamp float64
	Delay     float64
	HasDelay  bool
}

func (h *TimestampHeader) Name() string { return "Timestamp" }

func (h *TimestampHeader) Value() string {
	ts := strconv.FormatFloat(h.Timestamp, 'f', -1, 64)
	if !h.HasDelay {
		return ts
	}
	return ts + " " + strconv.FormatFloat(h.Delay, 'f', -1, 64)
}

func (h *TimestampHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *TimestampHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *TimestampHeader) headerClone() Header {
	if h == nil {
		return (*TimestampHeader)(nil)
	}
	newH := *h
	return &newH
}

// ContentDispositionHeader is the 'Content-Disposition' header - RFC 3261
// 20.11: a disposition type plus handling/other params.
type ContentDispositionHeader struct {
	DispositionType string
	Params          HeaderParams
}

func (h *ContentDispositionHeader) Name() string { return "Content-Disposition" }

func (h *ContentDispositionHeader) Value() string {
	var buffer strings.Builder
	h.ValueStringWrite(&buffer)
	return buffer.String()
}

func (h *ContentDispositionHeader) ValueStringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.DispositionType)
	if h.Params != nil && h.Params.Length() > 0 {
		buffer.WriteString(";")
		h.Params.ToStringWrite(';', buffer)
	}
}

func (h *ContentDispositionHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *ContentDispositionHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	h.ValueStringWrite(buffer)
}

func (h *ContentDispositionHeader) headerClone() Header {
	if h == nil {
		return (*ContentDispositionHeader)(nil)
	}
	newH := &ContentDispositionHeader{DispositionType: h.DispositionType}
	if h.Params != nil {
		newH.Params = h.Params.Clone()
	}
	return newH
}

// InfoURIValue is one entry of an Alert-Info/Call-Info header: a
// bracketed absoluteURI (not necessarily a SIP URI - ringtone files and
// icons are commonly http(s) URLs) plus optional params.
type InfoURIValue struct {
	URI    string
	Params HeaderParams
}

func (v InfoURIValue) stringWrite(buffer io.StringWriter) {
	buffer.WriteString("<")
	buffer.WriteString(v.URI)
	buffer.WriteString(">")
	if v.Params != nil && v.Params.Length() > 0 {
		buffer.WriteString(";")
		v.Params.ToStringWrite(';', buffer)
	}
}

func (v InfoURIValue) clone() InfoURIValue {
	newV := InfoURIValue{URI: v.URI}
	if v.Params != nil {
		newV.Params = v.Params.Clone()
	}
	return newV
}

// infoListHeader is the shared representation for Alert-Info and Call-Info.
type infoListHeader struct {
	name   string
	values []InfoURIValue
}

func (h *infoListHeader) Value() string {
	var buffer strings.Builder
	h.valueStringWrite(&buffer)
	return buffer.String()
}

func (h *infoListHeader) valueStringWrite(buffer io.StringWriter) {
	for i, v := range h.values {
		if i > 0 {
			buffer.WriteString(", ")
		}
		v.stringWrite(buffer)
	}
}

func (h *infoListHeader) String() string {
	var buffer strings.Builder
	h.stringWrite(&buffer)
	return buffer.String()
}

func (h *infoListHeader) stringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.name)
	buffer.WriteString(": ")
	h.valueStringWrite(buffer)
}

func (h *infoListHeader) cloneValues() []InfoURIValue {
	newValues := make([]InfoURIValue, len(h.values))
	for i, v := range h.values {
		newValues[i] = v.clone()
	}
	return newValues
}

// AlertInfoHeader is the 'Alert-Info' header - RFC 3261 20.4.
type AlertInfoHeader struct{ infoListHeader }

func NewAlertInfoHeader(values ...InfoURIValue) *AlertInfoHeader {
	return &AlertInfoHeader{infoListHeader{name: "Alert-Info", values: values}}
}

func (h *AlertInfoHeader) Name() string          { return "Alert-Info" }
func (h *AlertInfoHeader) Values() []InfoURIValue { return h.values }

func (h *AlertInfoHeader) StringWrite(buffer io.StringWriter) { h.infoListHeader.stringWrite(buffer) }

func (h *AlertInfoHeader) headerClone() Header {
	if h == nil {
		return (*AlertInfoHeader)(nil)
	}
	return NewAlertInfoHeader(h.cloneValues()...)
}

// CallInfoHeader is the 'Call-Info' header - RFC 3261 20.9.
type CallInfoHeader struct{ infoListHeader }

func NewCallInfoHeader(values ...InfoURIValue) *CallInfoHeader {
	return &CallInfoHeader{infoListHeader{name: "Call-Info", values: values}}
}

func (h *CallInfoHeader) Name() string          { return "Call-Info" }
func (h *CallInfoHeader) Values() []InfoURIValue { return h.values }

func (h *CallInfoHeader) StringWrite(buffer io.StringWriter) { h.infoListHeader.stringWrite(buffer) }

func (h *CallInfoHeader) headerClone() Header {
	if h == nil {
		return (*CallInfoHeader)(nil)
	}
	return NewCallInfoHeader(h.cloneValues()...)
}
