package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arnesip/sipkit/sip"
	"github.com/icholy/digest"
)

// Parsers for the capability-negotiation, informational and URI-list
// headers. Kept in their own file the same way Via/address parsing is
// split out of parse_header.go.

func splitTokenList(headerText string) []string {
	parts := strings.Split(headerText, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

func parseAllowHeader(headerName string, headerText string) (header sip.Header, err error) {
	tokens := splitTokenList(headerText)
	h := make(sip.AllowHeader, len(tokens))
	for i, t := range tokens {
		h[i] = sip.RequestMethod(t)
	}
	return &h, nil
}

func parseSupportedHeader(headerName string, headerText string) (header sip.Header, err error) {
	return sip.NewSupportedHeader(splitTokenList(headerText)...), nil
}

func parseUnsupportedHeader(headerName string, headerText string) (header sip.Header, err error) {
	return sip.NewUnsupportedHeader(splitTokenList(headerText)...), nil
}

func parseRequireHeader(headerName string, headerText string) (header sip.Header, err error) {
	return sip.NewRequireHeader(splitTokenList(headerText)...), nil
}

func parseInReplyToHeader(headerName string, headerText string) (header sip.Header, err error) {
	return sip.NewInReplyToHeader(splitTokenList(headerText)...), nil
}

func parseAcceptHeader(headerName string, headerText string) (header sip.Header, err error) {
	return sip.NewAcceptHeader(splitTokenList(headerText)...), nil
}

func parseAcceptLanguageHeader(headerName string, headerText string) (header sip.Header, err error) {
	return sip.NewAcceptLanguageHeader(splitTokenList(headerText)...), nil
}

// parseReplyToHeader generates sip.ReplyToHeader, grounded on the same
// ParseAddressValue helper To/From/Contact already use.
func parseReplyToHeader(headerName string, headerText string) (header sip.Header, err error) {
	h := &sip.ReplyToHeader{
		Address: sip.Uri{},
		Params:  sip.NewParams(),
	}
	h.DisplayName, err = ParseAddressValue(headerText, &h.Address, h.Params)
	return h, err
}

func parseOrganizationHeader(headerName string, headerText string) (header sip.Header, err error) {
	org := sip.OrganizationHeader(strings.TrimSpace(headerText))
	return &org, nil
}

func parseMIMEVersionHeader(headerName string, headerText string) (header sip.Header, err error) {
	v := sip.MIMEVersionHeader(strings.TrimSpace(headerText))
	return &v, nil
}

func parseSubjectHeader(headerName string, headerText string) (header sip.Header, err error) {
	s := sip.SubjectHeader(strings.TrimSpace(headerText))
	return &s, nil
}

// parseWarningHeader generates sip.WarningHeader: "code agent \"text\"".
func parseWarningHeader(headerName string, headerText string) (header sip.Header, err error) {
	headerText = strings.TrimSpace(headerText)
	firstSpace := strings.IndexAny(headerText, abnfWs)
	if firstSpace < 0 {
		return nil, fmt.Errorf("malformed Warning header: %q", headerText)
	}
	code, err := strconv.ParseUint(headerText[:firstSpace], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("malformed Warning code: %w", err)
	}

	rest := strings.TrimSpace(headerText[firstSpace+1:])
	secondSpace := strings.IndexAny(rest, abnfWs)
	if secondSpace < 0 {
		return nil, fmt.Errorf("malformed Warning header: %q", headerText)
	}

	h := &sip.WarningHeader{
		Code:  uint16(code),
		Agent: rest[:secondSpace],
		Text:  strings.Trim(strings.TrimSpace(rest[secondSpace+1:]), "\""),
	}
	return h, nil
}

// parseTimestampHeader generates sip.TimestampHeader: "time" or "time delay".
func parseTimestampHeader(headerName string, headerText string) (header sip.Header, err error) {
	fields := strings.Fields(headerText)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty Timestamp body")
	}

	ts, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, fmt.Errorf("malformed Timestamp: %w", err)
	}

	h := &sip.TimestampHeader{Timestamp: ts}
	if len(fields) > 1 {
		delay, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed Timestamp delay: %w", err)
		}
		h.Delay = delay
		h.HasDelay = true
	}
	return h, nil
}

// parseContentDispositionHeader generates sip.ContentDispositionHeader:
// "type;param=value;...".
func parseContentDispositionHeader(headerName string, headerText string) (header sip.Header, err error) {
	semicolon := strings.IndexByte(headerText, ';')
	h := &sip.ContentDispositionHeader{Params: sip.NewParams()}
	if semicolon < 0 {
		h.DispositionType = strings.TrimSpace(headerText)
		return h, nil
	}

	h.DispositionType = strings.TrimSpace(headerText[:semicolon])
	_, err = UnmarshalParams(headerText[semicolon+1:], ';', 0, h.Params)
	return h, err
}

// parseInfoURIList parses the comma-separated "<uri>;params, <uri>;params"
// shape shared by Alert-Info and Call-Info.
func parseInfoURIList(headerText string) ([]sip.InfoURIValue, error) {
	var values []sip.InfoURIValue
	for _, part := range strings.Split(headerText, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		open := strings.IndexByte(part, '<')
		closeIdx := strings.IndexByte(part, '>')
		if open < 0 || closeIdx < 0 || closeIdx < open {
			return nil, fmt.Errorf("malformed URI value: %q", part)
		}

		v := sip.InfoURIValue{
			URI:    part[open+1 : closeIdx],
			Params: sip.NewParams(),
		}

		if rest := strings.TrimSpace(part[closeIdx+1:]); strings.HasPrefix(rest, ";") {
			if _, err := UnmarshalParams(rest[1:], ';', 0, v.Params); err != nil {
				return nil, err
			}
		}

		values = append(values, v)
	}
	return values, nil
}

func parseAlertInfoHeader(headerName string, headerText string) (header sip.Header, err error) {
	values, err := parseInfoURIList(headerText)
	if err != nil {
		return nil, err
	}
	return sip.NewAlertInfoHeader(values...), nil
}

func parseCallInfoHeader(headerName string, headerText string) (header sip.Header, err error) {
	values, err := parseInfoURIList(headerText)
	if err != nil {
		return nil, err
	}
	return sip.NewCallInfoHeader(values...), nil
}

// parseWWWAuthenticateHeader generates sip.WWWAuthenticateHeader.
func parseWWWAuthenticateHeader(headerName string, headerText string) (header sip.Header, err error) {
	chal, err := digest.ParseChallenge(strings.TrimSpace(headerText))
	if err != nil {
		return nil, err
	}
	return &sip.WWWAuthenticateHeader{Challenge: *chal}, nil
}

func parseProxyAuthenticateHeader(headerName string, headerText string) (header sip.Header, err error) {
	chal, err := digest.ParseChallenge(strings.TrimSpace(headerText))
	if err != nil {
		return nil, err
	}
	return &sip.ProxyAuthenticateHeader{Challenge: *chal}, nil
}

func parseAuthorizationHeader(headerName string, headerText string) (header sip.Header, err error) {
	cred, err := digest.ParseCredentials(strings.TrimSpace(headerText))
	if err != nil {
		return nil, err
	}
	return &sip.AuthorizationHeader{Credentials: *cred}, nil
}

func parseProxyAuthorizationHeader(headerName string, headerText string) (header sip.Header, err error) {
	cred, err := digest.ParseCredentials(strings.TrimSpace(headerText))
	if err != nil {
		return nil, err
	}
	return &sip.ProxyAuthorizationHeader{Credentials: *cred}, nil
}

// parseAuthenticationInfoHeader generates sip.AuthenticationInfoHeader: a
// plain comma-separated param list (nextnonce/qop/rspauth/cnonce/nc), with
// no challenge or credentials of its own.
func parseAuthenticationInfoHeader(headerName string, headerText string) (header sip.Header, err error) {
	params := sip.NewParams()
	if _, err := UnmarshalParams(headerText, ',', 0, params); err != nil {
		return nil, err
	}
	return &sip.AuthenticationInfoHeader{Params: params}, nil
}
