package sip

import (
	"io"
	"strings"

	"github.com/icholy/digest"
)

// Typed challenge/credential headers, RFC 3261 20.27-20.28, 20.7, 20.44, 20.6,
// wire-formatted via github.com/icholy/digest's RFC 2617 digest codec.

// WWWAuthenticateHeader is the 'WWW-Authenticate' header - RFC 3261 20.44.
type WWWAuthenticateHeader struct {
	digest.Challenge
}

func (h *WWWAuthenticateHeader) Name() string { return "WWW-Authenticate" }

func (h *WWWAuthenticateHeader) Value() string { return h.Challenge.String() }

func (h *WWWAuthenticateHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *WWWAuthenticateHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *WWWAuthenticateHeader) headerClone() Header {
	if h == nil {
		return (*WWWAuthenticateHeader)(nil)
	}
	return &WWWAuthenticateHeader{Challenge: h.Challenge}
}

// ProxyAuthenticateHeader is the 'Proxy-Authenticate' header - RFC 3261 20.27.
type ProxyAuthenticateHeader struct {
	digest.Challenge
}

func (h *ProxyAuthenticateHeader) Name() string { return "Proxy-Authenticate" }

func (h *ProxyAuthenticateHeader) Value() string { return h.Challenge.String() }

func (h *ProxyAuthenticateHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *ProxyAuthenticateHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *ProxyAuthenticateHeader) headerClone() Header {
	if h == nil {
		return (*ProxyAuthenticateHeader)(nil)
	}
	return &ProxyAuthenticateHeader{Challenge: h.Challenge}
}

// AuthorizationHeader is the 'Authorization' header - RFC 3261 20.7.
type AuthorizationHeader struct {
	digest.Credentials
}

func (h *AuthorizationHeader) Name() string { return "Authorization" }

func (h *AuthorizationHeader) Value() string { return h.Credentials.String() }

func (h *AuthorizationHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *AuthorizationHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *AuthorizationHeader) headerClone() Header {
	if h == nil {
		return (*AuthorizationHeader)(nil)
	}
	return &AuthorizationHeader{Credentials: h.Credentials}
}

// ProxyAuthorizationHeader is the 'Proxy-Authorization' header - RFC 3261 20.28.
type ProxyAuthorizationHeader struct {
	digest.Credentials
}

func (h *ProxyAuthorizationHeader) Name() string { return "Proxy-Authorization" }

func (h *ProxyAuthorizationHeader) Value() string { return h.Credentials.String() }

func (h *ProxyAuthorizationHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *ProxyAuthorizationHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *ProxyAuthorizationHeader) headerClone() Header {
	if h == nil {
		return (*ProxyAuthorizationHeader)(nil)
	}
	return &ProxyAuthorizationHeader{Credentials: h.Credentials}
}

// AuthenticationInfoHeader is the 'Authentication-Info' header - RFC 3261
// 20.6. Unlike the challenge/credential headers it has no dedicated type in
// the digest library (it carries no challenge/response, just nextnonce/qop/
// rspauth/cnonce/nc), so it reuses the same comma-separated HeaderParams
// container Via/Route params use.
type AuthenticationInfoHeader struct {
	Params HeaderParams
}

func (h *AuthenticationInfoHeader) Name() string { return "Authentication-Info" }

func (h *AuthenticationInfoHeader) Value() string {
	var buffer strings.Builder
	h.Params.ToStringWrite(',', &buffer)
	return buffer.String()
}

func (h *AuthenticationInfoHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *AuthenticationInfoHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	buffer.WriteString(h.Value())
}

func (h *AuthenticationInfoHeader) headerClone() Header {
	if h == nil {
		return (*AuthenticationInfoHeader)(nil)
	}
	newH := &AuthenticationInfoHeader{}
	if h.Params != nil {
		newH.Params = h.Params.Clone()
	}
	return newH
}
