package sipkit

import (
	"crypto/tls"

	"github.com/arnesip/sipkit/sip"
	"github.com/arnesip/sipkit/transaction"
)

// Handler processes a SIP request arriving on a server transaction. It is
// the interface form of RequestHandler, useful when a caller wants to
// pass a type (with its own dependencies) instead of a bare func.
type Handler interface {
	ServeSIP(req *sip.Request, tx sip.ServerTransaction)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(req *sip.Request, tx sip.ServerTransaction)

func (f HandlerFunc) ServeSIP(req *sip.Request, tx sip.ServerTransaction) {
	f(req, tx)
}

// EndpointConfig declaratively describes a SIP endpoint: its contact
// identity, capability headers advertised in responses, transaction
// timers, and per-method request handlers. NewEndpoint turns it into a
// running UserAgent + Server pair, the way NewUA/NewServer is built up
// imperatively through options.
type EndpointConfig struct {
	// Name identifies the endpoint. A Client built on it uses Name as the
	// display name and user part of the From header it adds to requests;
	// no User-Agent header is added.
	Name string
	// IP is the ip:port the endpoint binds its contact address to. When
	// empty, NewUA resolves the host's outbound IP.
	IP string
	// TLSConfig configures outbound TLS/WSS dialing.
	TLSConfig *tls.Config
	// Resolver overrides the default net.Resolver-backed SRV lookups.
	Resolver Resolver
	// Timers overrides the RFC 3261 §17 T1/T2/T4 base values. Zero
	// fields fall back to the RFC 3261 suggested defaults.
	Timers transaction.Timers

	// Allow lists the methods advertised in an Allow header on
	// responses built by NewEndpointResponse. Typically mirrors the
	// keys of Handlers.
	Allow []sip.RequestMethod
	// Supported lists the option-tags advertised in a Supported header.
	Supported []string

	// Handlers maps a request method to the Handler invoked for it.
	// A method with no entry falls through to NoRouteHandler.
	Handlers map[sip.RequestMethod]Handler
	// NoRouteHandler handles methods absent from Handlers. Defaults to
	// responding 405 Method Not Allowed.
	NoRouteHandler Handler
}

// Endpoint bundles a UserAgent and Server constructed from an
// EndpointConfig, plus the capability headers every response should
// carry.
type Endpoint struct {
	*Server

	allow     sip.AllowHeader
	supported *sip.SupportedHeader
}

// NewEndpoint builds a UserAgent and Server from cfg and registers every
// configured method handler.
func NewEndpoint(cfg EndpointConfig) (*Endpoint, error) {
	uaOpts := []UserAgentOption{}
	if cfg.Name != "" {
		uaOpts = append(uaOpts, WithUserAgent(cfg.Name))
	}
	if cfg.IP != "" {
		uaOpts = append(uaOpts, WithIP(cfg.IP))
	}
	if cfg.TLSConfig != nil {
		uaOpts = append(uaOpts, WithUserAgenTLSConfig(cfg.TLSConfig))
	}
	if cfg.Resolver != nil {
		uaOpts = append(uaOpts, WithResolver(cfg.Resolver))
	}
	uaOpts = append(uaOpts, WithTransactionTimers(cfg.Timers))

	ua, err := NewUA(uaOpts...)
	if err != nil {
		return nil, err
	}

	srv, err := NewServer(ua)
	if err != nil {
		return nil, err
	}

	ep := &Endpoint{
		Server:    srv,
		allow:     sip.AllowHeader(cfg.Allow),
		supported: sip.NewSupportedHeader(cfg.Supported...),
	}

	for method, h := range cfg.Handlers {
		ep.onMethod(method, h)
	}

	if cfg.NoRouteHandler != nil {
		srv.noRouteHandler = func(req *sip.Request, tx sip.ServerTransaction) {
			cfg.NoRouteHandler.ServeSIP(req, tx)
		}
	}

	return ep, nil
}

func (ep *Endpoint) onMethod(method sip.RequestMethod, h Handler) {
	ep.Server.requestHandlers[method] = func(req *sip.Request, tx sip.ServerTransaction) {
		h.ServeSIP(req, tx)
	}
}

// NewEndpointResponse builds a response carrying the endpoint's
// configured Allow and Supported headers alongside the usual To/From/
// Call-ID/CSeq/Via set NewResponseFromRequest copies from req.
func (ep *Endpoint) NewEndpointResponse(req *sip.Request, statusCode sip.StatusCode, reason string) *sip.Response {
	res := sip.NewResponseFromRequest(req, statusCode, reason, nil)
	if len(ep.allow) > 0 {
		res.AppendHeader(&ep.allow)
	}
	if len(ep.supported.Tokens()) > 0 {
		res.AppendHeader(ep.supported)
	}
	return res
}
