package sipkit

import (
	"context"
	"crypto/tls"
	"net"
	"strings"

	"github.com/arnesip/sipkit/parser"
	"github.com/arnesip/sipkit/sip"
	"github.com/arnesip/sipkit/transaction"
	"github.com/arnesip/sipkit/transport"
)

type UserAgent struct {
	name string
	ip   net.IP
	host string
	port int

	dnsResolver Resolver
	tlsConfig   *tls.Config
	txTimers    transaction.Timers
	tp          *transport.Layer
	tx          *transaction.Layer
}

// Resolver resolves RFC 3263 SIP SRV records. The default implementation
// wraps a *net.Resolver; pass a custom Resolver to WithResolver for
// alternate DNS clients or for tests.
type Resolver = transport.Resolver

// NewResolver adapts a *net.Resolver (nil for net.DefaultResolver) into a
// Resolver.
func NewResolver(r *net.Resolver) Resolver {
	return transport.NewResolver(r)
}

type UserAgentOption func(s *UserAgent) error

func WithUserAgent(ua string) UserAgentOption {
	return func(s *UserAgent) error {
		s.name = ua
		return nil
	}
}

func WithIP(ip string) UserAgentOption {
	return func(s *UserAgent) error {
		host, _, err := net.SplitHostPort(ip)
		if err != nil {
			return err
		}
		addr, err := net.ResolveIPAddr("ip", host)
		if err != nil {
			return err
		}
		return s.setIP(addr.IP)
	}
}

func WithDNSResolver(r *net.Resolver) UserAgentOption {
	return func(s *UserAgent) error {
		s.dnsResolver = NewResolver(r)
		return nil
	}
}

// WithResolver sets a custom Resolver, bypassing the stdlib net.Resolver
// entirely. Useful for a DoH client or a resolver stubbed out in tests.
func WithResolver(r Resolver) UserAgentOption {
	return func(s *UserAgent) error {
		s.dnsResolver = r
		return nil
	}
}

// WithUserAgenTLSConfig sets the TLS config used for dialing TLS/WSS connections.
func WithUserAgenTLSConfig(conf *tls.Config) UserAgentOption {
	return func(s *UserAgent) error {
		s.tlsConfig = conf
		return nil
	}
}

// WithTransactionTimers overrides the RFC 3261 §17 T1/T2/T4 base values
// used by every transaction the agent's transaction layer creates.
func WithTransactionTimers(timers transaction.Timers) UserAgentOption {
	return func(s *UserAgent) error {
		s.txTimers = timers
		return nil
	}
}

func WithUDPDNSResolver(dns string) ServerOption {
	return func(s *Server) error {
		s.dnsResolver = NewResolver(&net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				d := net.Dialer{}
				return d.DialContext(ctx, "udp", dns)
			},
		})
		return nil
	}
}

func NewUA(options ...UserAgentOption) (*UserAgent, error) {
	s := &UserAgent{}

	for _, o := range options {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	if s.ip == nil {
		v, err := sip.ResolveSelfIP()
		if err != nil {
			return nil, err
		}
		if err := s.setIP(v); err != nil {
			return nil, err
		}
	}

	s.tp = transport.NewLayer(s.dnsResolver, parser.NewParser(), s.tlsConfig)
	s.tx = transaction.NewLayer(s.tp, transaction.WithTransactionTimers(s.txTimers))
	return s, nil
}

// setIP sets the agent's IP and the host string derived from it.
func (ua *UserAgent) setIP(ip net.IP) (err error) {
	ua.ip = ip
	ua.host = strings.Split(ip.String(), ":")[0]
	return err
}
