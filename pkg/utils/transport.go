// pkg/utils/transport.go
package utils

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	utls "github.com/refraction-networking/utls"
	proxy "golang.org/x/net/proxy"
)

var clientHelloIDs = map[string]utls.ClientHelloID{
	"chrome":  utls.HelloChrome_Auto,
	"firefox": utls.HelloFirefox_Auto,
	"safari":  utls.HelloSafari_Auto,
	"edge":    utls.HelloEdge_Auto,
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// ProxyRotator hands out proxies round-robin. It is immutable after
// construction and safe for concurrent use.
type ProxyRotator struct {
	parsedURLs []*url.URL
	currentIdx uint32
}

func NewProxyRotator(proxyURLs []string) (*ProxyRotator, error) {
	rotator := &ProxyRotator{}

	for _, rawURL := range proxyURLs {
		parsedURL, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy URL %s: %w", MaskProxyURL(rawURL), err)
		}
		rotator.parsedURLs = append(rotator.parsedURLs, parsedURL)
	}

	return rotator, nil
}

func (r *ProxyRotator) Len() int {
	return len(r.parsedURLs)
}

// NextProxy returns the next proxy, or nil when none are configured.
func (r *ProxyRotator) NextProxy() *url.URL {
	if len(r.parsedURLs) == 0 {
		return nil
	}

	idx := (atomic.AddUint32(&r.currentIdx, 1) - 1) % uint32(len(r.parsedURLs))
	return r.parsedURLs[idx]
}

func (r *ProxyRotator) socks() (bool, error) {
	var socks, web int
	for _, u := range r.parsedURLs {
		switch u.Scheme {
		case "socks5":
			socks++
		case "http", "https":
			web++
		default:
			return false, fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
		}
	}
	if socks > 0 && web > 0 {
		return false, fmt.Errorf("mixing socks5 and http proxies is not supported")
	}
	return socks > 0, nil
}

// FingerprintingDialer completes TLS with a browser ClientHello instead of
// the Go default. ALPN is pinned to http/1.1 because the returned conn is
// handed to an HTTP/1 transport.
type FingerprintingDialer struct {
	dial          dialFunc
	clientHelloID utls.ClientHelloID
}

func NewFingerprintingDialer(dial dialFunc, clientHelloID utls.ClientHelloID) *FingerprintingDialer {
	return &FingerprintingDialer{dial: dial, clientHelloID: clientHelloID}
}

func (d *FingerprintingDialer) DialTLSContext(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := d.dial(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	spec, err := utls.UTLSIdToSpec(d.clientHelloID)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("uTLS spec: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	uconn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloCustom)
	if err := uconn.ApplyPreset(&spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("uTLS preset: %w", err)
	}
	if err := uconn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("uTLS handshake: %w", err)
	}

	return uconn, nil
}

type TransportConfig struct {
	// ProxyURLs are rotated per connection. All entries must be socks5 or all http(s).
	ProxyURLs []string
	// Fingerprint selects a browser ClientHello (chrome, firefox, safari, edge).
	// Empty keeps the standard library TLS stack.
	Fingerprint string
	Logger      *slog.Logger
}

// NewTransport builds the outbound transport for API traffic. With no
// proxies and no fingerprint it is a plain clone of the default transport
// settings.
func NewTransport(cfg TransportConfig) (http.RoundTripper, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	rotator, err := NewProxyRotator(cfg.ProxyURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy rotator: %w", err)
	}

	var dial dialFunc = dialer.DialContext
	useSocks := false
	if rotator.Len() > 0 {
		useSocks, err = rotator.socks()
		if err != nil {
			return nil, err
		}

		for i, p := range cfg.ProxyURLs {
			logger.Info("Using proxy", slog.Int("index", i+1), slog.String("proxy", MaskProxyURL(p)))
		}

		if useSocks {
			dial = socksDial(rotator, dialer)
			transport.Proxy = nil
			transport.DialContext = dial
		} else {
			transport.Proxy = func(*http.Request) (*url.URL, error) {
				return rotator.NextProxy(), nil
			}
		}
	}

	if cfg.Fingerprint != "" {
		helloID, ok := clientHelloIDs[strings.ToLower(cfg.Fingerprint)]
		if !ok {
			return nil, fmt.Errorf("unsupported TLS fingerprint: %s", cfg.Fingerprint)
		}
		if rotator.Len() > 0 && !useSocks {
			logger.Warn("TLS fingerprint is not applied to requests tunnelled through http proxies")
		}
		transport.DialTLSContext = NewFingerprintingDialer(dial, helloID).DialTLSContext
		transport.ForceAttemptHTTP2 = false
		logger.Info("Using TLS fingerprint", slog.String("fingerprint", cfg.Fingerprint))
	}

	return transport, nil
}

func socksDial(rotator *ProxyRotator, forward *net.Dialer) dialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		proxyURL := rotator.NextProxy()
		d, err := proxy.FromURL(proxyURL, forward)
		if err != nil {
			return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
		}

		if cd, ok := d.(proxy.ContextDialer); ok {
			conn, err := cd.DialContext(ctx, network, addr)
			if err != nil {
				return nil, fmt.Errorf("dial via SOCKS5 proxy: %w", err)
			}
			return conn, nil
		}

		conn, err := d.Dial(network, addr)
		if err != nil {
			return nil, fmt.Errorf("dial via SOCKS5 proxy: %w", err)
		}
		return conn, nil
	}
}

// UserAgentTransport stamps a fixed User-Agent on every request.
type UserAgentTransport struct {
	Base      http.RoundTripper
	UserAgent string
}

func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set("User-Agent", t.UserAgent)
	return base.RoundTrip(reqCopy)
}

// MaskProxyURL hides proxy credentials for logging.
func MaskProxyURL(proxyURL string) string {
	if !strings.Contains(proxyURL, "@") {
		return proxyURL
	}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return "[masked]"
	}

	if parsedURL.User != nil {
		username := parsedURL.User.Username()
		return strings.Replace(proxyURL, parsedURL.User.String(), username+":****", 1)
	}

	return proxyURL
}
