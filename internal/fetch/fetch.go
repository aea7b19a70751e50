package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxAttempts  = 3
	DefaultBaseDelay    = time.Second
	DefaultMaxJitter    = 500 * time.Millisecond
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 5 << 20
)

// Result is the outcome of a fetch. An empty Body means the page is unusable.
type Result struct {
	URL  string
	Body string
	// Attempts is the number of requests actually sent.
	Attempts int
}

// Usable reports whether the fetch produced content.
func (r Result) Usable() bool { return r.Body != "" }

// Rand is the randomness used for identity, proxy and jitter selection.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client retrieves pages with bounded retries and rotating request identities.
// Fetch never returns an error: exhausted or refused fetches yield an empty Result.
type Client struct {
	// HTTPClient is used for attempts without a proxy. Nil builds a default.
	HTTPClient *http.Client
	// Identities is the pool of header sets; one is picked per attempt.
	Identities []Identity
	// Proxy, when set, is used for every attempt. Otherwise one of Proxies is
	// picked per attempt, or none when the pool is empty.
	Proxy   string
	Proxies []string
	// RefererHosts lists hosts (and their subdomains) that expect a Referer.
	RefererHosts []string

	// MaxAttempts includes the initial attempt. Zero means DefaultMaxAttempts.
	MaxAttempts int
	// BaseDelay is multiplied by the attempt number between retries.
	BaseDelay time.Duration
	// MaxJitter bounds the random delay added to each backoff.
	MaxJitter time.Duration
	// Timeout bounds each attempt.
	Timeout time.Duration
	// MaxBodyBytes caps how much of a body is read.
	MaxBodyBytes int64
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int

	Rand  Rand
	Sleep Sleeper

	mu      sync.Mutex
	rnd     *rand.Rand
	proxied map[string]*http.Client
}

// IsDocumentURL reports whether the URL points at a PDF-like document that the
// pipeline never fetches.
func IsDocumentURL(raw string) bool {
	p := strings.ToLower(strings.TrimSpace(raw))
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	for _, ext := range []string{".pdf", ".doc", ".docx", ".ppt", ".pptx"} {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// Fetch retrieves rawURL. Forbidden, throttled, 5xx and transport failures are
// retried with linear backoff; anything else ends the attempt loop.
func (c *Client) Fetch(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}
	if IsDocumentURL(rawURL) {
		log.Debug().Str("url", rawURL).Msg("skipping document url")
		return res
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		res.Attempts = attempt
		body, status, err := c.tryOnce(ctx, rawURL)
		if err == nil {
			res.Body = body
			return res
		}
		lastErr = err
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", attempt).Int("status", status).Msg("fetch attempt failed")
		if !retryable(ctx, status, err) || attempt == attempts {
			break
		}
		if err := c.backoff(ctx, attempt); err != nil {
			lastErr = err
			break
		}
	}
	log.Warn().Err(lastErr).Str("url", rawURL).Int("attempts", res.Attempts).Msg("fetch gave up; treating as no content")
	return res
}

// errPermanent marks failures that retrying cannot fix.
var errPermanent = errors.New("permanent")

func (c *Client) tryOnce(ctx context.Context, rawURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("new request: %w: %w", errPermanent, err)
	}
	if !isHTTPScheme(req.URL) {
		return "", 0, fmt.Errorf("unsupported URL scheme %q: %w", req.URL.Scheme, errPermanent)
	}
	id := c.pickIdentity()
	id.apply(req.Header)
	if c.needsReferer(req.URL.Hostname()) {
		req.Header.Set("Referer", req.URL.Scheme+"://"+req.URL.Host+"/")
	}

	hc, err := c.clientFor(c.pickProxy())
	if err != nil {
		return "", 0, fmt.Errorf("proxy: %w: %w", errPermanent, err)
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req = req.WithContext(actx)

	resp, err := hc.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", resp.StatusCode, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !isAllowedContentType(contentType) {
		return "", resp.StatusCode, fmt.Errorf("unsupported content type %q: %w", contentType, errPermanent)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		// a body cut short is a transport failure, not a server verdict
		return "", 0, fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return "", resp.StatusCode, fmt.Errorf("empty body: %w", errPermanent)
	}
	return string(b), resp.StatusCode, nil
}

func retryable(ctx context.Context, status int, err error) bool {
	if ctx.Err() != nil || errors.Is(err, errPermanent) {
		return false
	}
	switch {
	case status == 0:
		// transport failure: timeout, reset, refused
		return true
	case status == http.StatusForbidden, status == http.StatusTooManyRequests:
		return true
	case status >= 500 && status <= 599:
		return true
	}
	return false
}

func (c *Client) backoff(ctx context.Context, attempt int) error {
	base := c.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	delay := base * time.Duration(attempt)
	if c.MaxJitter > 0 {
		ms := int(c.MaxJitter / time.Millisecond)
		if ms > 0 {
			delay += time.Duration(c.intn(ms+1)) * time.Millisecond
		}
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) intn(n int) int {
	if n <= 1 {
		return 0
	}
	if c.Rand != nil {
		return c.Rand.Intn(n)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c.rnd.Intn(n)
}

func (c *Client) pickIdentity() Identity {
	pool := c.Identities
	if len(pool) == 0 {
		pool = DefaultIdentities()
	}
	return pool[c.intn(len(pool))]
}

func (c *Client) pickProxy() string {
	if strings.TrimSpace(c.Proxy) != "" {
		return c.Proxy
	}
	if len(c.Proxies) == 0 {
		return ""
	}
	return c.Proxies[c.intn(len(c.Proxies))]
}

func (c *Client) needsReferer(host string) bool {
	host = strings.ToLower(host)
	for _, h := range c.RefererHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func (c *Client) clientFor(proxy string) (*http.Client, error) {
	if proxy == "" {
		if c.HTTPClient != nil {
			// Clone to attach our redirect policy without mutating caller's client
			base := *c.HTTPClient
			base.CheckRedirect = c.checkRedirectFunc()
			return &base, nil
		}
		return &http.Client{CheckRedirect: c.checkRedirectFunc()}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if hc, ok := c.proxied[proxy]; ok {
		return hc, nil
	}
	pu, err := url.Parse(proxy)
	if err != nil || pu.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q", proxy)
	}
	if c.proxied == nil {
		c.proxied = map[string]*http.Client{}
	}
	hc := &http.Client{
		Transport:     &http.Transport{Proxy: http.ProxyURL(pu), ForceAttemptHTTP2: true, IdleConnTimeout: 90 * time.Second},
		CheckRedirect: c.checkRedirectFunc(),
	}
	c.proxied[proxy] = hc
	return hc, nil
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return fmt.Errorf("too many redirects: %w", errPermanent)
		}
		// Only allow http/https during redirects
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return fmt.Errorf("redirect to unsupported scheme: %w", errPermanent)
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml") || strings.HasPrefix(ct, "text/plain")
}
