package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/jonboulle/clockwork"
)

// HTTPAdapter fetches one URL with a per-adapter timeout. It serves all
// three payload kinds; the kind only tags the result for normalization.
type HTTPAdapter struct {
	name      string
	url       string
	kind      PayloadKind
	client    *http.Client
	timeout   time.Duration
	userAgent string
	clock     clockwork.Clock
}

func NewHTTPAdapter(name, url string, kind PayloadKind, client *http.Client, timeout time.Duration, userAgent string, clock clockwork.Clock) *HTTPAdapter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HTTPAdapter{
		name:      name,
		url:       url,
		kind:      kind,
		client:    client,
		timeout:   timeout,
		userAgent: userAgent,
		clock:     clock,
	}
}

func (a *HTTPAdapter) Name() string {
	return a.name
}

func (a *HTTPAdapter) Fetch(ctx context.Context) (*RawResult, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", a.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &RawResult{
		SourceID:  a.name,
		Kind:      a.kind,
		Payload:   data,
		FetchedAt: a.clock.Now(),
	}, nil
}

// JSONPostAdapter sends a fixed JSON body with a POST request. Used for
// upstreams whose query interface is a JSON document rather than URL params.
type JSONPostAdapter struct {
	name    string
	url     string
	body    []byte
	client  *http.Client
	timeout time.Duration
	clock   clockwork.Clock
}

func NewJSONPostAdapter(name, url string, body []byte, client *http.Client, timeout time.Duration, clock clockwork.Clock) *JSONPostAdapter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &JSONPostAdapter{
		name:    name,
		url:     url,
		body:    body,
		client:  client,
		timeout: timeout,
		clock:   clock,
	}
}

func (a *JSONPostAdapter) Name() string {
	return a.name
}

func (a *JSONPostAdapter) Fetch(ctx context.Context) (*RawResult, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "POST", a.url, strings.NewReader(string(a.body)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post to %s: %w", a.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &RawResult{
		SourceID:  a.name,
		Kind:      KindJSON,
		Payload:   data,
		FetchedAt: a.clock.Now(),
	}, nil
}

// ProxyFeedURL builds the text-proxy URL for a social handle. A {handle}
// placeholder in the base is substituted, otherwise the handle is appended.
func ProxyFeedURL(base, handle string) string {
	base = strings.TrimSuffix(base, "/")
	if strings.Contains(base, "{handle}") {
		return strings.ReplaceAll(base, "{handle}", handle)
	}
	return base + "/" + handle
}

// ReadabilityAdapter decorates an HTML adapter: the fetched document is
// reduced to its readable text so the line classifier can run on pages
// when the text proxy is down.
type ReadabilityAdapter struct {
	inner Adapter
}

func NewReadabilityAdapter(inner Adapter) *ReadabilityAdapter {
	return &ReadabilityAdapter{inner: inner}
}

func (a *ReadabilityAdapter) Name() string {
	return a.inner.Name() + "+readability"
}

func (a *ReadabilityAdapter) Fetch(ctx context.Context) (*RawResult, error) {
	result, err := a.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(strings.NewReader(string(result.Payload)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	return &RawResult{
		SourceID:  result.SourceID,
		Kind:      KindText,
		Payload:   []byte(article.TextContent),
		FetchedAt: result.FetchedAt,
	}, nil
}
