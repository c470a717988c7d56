package healthprobe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kodflow/daemon/internal/domain/health"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// defaultHTTPMethod is used when HealthCheckSpec.HTTP.Method is empty.
const defaultHTTPMethod = http.MethodGet

// HTTPProber issues an HTTP request against the service's local port and
// checks the response status against an expected set.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates an HTTP prober.
//
// Returns:
//   - *HTTPProber: a ready-to-use prober.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{client: &http.Client{}}
}

// Kind returns localport.ProbeKindHTTP.
//
// Returns:
//   - localport.ProbeKind: the kind this prober serves.
func (p *HTTPProber) Kind() localport.ProbeKind {
	return localport.ProbeKindHTTP
}

// Probe issues spec.HTTP.Method (default GET) against spec.HTTP.URL, falling
// back to http://localhost:<local_port>/ when URL is empty, and compares the
// response status against spec.HTTP.ExpectedStatus (default {200}).
//
// Params:
//   - ctx: deadline-bearing context for the request.
//   - target: carries the local port used when spec.HTTP.URL is empty.
//   - spec: must carry HTTP config.
//
// Returns:
//   - health.CheckResult: success if the status matched within timeout.
func (p *HTTPProber) Probe(ctx context.Context, target localport.Target, spec localport.HealthCheckSpec) health.CheckResult {
	start := time.Now()
	cfg := spec.HTTP
	if cfg == nil {
		cfg = &localport.HTTPProbeConfig{}
	}
	method := cfg.Method
	if method == "" {
		method = defaultHTTPMethod
	}
	expected := cfg.ExpectedStatus
	if len(expected) == 0 {
		expected = []int{http.StatusOK}
	}
	reqURL := cfg.URL
	if reqURL == "" {
		reqURL = fmt.Sprintf("http://%s/", net.JoinHostPort("localhost", strconv.Itoa(target.LocalPort)))
	}

	status, err := p.doRequest(ctx, method, reqURL, cfg.Headers)
	latency := time.Since(start)
	if err != nil {
		return health.NewFailureCheckResult(latency, "", err)
	}
	for _, want := range expected {
		if status == want {
			return health.NewSuccessCheckResult(latency, fmt.Sprintf("status %d", status))
		}
	}
	return health.NewFailureCheckResult(latency, "", fmt.Errorf("unexpected status %d, want one of %v", status, expected))
}

// doRequest performs the HTTP call and returns the response status code.
//
// Params:
//   - ctx: deadline-bearing context for the request.
//   - method: the HTTP method to use.
//   - rawURL: the target URL.
//   - headers: optional request headers.
//
// Returns:
//   - int: the response status code.
//   - error: any error building or performing the request.
func (p *HTTPProber) doRequest(ctx context.Context, method, rawURL string, headers map[string]string) (int, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return 0, fmt.Errorf("parsing probe url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("building probe request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http probe request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode, nil
}

var _ localport.Prober = (*HTTPProber)(nil)
