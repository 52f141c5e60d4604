package httpx

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/valyala/fasthttp"
)

const (
	fetchTimeout    = 15 * time.Second
	maxFetchedBytes = 25 * 1024 * 1024

	// Breaker tuning: five consecutive upstream failures open the
	// circuit, a handful of probe requests test recovery after the
	// cooldown.
	breakerMaxFailures   = 5
	breakerProbeRequests = 5
	breakerCooldown      = 30 * time.Second
)

// Response is the subset of an upstream reply the proxy endpoints forward.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher performs outbound requests on behalf of proxy endpoints, behind
// a circuit breaker so a dead upstream fails fast instead of queueing.
//
//go:generate mockery --name=Fetcher --dir=. --output=./mocks --filename=fetcher_mock.go --case=underscore --with-expecter
type Fetcher interface {
	Get(url string) (*Response, error)
}

type fetcher struct {
	client  *fasthttp.Client
	breaker *gobreaker.CircuitBreaker
}

func NewFetcher(name string) Fetcher {
	client := &fasthttp.Client{
		ReadTimeout:              fetchTimeout,
		WriteTimeout:             fetchTimeout,
		MaxConnsPerHost:          512,
		MaxIdleConnDuration:      120 * time.Second,
		MaxResponseBodySize:      maxFetchedBytes,
		NoDefaultUserAgentHeader: true,
	}
	return &fetcher{
		client:  client,
		breaker: newUpstreamBreaker(name),
	}
}

// newUpstreamBreaker guards one named upstream. The proxy endpoints sit
// on the hot path of the public site, so a dead image or Drive backend
// must fail in microseconds rather than hold connections open for the
// full fetch timeout.
func newUpstreamBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerProbeRequests,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerMaxFailures
		},
	})
}

func (f *fetcher) Get(url string) (*Response, error) {
	out, err := f.breaker.Execute(func() (interface{}, error) {
		return f.fetch(url)
	})
	if err != nil {
		return nil, fmt.Errorf("upstream %s: %w", f.breaker.Name(), err)
	}
	return out.(*Response), nil
}

func (f *fetcher) fetch(url string) (*Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := f.client.DoTimeout(req, resp, fetchTimeout); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() >= fasthttp.StatusInternalServerError {
		return nil, fmt.Errorf("upstream returned %d", resp.StatusCode())
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: string(resp.Header.ContentType()),
		Body:        body,
	}, nil
}
