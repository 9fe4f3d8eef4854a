package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
	pkghttp "RWAPulse/pkg/http"
	applogger "RWAPulse/pkg/logger"
)

// HTTPSnapshotProvider GETs a snapshot document from a remote endpoint.
// Retries live in the http client; a circuit breaker stops hammering a dead endpoint.
type HTTPSnapshotProvider struct {
	client  *pkghttp.Client
	url     string
	breaker *gobreaker.CircuitBreaker
	openFor time.Duration
	sampler *sampler
	l       *applogger.Logger
	now     func() time.Time
}

type HTTPProviderOption func(*HTTPSnapshotProvider)

func WithHTTPSample(n int, seed int64) HTTPProviderOption {
	return func(p *HTTPSnapshotProvider) {
		p.sampler = newSampler(n, seed)
	}
}

func WithHTTPLogger(l *applogger.Logger) HTTPProviderOption {
	return func(p *HTTPSnapshotProvider) {
		if l != nil {
			p.l = l
		}
	}
}

// WithBreakerTimeout sets how long the breaker stays open before probing again.
func WithBreakerTimeout(d time.Duration) HTTPProviderOption {
	return func(p *HTTPSnapshotProvider) {
		p.openFor = d
	}
}

func NewHTTPSnapshotProvider(client *pkghttp.Client, url string, opts ...HTTPProviderOption) *HTTPSnapshotProvider {
	p := &HTTPSnapshotProvider{
		client:  client,
		url:     url,
		sampler: newSampler(0, 1),
		openFor: 30 * time.Second,
		l:       applogger.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "snapshot:" + url,
		Interval: 60 * time.Second,
		Timeout:  p.openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.l.Warn("snapshot breaker state change",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()),
			)
		},
	})
	return p
}

func (p *HTTPSnapshotProvider) Name() string { return "http" }

func (p *HTTPSnapshotProvider) Fetch(ctx context.Context) ([]models.SnapshotRecord, error) {
	return p.FetchSample(ctx, p.sampler.n)
}

// FetchSample forwards n as ?sample= so a capable server can sample remotely,
// and samples locally as well in case it does not.
func (p *HTTPSnapshotProvider) FetchSample(ctx context.Context, n int) ([]models.SnapshotRecord, error) {
	req := &pkghttp.RequestOptions{Method: pkghttp.MethodGet, URL: p.url}
	if n > 0 {
		req.QueryParams = map[string][]string{"sample": {strconv.Itoa(n)}}
	}

	raw, err := p.breaker.Execute(func() (interface{}, error) {
		var body []byte
		if err := p.client.SendAndParse(ctx, req, &body); err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot %s: %w", p.url, err)
	}

	recs, err := decodeSnapshot(raw.([]byte), formatJSON, p.now())
	if err != nil {
		return nil, err
	}
	return p.sampler.pick(recs, n), nil
}

var (
	_ domrepo.SnapshotProvider = (*HTTPSnapshotProvider)(nil)
	_ domrepo.SampledProvider  = (*HTTPSnapshotProvider)(nil)
)
