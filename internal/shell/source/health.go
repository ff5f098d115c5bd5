package source

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/artpar/smoothstack/internal/core/domain"
)

// Prober probes a dependency source's well-known endpoint and returns its
// observed status and response latency.
type Prober interface {
	Probe(ctx context.Context, src domain.DependencySource) (domain.SourceStatus, time.Duration, error)
}

// HTTPProber probes over plain net/http: a one-shot GET against the
// source's URL, timed, classified per spec.md §4.7's status mapping.
// No ecosystem-aware HTTP client in the retrieved pack improves on the
// standard library for a single timed GET, so this stays stdlib.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber builds a prober; timeout is overridden per-call by the
// source's own configured Timeout when non-zero.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{client: &http.Client{}}
}

// Probe issues a GET against src.URL and classifies the result.
func (p *HTTPProber) Probe(ctx context.Context, src domain.DependencySource) (domain.SourceStatus, time.Duration, error) {
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultSourceTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return domain.SourceError, 0, err
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SourceSlow, elapsed, nil
		}
		return domain.SourceOffline, elapsed, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SourceError, elapsed, nil
	}
	if elapsed >= domain.OnlineThreshold {
		return domain.SourceSlow, elapsed, nil
	}
	return domain.SourceOnline, elapsed, nil
}

// HealthCheck probes name's source, records the result on its registry
// entry (status, last check time, response time, success/error counters),
// and returns the updated record.
func (r *Registry) HealthCheck(ctx context.Context, prober Prober, name string) (domain.DependencySource, error) {
	src, err := r.Get(name)
	if err != nil {
		return src, err
	}

	status, elapsed, probeErr := prober.Probe(ctx, src)
	src.Status = status
	src.LastCheck = time.Now()
	src.LastResponse = elapsed
	if probeErr != nil || status == domain.SourceOffline || status == domain.SourceError {
		src.ErrorCount++
	} else {
		src.SuccessCount++
	}

	if err := r.Update(src); err != nil {
		return src, err
	}
	return src, nil
}

// HealthCheckAll probes every registered source concurrently and returns
// the updated records.
func (r *Registry) HealthCheckAll(ctx context.Context, prober Prober) ([]domain.DependencySource, error) {
	sources, err := r.List()
	if err != nil {
		return nil, err
	}

	results := make([]domain.DependencySource, len(sources))
	var wg sync.WaitGroup
	wg.Add(len(sources))
	for i, src := range sources {
		go func(i int, name string) {
			defer wg.Done()
			updated, err := r.HealthCheck(ctx, prober, name)
			if err == nil {
				results[i] = updated
			} else {
				results[i] = src
			}
		}(i, src.Name)
	}
	wg.Wait()
	return results, nil
}
