package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akepally/ScholarRAG/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// Pooled is the shared HTTP client for the provider SDKs, so embedding
// and generation calls reuse connections instead of re-dialing TLS for
// every batch. Per-call deadlines come from the request contexts, not
// a client-wide timeout.
func Pooled() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return client
}
