package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESOptions configures the search client. Zero Timeout and MaxRetries fall
// back to 5s and 3.
type ESOptions struct {
	Addrs      []string
	Username   string
	Password   string
	Timeout    time.Duration
	MaxRetries int
}

// NewESClient creates an Elasticsearch client that retries on 502/503/504
// with a linear backoff.
func NewESClient(opts ESOptions) (*elasticsearch.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	retries := opts.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     opts.Addrs,
		Username:      opts.Username,
		Password:      opts.Password,
		MaxRetries:    retries,
		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		RetryBackoff:  func(attempt int) time.Duration { return time.Duration(attempt) * 100 * time.Millisecond },
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: timeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		},
	})
}
