package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// esDialTimeout caps connection setup so a down cluster cannot stall the
// search path; the caller already degrades to Postgres on error.
const esDialTimeout = 5 * time.Second

// NewESClient builds the client for the posts search index. Basic auth is
// optional; pass empty credentials for an unsecured local cluster.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: esDialTimeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: esDialTimeout}).DialContext,
		},
	})
}
