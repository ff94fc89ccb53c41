package practicum

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultHTTPTimeout = 10 * time.Second

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func resolveHTTPClient(client *http.Client, timeout time.Duration) httpDoer {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

func normalizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultEndpoint
	}
	return raw
}

func resolveLogger(logger *logrus.Entry) *logrus.Entry {
	if logger != nil {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
