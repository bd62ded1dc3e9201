// Package eastmoney provides a client for Eastmoney's public quote APIs,
// the data source behind the instrument catalog, daily OHLCV history and
// concept boards.
package eastmoney

import (
	"os"
	"time"
)

// Config holds configuration for the Eastmoney API client.
type Config struct {
	ListBaseURL    string        // Base URL for the instrument list API (push2)
	HistBaseURL    string        // Base URL for the kline history API (push2his)
	ConceptBaseURL string        // Base URL for the per-stock board list API (push2)
	Timeout        time.Duration // HTTP request timeout
}

// LoadConfig loads Eastmoney configuration from environment variables,
// falling back to the public endpoints.
func LoadConfig() Config {
	cfg := Config{
		ListBaseURL:    "https://82.push2.eastmoney.com",
		HistBaseURL:    "https://push2his.eastmoney.com",
		ConceptBaseURL: "https://push2.eastmoney.com",
		Timeout:        15 * time.Second,
	}
	if v := os.Getenv("EASTMONEY_LIST_URL"); v != "" {
		cfg.ListBaseURL = v
	}
	if v := os.Getenv("EASTMONEY_HIST_URL"); v != "" {
		cfg.HistBaseURL = v
	}
	if v := os.Getenv("EASTMONEY_CONCEPT_URL"); v != "" {
		cfg.ConceptBaseURL = v
	}
	return cfg
}
