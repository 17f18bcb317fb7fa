package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "http://127.0.0.1:0",
			HTTPTimeout:  5 * time.Second,
			UserAgent:    "uriel-test/1.0",
			AllowPrivate: true,
		},
		Catalog: CatalogConfig{
			DownloadFailurePolicy: "keep",
			RefreshOrdering:       "last_response",
		},
		Seed: SeedConfig{
			Concurrency: 1,
		},
		Log: LogConfig{
			Level: "off",
		},
		UI:    defaultConfig().UI,
		Media: defaultConfig().Media,
		Keys:  defaultConfig().Keys,
	}
}
