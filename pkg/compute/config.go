package compute

import (
	"errors"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout. Steps can be
	// long-running.
	DefaultTimeout = 60 * time.Second

	// DefaultArtifactDir is where chart artifacts are written when no
	// directory is configured.
	DefaultArtifactDir = "artifacts"
)

// Config holds the settings for a compute backend client.
type Config struct {
	BaseURL     string
	ArtifactDir string
	HTTPClient  *http.Client
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("compute: base url is required")
	}
	if c.ArtifactDir == "" {
		c.ArtifactDir = DefaultArtifactDir
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	return nil
}
