package embedding

import (
	"context"
	"fmt"

	"github.com/framecull/framecull/internal/config"
)

// Provider maps an image file to a fixed-length unit-norm vector.
//
// Implementations must be deterministic for the same image and model, and are
// explicitly constructed and closed by the caller; there is no ambient
// singleton.
type Provider interface {
	ModelID() string
	Dim() int
	Embed(ctx context.Context, imagePath string) ([]float32, error)
	Close() error
}

// Config contains the resolved embedding service configuration.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Device  string // forwarded hint, "cpu" or "cuda"
}

// LoadConfig resolves embedding config from environment variables first, then
// ~/.framecull/.env.
func LoadConfig(device string) (*Config, error) {
	model, err := config.GetConfigValue("FRAMECULL_EMBED_MODEL")
	if err != nil {
		return nil, err
	}
	apiKey, err := config.GetConfigValue("FRAMECULL_EMBED_API_KEY")
	if err != nil {
		return nil, err
	}
	baseURL, err := config.GetConfigValue("FRAMECULL_EMBED_BASE_URL")
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8091/v1"
	}
	if model == "" {
		model = "clip-vit-base-patch32"
	}
	if device == "" {
		device = "cpu"
	}

	return &Config{
		Model:   model,
		APIKey:  apiKey,
		BaseURL: baseURL,
		Device:  device,
	}, nil
}

// NewFromConfig returns an embedding provider for cfg.
func NewFromConfig(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embedding config is nil")
	}
	return NewCLIPService(cfg), nil
}
