package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type clipService struct {
	model   string
	apiKey  string
	baseURL string
	device  string
	client  *http.Client
	dim     int
}

// NewCLIPService constructs a provider backed by a CLIP sidecar service.
//
// It uses the REST endpoint:
//
//	POST {baseURL}/embeddings
//
// with JSON body:
//
//	{"model": "...", "input": "<base64 image bytes>", "device": "cpu"}
func NewCLIPService(cfg *Config) Provider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	return &clipService{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		device:  cfg.Device,
		client:  &http.Client{Timeout: 30 * time.Second},
		dim:     0,
	}
}

func (p *clipService) ModelID() string {
	return "clip:" + p.model
}

func (p *clipService) Dim() int {
	return p.dim
}

func (p *clipService) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *clipService) Embed(ctx context.Context, imagePath string) ([]float32, error) {
	if p.model == "" {
		return nil, fmt.Errorf("embedding model is not configured (set FRAMECULL_EMBED_MODEL)")
	}

	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read image %s: %w", imagePath, err)
	}

	reqBody := map[string]any{
		"model":  p.model,
		"input":  base64.StdEncoding.EncodeToString(raw),
		"format": strings.TrimPrefix(filepath.Ext(imagePath), "."),
		"device": p.device,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding request failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("cannot parse embedding response: %w", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding response missing embedding")
	}

	emb64 := parsed.Data[0].Embedding
	out := make([]float32, len(emb64))
	for i, v := range emb64 {
		out[i] = float32(v)
	}
	if p.dim == 0 {
		p.dim = len(out)
	} else if p.dim != len(out) {
		return nil, fmt.Errorf("%w: got %d want %d", ErrDimMismatch, len(out), p.dim)
	}
	return NormalizeL2(out), nil
}
