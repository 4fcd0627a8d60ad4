package embedding

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeImageFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func embeddingResponse(vec []float64) []byte {
	out, _ := json.Marshal(map[string]any{
		"data": []map[string]any{{"embedding": vec}},
	})
	return out
}

func TestEmbed_RequestAndNormalization(t *testing.T) {
	img := writeImageFile(t, t.TempDir(), "still.jpg", []byte("rawbytes"))

	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write(embeddingResponse([]float64{3, 4}))
	}))
	defer srv.Close()

	p := NewCLIPService(&Config{
		Model:   "clip-vit-base-patch32",
		APIKey:  "secret",
		BaseURL: srv.URL,
		Device:  "cpu",
	})
	defer p.Close()

	vec, err := p.Embed(context.Background(), img)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if gotPath != "/embeddings" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotBody["model"] != "clip-vit-base-patch32" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["format"] != "jpg" {
		t.Errorf("format = %v", gotBody["format"])
	}
	if gotBody["input"] != base64.StdEncoding.EncodeToString([]byte("rawbytes")) {
		t.Errorf("input is not base64 of image bytes")
	}

	// The service vector [3 4] comes back unit normalized.
	if math.Abs(float64(vec[0])-0.6) > 1e-6 || math.Abs(float64(vec[1])-0.8) > 1e-6 {
		t.Errorf("vec = %v, want [0.6 0.8]", vec)
	}
	if p.Dim() != 2 {
		t.Errorf("dim = %d, want 2", p.Dim())
	}
	if p.ModelID() != "clip:clip-vit-base-patch32" {
		t.Errorf("model id = %q", p.ModelID())
	}
}

func TestEmbed_DimMismatchAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	img := writeImageFile(t, dir, "a.png", []byte("x"))

	n := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		if n == 1 {
			_, _ = w.Write(embeddingResponse([]float64{1, 0}))
			return
		}
		_, _ = w.Write(embeddingResponse([]float64{1, 0, 0}))
	}))
	defer srv.Close()

	p := NewCLIPService(&Config{Model: "m", BaseURL: srv.URL})
	if _, err := p.Embed(context.Background(), img); err != nil {
		t.Fatalf("first Embed: %v", err)
	}
	_, err := p.Embed(context.Background(), img)
	if !errors.Is(err, ErrDimMismatch) {
		t.Fatalf("err = %v, want ErrDimMismatch", err)
	}
}

func TestEmbed_HTTPError(t *testing.T) {
	img := writeImageFile(t, t.TempDir(), "a.png", []byte("x"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewCLIPService(&Config{Model: "m", BaseURL: srv.URL})
	if _, err := p.Embed(context.Background(), img); err == nil {
		t.Fatal("expected error on HTTP 503")
	}
}

func TestEmbed_MissingImage(t *testing.T) {
	p := NewCLIPService(&Config{Model: "m", BaseURL: "http://127.0.0.1:1"})
	if _, err := p.Embed(context.Background(), filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEmbed_ModelNotConfigured(t *testing.T) {
	img := writeImageFile(t, t.TempDir(), "a.png", []byte("x"))
	p := NewCLIPService(&Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := p.Embed(context.Background(), img); err == nil {
		t.Fatal("expected error when model is empty")
	}
}
