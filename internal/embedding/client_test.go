package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %q, want /v1/embeddings", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", got)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Input) != 2 {
			t.Errorf("input count = %d, want 2", len(req.Input))
		}

		resp := Response{
			Data: []Data{
				{Embedding: []float64{0.1, 0.2, 0.3}},
				{Embedding: []float64{0.4, 0.5, 0.6}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", 3)
	vectors, err := client.EmbedTexts(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if len(vectors[0]) != 3 {
		t.Errorf("vector 0 has size %d, want 3", len(vectors[0]))
	}
	if vectors[1][0] != float32(0.4) {
		t.Errorf("vectors[1][0] = %v, want 0.4", vectors[1][0])
	}
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	client := NewClient("http://localhost:8081", "key", "model", 3)
	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Fatal("EmbedTexts(nil) expected error")
	}
}

func TestEmbedTexts_SizeMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := Response{
			Data: []Data{{Embedding: []float64{0.1, 0.2}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", 3)
	if _, err := client.EmbedTexts(context.Background(), []string{"text"}); err == nil {
		t.Fatal("EmbedTexts() expected error for vector size mismatch")
	}
}

func TestEmbedTexts_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := Response{
			Data: []Data{{Embedding: []float64{0.1, 0.2, 0.3}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", 3)
	if _, err := client.EmbedTexts(context.Background(), []string{"one", "two"}); err == nil {
		t.Fatal("EmbedTexts() expected error when response count does not match input count")
	}
}

func TestEmbedTexts_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", 3)
	if _, err := client.EmbedTexts(context.Background(), []string{"text"}); err == nil {
		t.Fatal("EmbedTexts() expected error for non-200 status")
	}
}
