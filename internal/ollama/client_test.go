package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChatSendsModelAndMessages(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: Message{Role: "assistant", Content: "Traffic is up this week."},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Model: "gemma3:4b"}, 5*time.Second)
	reply, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "You are a marketing analyst."},
		{Role: "user", Content: "How is traffic?"},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if reply != "Traffic is up this week." {
		t.Errorf("unexpected reply %q", reply)
	}
	if got.Model != "gemma3:4b" {
		t.Errorf("expected model gemma3:4b, got %q", got.Model)
	}
	if got.Stream {
		t.Error("expected stream to be disabled")
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Model: "missing"}, 5*time.Second)
	if _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
