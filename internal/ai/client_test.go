package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stratushr/stratus-backend/internal/config"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.Config{
		AIBaseURL: baseURL,
		AIAPIKey:  "test-key",
		AIModel:   "stratus-assist-1",
		AITimeout: 5 * time.Second,
	})
}

func TestAnalyzeFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/frames/analyze" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}

		var req struct {
			Model string `json:"model"`
			Frame string `json:"frame"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "stratus-assist-1" || req.Frame != "ZnJhbWU=" {
			t.Errorf("request = %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"is_violation": true,
			"reason":       "phone detected",
		})
	}))
	defer srv.Close()

	flagged, reason, err := testClient(srv.URL).AnalyzeFrame(context.Background(), "ZnJhbWU=")
	if err != nil {
		t.Fatalf("AnalyzeFrame: %v", err)
	}
	if !flagged || reason != "phone detected" {
		t.Fatalf("flagged=%v reason=%q", flagged, reason)
	}
}

func TestAnalyzeFrameServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).AnalyzeFrame(context.Background(), "ZnJhbWU=")
	if err == nil {
		t.Fatal("expected error on 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("error does not surface the status: %v", err)
	}
}

func sseChunk(content string) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"delta": map[string]string{"content": content}},
		},
	})
	return "data: " + string(payload) + "\n\n"
}

func TestChatSessionStreams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}

		var req struct {
			Stream   bool `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !req.Stream {
			t.Error("stream flag not set")
		}
		if len(req.Messages) == 0 || req.Messages[0].Role != "system" {
			t.Errorf("system prompt missing: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("You have "))
		fmt.Fprint(w, sseChunk("12 days left."))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	session := testClient(srv.URL).NewChatSession("You are an HR assistant.")

	var deltas []string
	reply, err := session.Send(context.Background(), "How much annual leave do I have?", func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != "You have 12 days left." {
		t.Fatalf("reply = %q", reply)
	}
	if len(deltas) != 2 {
		t.Fatalf("got %d deltas, want 2", len(deltas))
	}

	// History now carries system, user, and assistant turns.
	history := session.History()
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[2].Role != "assistant" || history[2].Content != reply {
		t.Fatalf("assistant turn = %+v", history[2])
	}
}

func TestChatSessionDeltaErrorAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("partial"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	session := testClient(srv.URL).NewChatSession("system")

	_, err := session.Send(context.Background(), "question", func(string) error {
		return fmt.Errorf("client went away")
	})
	if err == nil {
		t.Fatal("expected delta error to abort the stream")
	}

	// A failed send must not pollute the history; a retry replays cleanly.
	if got := len(session.History()); got != 1 {
		t.Fatalf("history length after failure = %d, want 1", got)
	}
}
