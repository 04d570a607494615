package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message is a single chat turn in the OpenAI-compatible wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatSession holds the message history for one assistant conversation. Each
// session is an explicit object owned by its caller; the client itself keeps
// no conversational state.
type ChatSession struct {
	client   *Client
	messages []Message
}

// NewChatSession starts a conversation seeded with a system prompt.
func (c *Client) NewChatSession(systemPrompt string) *ChatSession {
	return &ChatSession{
		client:   c,
		messages: []Message{{Role: "system", Content: systemPrompt}},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Send appends the user message, streams the model reply token by token
// through onDelta, and records the full reply in the session history. If the
// stream fails partway, the partial reply is not recorded so a retry replays
// the same question.
func (s *ChatSession) Send(ctx context.Context, userMessage string, onDelta func(delta string) error) (string, error) {
	history := append(append([]Message(nil), s.messages...), Message{Role: "user", Content: userMessage})

	body, err := json.Marshal(chatRequest{Model: s.client.model, Messages: history, Stream: true})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	s.client.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat completion returned %d: %s", resp.StatusCode, payload)
	}

	var reply strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", fmt.Errorf("decode stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		reply.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return "", fmt.Errorf("deliver stream chunk: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	s.messages = append(history, Message{Role: "assistant", Content: reply.String()})
	return reply.String(), nil
}

// History returns a copy of the conversation so far.
func (s *ChatSession) History() []Message {
	return append([]Message(nil), s.messages...)
}
