package oracle

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"xlate/internal/config"
	xerrors "xlate/internal/errors"
	"xlate/internal/logging"
)

// chatOracle talks to a hosted bot over a streaming chat endpoint. The answer
// arrives as SSE events which are concatenated into one completion.
type chatOracle struct {
	cfg    config.OracleConfig
	log    *logging.Logger
	client *http.Client
}

func newChat(cfg config.OracleConfig, log *logging.Logger) *chatOracle {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	return &chatOracle{cfg: cfg, log: log, client: &http.Client{Timeout: timeout}}
}

type chatQuery struct {
	BotID  string `json:"bot_id"`
	User   string `json:"user"`
	Query  string `json:"query"`
	Stream bool   `json:"stream"`
}

type chatMessage struct {
	Role        string `json:"role"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

type chatStreamEvent struct {
	Event          string      `json:"event"`
	Message        chatMessage `json:"message"`
	ConversationID string      `json:"conversation_id"`
	Index          int         `json:"index"`
	IsFinish       bool        `json:"is_finish"`
}

func (c *chatOracle) Request(ctx context.Context, kind Kind, payload string) (string, error) {
	prompt, err := renderPrompt(kind, payload)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatQuery{
		BotID:  c.cfg.BotID,
		User:   "xlate",
		Query:  prompt,
		Stream: true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", xerrors.Wrap(xerrors.OracleUnavailable, "chat request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", xerrors.Newf(xerrors.OracleUnavailable, "chat request returned status %d", resp.StatusCode)
	}

	var out strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		var ev chatStreamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return "", xerrors.Wrap(xerrors.OracleUnavailable, "malformed stream event", err)
		}
		if ev.IsFinish || ev.Event != "message" {
			break
		}
		if ev.Message.Type != "answer" {
			continue
		}
		out.WriteString(ev.Message.Content)
	}
	if err := scanner.Err(); err != nil {
		return "", xerrors.Wrap(xerrors.OracleUnavailable, "read chat stream", err)
	}

	c.log.Debug("chat completion received", map[string]interface{}{
		"kind":  string(kind),
		"bytes": out.Len(),
	})
	return out.String(), nil
}
