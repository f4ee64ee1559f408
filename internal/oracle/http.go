package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"xlate/internal/config"
	xerrors "xlate/internal/errors"
	"xlate/internal/logging"
)

// httpOracle sends one JSON POST per request: {"model", "prompt"} in,
// {"ans"} out.
type httpOracle struct {
	cfg    config.OracleConfig
	log    *logging.Logger
	client *http.Client
}

func newHTTP(cfg config.OracleConfig, log *logging.Logger) *httpOracle {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	return &httpOracle{cfg: cfg, log: log, client: &http.Client{Timeout: timeout}}
}

type httpRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type httpResponse struct {
	Ans string `json:"ans"`
}

func (h *httpOracle) Request(ctx context.Context, kind Kind, payload string) (string, error) {
	prompt, err := renderPrompt(kind, payload)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(httpRequest{Model: h.cfg.Model, Prompt: prompt})
	if err != nil {
		return "", err
	}

	url := h.cfg.URL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.Token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", xerrors.Wrap(xerrors.OracleUnavailable, "http request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", xerrors.Newf(xerrors.OracleUnavailable, "oracle returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", xerrors.Wrap(xerrors.OracleUnavailable, "read response body", err)
	}
	var out httpResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", xerrors.Wrap(xerrors.OracleUnavailable, "decode response body", err)
	}

	h.log.Debug("http completion received", map[string]interface{}{
		"kind":  string(kind),
		"bytes": len(out.Ans),
	})
	return out.Ans, nil
}
