package oracle

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"xlate/internal/config"
	xerrors "xlate/internal/errors"
	"xlate/internal/logging"
)

// subprocessOracle shells out to a local script: prompt on stdin, completion
// on stdout. Useful for wiring in models behind bespoke gateways without
// touching this package.
type subprocessOracle struct {
	cfg config.OracleConfig
	log *logging.Logger
}

func newSubprocess(cfg config.OracleConfig, log *logging.Logger) *subprocessOracle {
	return &subprocessOracle{cfg: cfg, log: log}
}

func (s *subprocessOracle) Request(ctx context.Context, kind Kind, payload string) (string, error) {
	prompt, err := renderPrompt(kind, payload)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, s.cfg.ScriptPath, s.cfg.Model)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.log.Debug("running oracle subprocess", map[string]interface{}{
		"script": s.cfg.ScriptPath,
		"model":  s.cfg.Model,
		"kind":   string(kind),
	})
	if err := cmd.Run(); err != nil {
		return "", xerrors.Wrap(xerrors.OracleUnavailable,
			"oracle subprocess failed: "+strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}
