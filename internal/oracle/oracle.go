// Package oracle is the single boundary to the language model. Every request
// is a (kind, payload) pair rendered through a per-kind prompt template and
// sent over one of three transports: a streaming chat endpoint, a single-shot
// HTTP endpoint, or a local subprocess.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"xlate/internal/config"
	xerrors "xlate/internal/errors"
	"xlate/internal/logging"
)

// Kind names the request template to use.
type Kind string

const (
	CompressFunction Kind = "compress-function"
	CompressType     Kind = "compress-type"
	CompressVariable Kind = "compress-variable"
	CompressPackage  Kind = "compress-package"
	CompressModule   Kind = "compress-module"
	ConvertCode      Kind = "convert-code"
	MergeCode        Kind = "merge-code"
	ValidateCode     Kind = "validate-code"
)

// Oracle answers prompts. Implementations are synchronous; the context bounds
// the round trip.
type Oracle interface {
	Request(ctx context.Context, kind Kind, payload string) (string, error)
}

// New builds the transport named by cfg.Oracle.Type, wrapped so that an empty
// completion for a non-empty payload always surfaces as a typed error.
func New(cfg *config.Config, log *logging.Logger) (Oracle, error) {
	var transport Oracle
	switch cfg.Oracle.Type {
	case "chat":
		transport = newChat(cfg.Oracle, log)
	case "http":
		transport = newHTTP(cfg.Oracle, log)
	case "subprocess":
		transport = newSubprocess(cfg.Oracle, log)
	default:
		return nil, xerrors.Newf(xerrors.OracleUnavailable, "unknown oracle type %q", cfg.Oracle.Type)
	}
	return &guarded{inner: transport}, nil
}

// guarded enforces the empty-response contract on any transport.
type guarded struct {
	inner Oracle
}

func (g *guarded) Request(ctx context.Context, kind Kind, payload string) (string, error) {
	out, err := g.inner.Request(ctx, kind, payload)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" && strings.TrimSpace(payload) != "" {
		return "", xerrors.Newf(xerrors.EmptyOracleResponse, "oracle returned nothing for %s request", kind)
	}
	return out, nil
}

// renderPrompt substitutes the payload into the template for kind.
func renderPrompt(kind Kind, payload string) (string, error) {
	tmpl, ok := promptTemplates[kind]
	if !ok {
		return "", fmt.Errorf("no prompt template for kind %q", kind)
	}
	return strings.ReplaceAll(tmpl, "{{DATA}}", payload), nil
}
