package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xlate/internal/config"
	xerrors "xlate/internal/errors"
	"xlate/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func TestRenderPrompt(t *testing.T) {
	for _, kind := range []Kind{
		CompressFunction, CompressType, CompressVariable, CompressPackage,
		CompressModule, ConvertCode, MergeCode, ValidateCode,
	} {
		t.Run(string(kind), func(t *testing.T) {
			out, err := renderPrompt(kind, `{"Content":"func f() {}"}`)
			if err != nil {
				t.Fatalf("renderPrompt: %v", err)
			}
			if !strings.Contains(out, `{"Content":"func f() {}"}`) {
				t.Error("payload not substituted into template")
			}
			if strings.Contains(out, "{{DATA}}") {
				t.Error("placeholder left in rendered prompt")
			}
		})
	}
}

func TestRetryPrefix(t *testing.T) {
	got := RetryPrefix("session_ctx", "Type")
	if !strings.Contains(got, "'session_ctx'") || !strings.Contains(got, "should be Type") {
		t.Errorf("retry prefix not filled in: %q", got)
	}
}

func TestHTTPOracle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{"ans": "the summary"}`))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Oracle.Type = "http"
	cfg.Oracle.URL = srv.URL

	o, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := o.Request(context.Background(), CompressFunction, `{"Content":"func f() {}"}`)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if out != "the summary" {
		t.Errorf("Request = %q, want the summary", out)
	}
}

func TestHTTPOracleEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ans": "  "}`))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Oracle.URL = srv.URL
	o, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = o.Request(context.Background(), CompressFunction, `{"Content":"func f() {}"}`)
	if !xerrors.Is(err, xerrors.EmptyOracleResponse) {
		t.Errorf("error = %v, want EMPTY_ORACLE_RESPONSE", err)
	}
}

func TestChatOracleStreams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(
			"data: {\"event\":\"message\",\"message\":{\"type\":\"answer\",\"content\":\"hello \"},\"is_finish\":false}\n" +
				"data: {\"event\":\"message\",\"message\":{\"type\":\"verbose\",\"content\":\"ignored\"},\"is_finish\":false}\n" +
				"data: {\"event\":\"message\",\"message\":{\"type\":\"answer\",\"content\":\"world\"},\"is_finish\":false}\n" +
				"data: {\"event\":\"done\",\"message\":{},\"is_finish\":true}\n"))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Oracle.Type = "chat"
	cfg.Oracle.URL = srv.URL
	cfg.Oracle.Token = "tok"
	cfg.Oracle.BotID = "bot"

	o, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := o.Request(context.Background(), CompressType, `{"Content":"type T struct{}"}`)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if out != "hello world" {
		t.Errorf("Request = %q, want concatenated answer chunks", out)
	}
}

func TestNewUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Oracle.Type = "telepathy"
	if _, err := New(cfg, testLogger()); err == nil {
		t.Error("expected error for unknown oracle type")
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		biggest  bool
		wantCode string
		wantDeps string
		wantErr  bool
	}{
		{
			name:     "single rust block",
			data:     "Here you go:\n```rust\npub fn f() {}\n```\n",
			wantCode: "\npub fn f() {}\n",
		},
		{
			name:     "rust plus toml deps",
			data:     "```rust\npub fn f() {}\n```\nand deps:\n```toml\n[dependencies]\nserde = \"1\"\n```\n",
			wantCode: "\npub fn f() {}\n",
			wantDeps: "[dependencies]\nserde = \"1\"\n",
		},
		{
			name:     "merge mode concatenates",
			data:     "```rust\nfn a() {}\n```\ntext\n```rust\nfn b() {}\n```\n",
			wantCode: "\nfn a() {}\n\nfn b() {}\n",
		},
		{
			name:     "biggest mode keeps largest",
			data:     "```rust\nfn a() {}\n```\ntext\n```rust\nfn bigger_one() { let x = 1; }\n```\n",
			biggest:  true,
			wantCode: "\nfn bigger_one() { let x = 1; }\n",
		},
		{
			name:    "no fenced block",
			data:    "sorry, cannot help",
			wantErr: true,
		},
		{
			name:    "only non-rust block",
			data:    "```python\nprint('no')\n```",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, deps, err := ExtractCode(tt.data, tt.biggest)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
			if deps != tt.wantDeps {
				t.Errorf("deps = %q, want %q", deps, tt.wantDeps)
			}
		})
	}
}
