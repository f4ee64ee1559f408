// Package parser is the boundary to the external language parser: it
// resolves a repo argument to a local checkout (cloning if needed), runs
// `<parser> collect <lang> <path>` and decodes the JSON output into a
// uniast.Repository, caching both raw output and the derived repository.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"xlate/internal/config"
	xerrors "xlate/internal/errors"
	"xlate/internal/logging"
	"xlate/internal/storage"
	"xlate/internal/uniast"
)

// Options tune one parser invocation.
type Options struct {
	NotLoadExternalSymbol bool
	NoNeedComment         bool
}

// Parser runs the external parser binary and manages the parse cache.
type Parser struct {
	cfg   *config.Config
	cache storage.Engine
	log   *logging.Logger
}

// New creates a parser boundary.
func New(cfg *config.Config, cache storage.Engine, log *logging.Logger) *Parser {
	return &Parser{cfg: cfg, cache: cache, log: log}
}

// RepoPath resolves a repo argument to (local path, repo name). Git URLs are
// cloned under the repo dir on first use; anything else must already exist
// there.
func (p *Parser) RepoPath(ctx context.Context, repoPath string) (string, string, error) {
	repoDir := p.cfg.RepoDir()
	parts := strings.Split(repoPath, "/")

	if strings.HasSuffix(repoPath, ".git") || strings.HasPrefix(repoPath, "https://") {
		name := strings.TrimSuffix(parts[len(parts)-1], ".git")
		path := filepath.Join(repoDir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			p.log.Info("cloning repository", map[string]interface{}{"url": repoPath, "path": path})
			if err := gitClone(ctx, repoPath, path); err != nil {
				return "", "", xerrors.Wrap(xerrors.RepoNotFound, "git clone failed", err)
			}
		}
		return path, name, nil
	}

	path := filepath.Join(repoDir, repoPath)
	if _, err := os.Stat(path); err != nil {
		return "", "", xerrors.Newf(xerrors.RepoNotFound, "repo path does not exist: %s", path)
	}
	return path, parts[0], nil
}

func gitClone(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, "git", "clone", url, path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return xerrors.Newf(xerrors.RepoNotFound, "git clone: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

// DetectLanguage scans the top two directory levels for a build manifest.
// An empty result means no supported manifest was found.
func DetectLanguage(path string) string {
	lang := ""
	root := filepath.Clean(path)
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || lang != "" {
			return filepath.SkipAll
		}
		rel, _ := filepath.Rel(root, p)
		if strings.Count(rel, string(filepath.Separator)) >= 2 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch d.Name() {
		case "Cargo.toml":
			lang = "rust"
		case "go.mod":
			lang = "go"
		}
		return nil
	})
	return lang
}

// binary is the parser executable, laid out as <parserDir>/lang.
func (p *Parser) binary() string {
	return filepath.Join(p.cfg.ParserDir, "lang")
}

// Args assembles the collect invocation for a checkout.
func (p *Parser) Args(path string, opts Options) []string {
	lang := DetectLanguage(path)
	if lang == "" {
		lang = p.cfg.Language
	}
	args := []string{"collect", lang, path}
	for _, exclude := range p.cfg.ExcludeDirs {
		if exclude != "" {
			args = append(args, "--exclude="+exclude)
		}
	}
	if !opts.NotLoadExternalSymbol {
		args = append(args, "--load-external-symbol")
	}
	if opts.NoNeedComment {
		args = append(args, "--no-need-comment")
	}
	return args
}

// LoadOrParse returns the cached repository for a repo argument, running the
// parser only on a cache miss.
func (p *Parser) LoadOrParse(ctx context.Context, repoPath string, opts Options) (*uniast.Repository, error) {
	path, name, err := p.RepoPath(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	repo, err := storage.LoadRepo(p.cache, name)
	if err != nil {
		return nil, err
	}
	if repo != nil {
		if repo.Graph == nil {
			repo.BuildGraph()
		}
		return repo, nil
	}
	return p.parse(ctx, name, path, opts)
}

// ForceParse always reruns the parser, ignoring the cache. Callers merge the
// result into the previous checkpoint to keep computed summaries.
func (p *Parser) ForceParse(ctx context.Context, repoPath string, opts Options) (*uniast.Repository, error) {
	path, name, err := p.RepoPath(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	return p.parse(ctx, name, path, opts)
}

func (p *Parser) parse(ctx context.Context, name, path string, opts Options) (*uniast.Repository, error) {
	args := p.Args(path, opts)
	p.log.Info("parsing repository", map[string]interface{}{
		"repo": name, "parser": p.binary(), "args": strings.Join(args, " "),
	})

	cmd := exec.CommandContext(ctx, p.binary(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, xerrors.Wrap(xerrors.ParseFailed,
			"parser failed: "+strings.TrimSpace(stderr.String()), err)
	}
	return p.FromJSON(name, stdout.Bytes())
}

// FromJSON decodes parser output, fills in the repo id, builds the graph and
// checkpoints the result.
func (p *Parser) FromJSON(name string, data []byte) (*uniast.Repository, error) {
	var repo uniast.Repository
	if err := json.Unmarshal(data, &repo); err != nil {
		return nil, xerrors.Wrap(xerrors.ParseFailed, "cannot decode parser output", err)
	}
	if repo.ID == "" {
		repo.ID = name
	}
	if repo.Graph == nil {
		repo.BuildGraph()
	}
	if err := storage.SaveRepo(p.cache, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}
