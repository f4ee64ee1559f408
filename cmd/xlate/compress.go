package main

import (
	"context"
	"fmt"
	"os"

	"xlate/internal/compress"
	"xlate/internal/export"
	"xlate/internal/parser"
	"xlate/internal/resolver"
	"xlate/internal/storage"
	"xlate/internal/uniast"

	"github.com/spf13/cobra"
)

var (
	compressForceUpdate bool
	compressExport      bool
	compressPublicOnly  bool
	compressOutput      string
	compressNoExternal  bool
	compressNoComment   bool
)

var compressCmd = &cobra.Command{
	Use:   "compress <repo>",
	Short: "Summarize a repository bottom-up",
	Long: `Parse a repository (a git URL or a checkout under the work dir) into the
unified symbol graph, then walk it leaves-first and ask the oracle for a
summary of every function, type, variable, package and module. Summaries are
checkpointed after every symbol, so an interrupted run resumes without
re-asking.`,
	Args: cobra.ExactArgs(1),
	Run:  runCompress,
}

func init() {
	compressCmd.Flags().BoolVar(&compressForceUpdate, "force-update", false,
		"Re-parse the repository and merge cached summaries into the fresh graph")
	compressCmd.Flags().BoolVar(&compressExport, "export", false,
		"Export CSV artifacts after compression")
	compressCmd.Flags().BoolVar(&compressPublicOnly, "public-only", false,
		"Restrict exports to exported symbols")
	compressCmd.Flags().StringVar(&compressOutput, "output", "",
		"Export directory (default: the repo dir under the work dir)")
	compressCmd.Flags().BoolVar(&compressNoExternal, "not-load-external-symbol", false,
		"Do not ask the parser to load external symbols")
	compressCmd.Flags().BoolVar(&compressNoComment, "no-need-comment", false,
		"Ask the parser to strip comments from symbol content")
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg)

	cache, o, err := openStack(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening stack: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	p := parser.New(cfg, cache, log)
	opts := parser.Options{
		NotLoadExternalSymbol: compressNoExternal,
		NoNeedComment:         compressNoComment,
	}

	repo, err := loadRepo(ctx, p, cache, args[0], opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing repository: %v\n", err)
		os.Exit(1)
	}

	engine := compress.New(o, cache, log, cfg.ExcludeDirs).
		WithResolver(resolver.New(cache, log))
	err = runSupervised(ctx, cfg, log, "compress "+repo.ID, func(ctx context.Context) error {
		return engine.CompressAll(ctx, repo)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compressing repository: %v\n", err)
		os.Exit(1)
	}

	if compressExport {
		eopts := export.Options{CSV: true, PublicOnly: compressPublicOnly, Output: compressOutput}
		if err := export.WriteAll(repo, eopts, cfg.RepoDir()); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting repository: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadRepo prepares the repository graph. With --force-update the repository
// is re-parsed and the cached summaries are merged into the fresh graph, so a
// changed checkout only re-summarizes what actually changed.
func loadRepo(ctx context.Context, p *parser.Parser, cache storage.Engine, repoPath string, opts parser.Options) (*uniast.Repository, error) {
	if !compressForceUpdate {
		return p.LoadOrParse(ctx, repoPath, opts)
	}

	old, err := p.LoadOrParse(ctx, repoPath, opts)
	if err != nil {
		return nil, err
	}
	fresh, err := p.ForceParse(ctx, repoPath, opts)
	if err != nil {
		return nil, err
	}
	old.MergeWith(fresh)
	if old.Graph == nil {
		old.BuildGraph()
	}
	if err := storage.SaveRepo(cache, old); err != nil {
		return nil, err
	}
	return old, nil
}
