package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"xlate/internal/parser"
	"xlate/internal/storage"
	"xlate/internal/translate"

	"github.com/spf13/cobra"
)

var (
	translateNoExternal bool
	translateNoComment  bool
)

var translateCmd = &cobra.Command{
	Use:   "translate <repo>",
	Short: "Translate a Go repository into a Rust crate",
	Long: `Parse a Go repository, translate every symbol into Rust in dependency
order with the oracle, assemble the results into a cargo project and run
rustfmt over the tree. Translated symbols are checkpointed per node, so an
interrupted run resumes from the last finished symbol.`,
	Args: cobra.ExactArgs(1),
	Run:  runTranslate,
}

func init() {
	translateCmd.Flags().BoolVar(&translateNoExternal, "not-load-external-symbol", false,
		"Do not ask the parser to load external symbols")
	translateCmd.Flags().BoolVar(&translateNoComment, "no-need-comment", false,
		"Ask the parser to strip comments from symbol content")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) {
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
		NotLoadExternalSymbol: translateNoExternal,
		NoNeedComment:         translateNoComment,
	}

	repo, err := p.LoadOrParse(ctx, args[0], opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing repository: %v\n", err)
		os.Exit(1)
	}

	cc, err := storage.LoadCodeCache(cache, "go2rust_"+repo.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading translation checkpoint: %v\n", err)
		os.Exit(1)
	}

	outDir := filepath.Join(cfg.OutDir(), repo.ID)
	engine := translate.New(o, cache, log)
	err = runSupervised(ctx, cfg, log, "translate "+repo.ID, func(ctx context.Context) error {
		if err := engine.ConvertRepository(ctx, repo, cc); err != nil {
			return err
		}
		if err := engine.WriteProject(repo, cc, outDir); err != nil {
			return err
		}
		return engine.FormatTree(ctx, filepath.Join(outDir, "src"), cfg.Translate.MaxFmtRetries)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error translating repository: %v\n", err)
		os.Exit(1)
	}

	log.Info("translation written", map[string]interface{}{"repo": repo.ID, "dir": outDir})
}
