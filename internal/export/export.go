// Package export renders a compressed repository into shareable artifacts:
// CSV tables of symbol summaries, declarations and package summaries, or a
// single markdown document. Long texts are chunked so each row stays within
// embedding-friendly size.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"xlate/internal/uniast"
)

// chunkSize bounds one summary cell; declChunk is the window for raw
// declarations with a 100-byte overlap between rows.
const (
	chunkSize   = 924
	declChunk   = 1024
	declOverlap = 100
	declAdvance = 924
)

// Options select the output format.
type Options struct {
	CSV        bool
	PublicOnly bool
	Output     string
}

// Summary renders the per-symbol summary table.
func Summary(repo *uniast.Repository) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"Package", "Name", "Kind", "Signature", "Summary"}); err != nil {
		return "", err
	}

	err := eachPackage(repo, func(pname string, pkg *uniast.Package) error {
		writeRow := func(name, kind, content, summary string) error {
			sig, _, _ := strings.Cut(content, "\n")
			for _, chunk := range splitText(summary, chunkSize) {
				if err := w.Write([]string{pname, name, kind, sig, name + ": " + chunk}); err != nil {
					return err
				}
			}
			return nil
		}
		for _, name := range sortedKeys(pkg.Functions) {
			f := pkg.Functions[name]
			if err := writeRow(name, "Function", f.Content, f.CompressData); err != nil {
				return err
			}
		}
		for _, name := range sortedKeys(pkg.Types) {
			t := pkg.Types[name]
			if err := writeRow(name, "Type", t.Content, t.CompressData); err != nil {
				return err
			}
		}
		for _, name := range sortedKeys(pkg.Vars) {
			v := pkg.Vars[name]
			if err := writeRow(name, "Var", v.Content, v.CompressData); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	w.Flush()
	return sb.String(), w.Error()
}

// Declarations renders the raw-source table, windowed with overlap so a
// symbol split across rows keeps context.
func Declarations(repo *uniast.Repository) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"Identity", "Kind", "Definition"}); err != nil {
		return "", err
	}

	err := eachPackage(repo, func(pname string, pkg *uniast.Package) error {
		writeDecl := func(name, kind, decl string) error {
			start, end := 0, declChunk
			for start < len(decl) {
				if end > len(decl) {
					end = len(decl)
				}
				if start >= declChunk {
					start -= declOverlap
				}
				if err := w.Write([]string{pname + "." + name, kind, decl[start:end]}); err != nil {
					return err
				}
				start = end
				end += declAdvance
			}
			return nil
		}
		for _, name := range sortedKeys(pkg.Functions) {
			if err := writeDecl(name, "Function", pkg.Functions[name].Content); err != nil {
				return err
			}
		}
		for _, name := range sortedKeys(pkg.Types) {
			if err := writeDecl(name, "Type", pkg.Types[name].Content); err != nil {
				return err
			}
		}
		for _, name := range sortedKeys(pkg.Vars) {
			if err := writeDecl(name, "Var", pkg.Vars[name].Content); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	w.Flush()
	return sb.String(), w.Error()
}

// Packages renders the per-package summary table.
func Packages(repo *uniast.Repository) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"Name", "Summary"}); err != nil {
		return "", err
	}
	err := eachPackage(repo, func(pname string, pkg *uniast.Package) error {
		for _, chunk := range splitText(pkg.CompressData, chunkSize) {
			if err := w.Write([]string{pname, pname + ": " + chunk}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	w.Flush()
	return sb.String(), w.Error()
}

// Markdown renders one document with module/package/symbol sections,
// summaries, positions and fenced source.
func Markdown(repo *uniast.Repository, opts Options) string {
	var md strings.Builder

	for _, modName := range sortedKeys(repo.Modules) {
		mod := repo.Modules[modName]
		if mod.External() {
			continue
		}
		fmt.Fprintf(&md, "# %s\n\n", modName)
		lang := mod.Language

		section := func(name, summary, file string, line int, content string, id uniast.Identity) {
			if opts.PublicOnly && !repo.IsExported(id) {
				return
			}
			fmt.Fprintf(&md, "### %s\n\n", name)
			if summary != "" {
				fmt.Fprintf(&md, "%s\n\n", summary)
			}
			fmt.Fprintf(&md, "- Position\n\n%s:%d\n\n", file, line)
			fmt.Fprintf(&md, "- Codes\n\n```%s\n%s\n```\n\n", lang, content)
		}

		for _, pkgName := range sortedKeys(mod.Packages) {
			pkg := mod.Packages[pkgName]
			fmt.Fprintf(&md, "## %s\n\n", pkgName)
			if pkg.CompressData != "" {
				fmt.Fprintf(&md, "%s\n\n", pkg.CompressData)
			}
			for _, name := range sortedKeys(pkg.Functions) {
				f := pkg.Functions[name]
				section(name, f.CompressData, f.File, f.Line, f.Content, f.Identity)
			}
			for _, name := range sortedKeys(pkg.Types) {
				t := pkg.Types[name]
				section(name, t.CompressData, t.File, t.Line, t.Content, t.Identity)
			}
			for _, name := range sortedKeys(pkg.Vars) {
				v := pkg.Vars[name]
				section(name, v.CompressData, v.File, v.Line, v.Content, v.Identity)
			}
		}
	}
	return md.String()
}

// WriteAll writes the selected artifacts next to each other, named after the
// repo id with "/" flattened.
func WriteAll(repo *uniast.Repository, opts Options, defaultDir string) error {
	dir := opts.Output
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := strings.ReplaceAll(repo.ID, "/", "_")

	if !opts.CSV {
		md := Markdown(repo, opts)
		return os.WriteFile(filepath.Join(dir, base+".md"), []byte(md), 0o644)
	}

	sum, err := Summary(repo)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, base+"_summary.csv"), []byte(sum), 0o644); err != nil {
		return err
	}
	decl, err := Declarations(repo)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, base+"_decl.csv"), []byte(decl), 0o644); err != nil {
		return err
	}
	pkgs, err := Packages(repo)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, base+"_pkg.csv"), []byte(pkgs), 0o644)
}

// eachPackage visits packages in deterministic order.
func eachPackage(repo *uniast.Repository, fn func(pname string, pkg *uniast.Package) error) error {
	for _, modName := range sortedKeys(repo.Modules) {
		mod := repo.Modules[modName]
		for _, pkgName := range sortedKeys(mod.Packages) {
			if err := fn(pkgName, mod.Packages[pkgName]); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitText chunks text at most max bytes per piece, breaking on the last
// whitespace inside the window when there is one and trimming each chunk.
// Empty input yields a single empty chunk so every symbol still gets a row.
func splitText(text string, max int) []string {
	if len(text) <= max {
		return []string{strings.TrimSpace(text)}
	}
	var chunks []string
	for len(text) > 0 {
		if len(text) <= max {
			chunks = append(chunks, strings.TrimSpace(text))
			break
		}
		cut := max
		for i := max; i > 0; i-- {
			if unicode.IsSpace(rune(text[i])) {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = text[cut:]
	}
	return chunks
}
