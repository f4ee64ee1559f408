package translate

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"xlate/internal/oracle"
)

// maxPatchFileSize caps the files sent to the oracle for patching.
const maxPatchFileSize = 10 * 1024

// rustIgnoreErrs are resolution errors expected in a freshly generated tree
// (missing symbols, unresolved imports, no main). Patching them one file at
// a time would only churn.
var rustIgnoreErrs = []string{
	"E0425",
	"E0412",
	"E0433",
	"E0601",
	"E0432",
}

// ToValidate asks the oracle to repair a file against a compiler error.
type ToValidate struct {
	Code  string `json:"Code"`
	Error string `json:"Error"`
}

// FormatTree runs rustfmt over every .rs file under root. A file rustfmt
// rejects is patched through the oracle and retried up to retries times;
// formatting is best-effort and never fails the run.
func (e *Engine) FormatTree(ctx context.Context, root string, retries int) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".rs" {
			return nil
		}
		e.fmtFile(ctx, path, retries)
		return nil
	})
}

func (e *Engine) fmtFile(ctx context.Context, path string, retries int) {
	out, err := runRustfmt(ctx, path)
	if err == nil {
		return
	}
	for i := 0; i < retries; i++ {
		e.log.Warn("rustfmt failed, patching", map[string]interface{}{
			"file": path, "attempt": i, "error": firstLine(out),
		})
		e.patchWithError(ctx, out, false)
		if out, err = runRustfmt(ctx, path); err == nil {
			return
		}
	}
	e.log.Warn("giving up on formatting", map[string]interface{}{"file": path})
}

func runRustfmt(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "rustfmt", "--edition=2021", path)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// patchWithError parses compiler output, groups messages per file and asks
// the oracle to repair each file in place.
func (e *Engine) patchWithError(ctx context.Context, errMsg string, ignore bool) {
	for file, tips := range ExtractErrLocations(errMsg, ignore) {
		code, err := os.ReadFile(file)
		if err != nil {
			e.log.Warn("cannot read file to patch", map[string]interface{}{"file": file, "error": err.Error()})
			continue
		}
		if len(code) > maxPatchFileSize {
			e.log.Warn("file too large to patch, skipping", map[string]interface{}{"file": file})
			continue
		}
		js, err := json.Marshal(ToValidate{Code: string(code), Error: tips})
		if err != nil {
			continue
		}
		resp, err := e.oracle.Request(ctx, oracle.ValidateCode, string(js))
		if err != nil {
			e.log.Warn("patch request failed", map[string]interface{}{"file": file, "error": err.Error()})
			continue
		}
		fixed, _, err := oracle.ExtractCode(resp, true)
		if err != nil || fixed == "" {
			continue
		}
		if err := os.WriteFile(file, []byte(fixed), 0o644); err != nil {
			e.log.Warn("cannot write patched file", map[string]interface{}{"file": file, "error": err.Error()})
		}
	}
}

// ExtractErrLocations parses rustc/rustfmt diagnostics into a per-file
// message map. Each "--> file:line" marker contributes the message line
// above it plus the indented source snippet below. With ignore set, known
// resolution errors are dropped.
func ExtractErrLocations(errMsg string, ignore bool) map[string]string {
	files := map[string]string{}
	lines := strings.Split(errMsg, "\n")

	i := 0
outer:
	for i < len(lines) {
		line := lines[i]
		if !strings.Contains(line, "--> ") {
			i++
			continue
		}
		loc := strings.TrimPrefix(strings.TrimSpace(line), "--> ")
		file, _, _ := strings.Cut(loc, ":")
		msg := ""
		if i > 0 {
			msg = lines[i-1]
		}
		if ignore {
			for _, code := range rustIgnoreErrs {
				if strings.Contains(msg, code) {
					i++
					continue outer
				}
			}
		}
		errs := []string{msg, line}
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], " | ") {
				errs = append(errs, lines[j])
			} else {
				i = j
				break
			}
		}
		block := strings.Join(errs, "\n")
		if old, ok := files[file]; ok {
			files[file] = old + "\n" + block
		} else {
			files[file] = block
		}
		i++
	}
	return files
}

func firstLine(s string) string {
	first, _, _ := strings.Cut(s, "\n")
	return first
}
