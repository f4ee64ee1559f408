// Package translate implements the Go-to-Rust translation engine: a
// per-symbol recursive translation over the dependency graph followed by
// reconstruction of the generated project tree.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	xerrors "xlate/internal/errors"
	"xlate/internal/logging"
	"xlate/internal/oracle"
	"xlate/internal/rustitem"
	"xlate/internal/storage"
	"xlate/internal/translate/naming"
	"xlate/internal/uniast"
)

// MaxCodeReferences bounds how many already-translated examples ride along
// with a convert request.
const MaxCodeReferences = 3

// ExternalMocksDir is where unknown external modules are mocked.
const ExternalMocksDir = "external_mocks"

// Reference is one dependency or style example in a convert request.
type Reference struct {
	Name   string `json:"Name,omitempty"`
	Code   string `json:"Code"`
	Import string `json:"ImportPath,omitempty"`
}

// ConvertPayload is the convert-code request body.
type ConvertPayload struct {
	Name         string               `json:"Name"`
	Receiver     string               `json:"Receiver,omitempty"`
	Definition   string               `json:"Definition"`
	Dependencies map[string]Reference `json:"Dependencies"`
	References   map[string]Reference `json:"References"`
}

// Engine drives the translation. Results accumulate in a CodeCache which is
// checkpointed after every symbol.
type Engine struct {
	oracle oracle.Oracle
	cache  storage.Engine
	log    *logging.Logger
}

// New creates a translation engine.
func New(o oracle.Oracle, cache storage.Engine, log *logging.Logger) *Engine {
	return &Engine{oracle: o, cache: cache, log: log}
}

// RustID maps a symbol identity onto its Rust name: snake_case for
// functions, UpperCamel for types, UPPER_SNAKE for globals. Methods
// additionally return the UpperCamel receiver type.
func RustID(repo *uniast.Repository, id uniast.Identity) (name, implType string, kind uniast.NodeType) {
	parts := strings.Split(id.Name, ".")
	last := parts[len(parts)-1]
	kind = repo.GetKind(id)
	switch kind {
	case uniast.KindType:
		name = naming.SnakeToCamel(last)
	case uniast.KindVar:
		name = strings.ToUpper(naming.CamelToSnake(last))
	default:
		name = naming.CamelToSnake(last)
	}
	name = naming.EscapeKeyword(name)
	if len(parts) == 2 {
		implType = naming.SnakeToCamel(parts[0])
	}
	return name, implType, kind
}

// ImportFor derives the Rust use path of a symbol: crate::... for internal
// packages, crate::external_mocks::... for external ones.
func ImportFor(repo *uniast.Repository, id uniast.Identity) string {
	if id.Inside() {
		if m, p := repo.GetPackage(id); m != nil {
			path := strings.TrimPrefix(p.PkgPath, m.Name)
			return naming.NewImport("crate", strings.TrimPrefix(path, "/"))
		}
	}
	mod, _, _ := strings.Cut(id.ModPath, "@")
	crate := naming.ConvertCrate(mod)
	pkg := strings.TrimPrefix(id.PkgPath, mod)
	path := crate
	if pkg != "" {
		path = crate + pkg
	}
	return naming.NewImport("crate/"+ExternalMocksDir, path)
}

// ConvertRepository translates every graph node that is not already in the
// code cache.
func (e *Engine) ConvertRepository(ctx context.Context, repo *uniast.Repository, cc *uniast.CodeCache) error {
	if repo.Graph == nil {
		repo.BuildGraph()
	}

	keys := make([]string, 0, len(repo.Graph))
	for key := range repo.Graph {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if code, ok := cc.Nodes[key]; ok && code.Code != "" {
			continue
		}
		node := repo.Graph[key]
		if _, err := e.convertNode(ctx, repo, cc, node, map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}

// convertNode translates one symbol, recursing into uncached dependencies
// first. A nil result without error means the node was skipped (cycle).
func (e *Engine) convertNode(ctx context.Context, repo *uniast.Repository, cc *uniast.CodeCache, node *uniast.Node, visited map[string]bool) (*uniast.Code, error) {
	key := node.Identity.String()
	if visited[key] {
		e.log.Warn("circular dependency detected", map[string]interface{}{"id": key})
		return nil, nil
	}
	visited[key] = true

	if code, ok := cc.Get(node.Identity); ok && code.Code != "" {
		return &code, nil
	}

	content, ok := repo.GetIdentityContent(node.Identity)
	if !ok {
		// A graph node without content is a method that only appears as a
		// call target; mock it.
		parts := strings.Split(node.Identity.Name, ".")
		if len(parts) != 2 {
			return nil, xerrors.Newf(xerrors.SymbolNotFound, "no content for %s", key)
		}
		content = fmt.Sprintf("func(%s) %s() { todo!(\"Not implemented yet!\"); }", parts[0], parts[1])
	}

	rustName, implType, kind := RustID(repo, node.Identity)
	if !node.Identity.Inside() && kind == uniast.KindFunc {
		// External functions only need a signature; the body becomes a stub.
		first, _, _ := strings.Cut(content, "\n")
		content = first + "\n\ttodo!(\"Not implemented yet!\");\n}"
	}

	// The oracle reliably renders new_X constructors as `impl X { fn new() }`.
	newType := ""
	if strings.HasPrefix(rustName, "new_") {
		newType = naming.SnakeToCamel(strings.TrimPrefix(rustName, "new_"))
	}

	payload := ConvertPayload{
		Name:         rustName,
		Receiver:     implType,
		Definition:   content,
		Dependencies: map[string]Reference{},
		References:   map[string]Reference{},
	}

	for _, dep := range node.Dependencies {
		code, err := e.dependencyCode(ctx, repo, cc, dep.Identity, visited)
		if err != nil {
			return nil, err
		}
		if code == "" {
			continue
		}
		depName, _, _ := RustID(repo, dep.Identity)
		ref := Reference{Name: depName, Code: code}
		if dep.PkgPath != node.Identity.PkgPath {
			ref.Import = ImportFor(repo, dep.Identity)
		}
		payload.Dependencies[dep.Name] = ref
	}

	count := 0
	for _, refer := range node.References {
		if count >= MaxCodeReferences {
			e.log.Warn("too many references, truncating", map[string]interface{}{"id": key})
			break
		}
		if refCode, ok := repo.GetIdentityContent(refer.Identity); ok {
			payload.References[refer.Name] = Reference{Code: refCode}
			count++
		}
	}

	js, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	want := rustitem.Want{Name: rustName, Kind: kind, ImplType: implType, NewType: newType}
	code, crates, imports, found, err := e.requestItem(ctx, string(js), want)
	if err != nil {
		return nil, err
	}
	if !found {
		// One retry with the mismatch called out, then keep whatever came back.
		retry := fmt.Sprintf("%s: ```json\n%s\n```", oracle.RetryPrefix(rustName, string(kind)), js)
		code, crates, imports, found, err = e.requestItem(ctx, retry, want)
		if err != nil {
			return nil, err
		}
		if !found {
			e.log.Warn("keeping unextracted completion", map[string]interface{}{"id": key})
		}
	}

	imports = e.filterImports(imports, payload.Dependencies)
	for _, dep := range payload.Dependencies {
		if dep.Import != "" {
			imports["use "+dep.Import+";"] = true
		}
	}

	result := uniast.Code{Code: code, Crates: crates}
	if len(imports) > 0 {
		result.Imports = imports
	}
	cc.Insert(node.Identity, result)
	if err := storage.SaveCodeCache(e.cache, cc); err != nil {
		return nil, err
	}
	return &result, nil
}

// dependencyCode returns the translated code of a dependency, recursing when
// it is not cached yet and falling back to the raw Go source when the
// recursion was cut by a cycle.
func (e *Engine) dependencyCode(ctx context.Context, repo *uniast.Repository, cc *uniast.CodeCache, dep uniast.Identity, visited map[string]bool) (string, error) {
	if code, ok := cc.Get(dep); ok && code.Code != "" {
		return code.Code, nil
	}
	n := repo.GetNode(dep)
	if n == nil {
		return "", nil
	}
	if repo.GetKind(dep) == uniast.KindUnknown {
		return "", nil
	}
	converted, err := e.convertNode(ctx, repo, cc, n, visited)
	if err != nil {
		return "", err
	}
	if converted != nil {
		return converted.Code, nil
	}
	content, _ := repo.GetIdentityContent(dep)
	return content, nil
}

// requestItem sends one convert request and extracts the wanted item from
// the completion. found=false covers both a parse miss and a kind mismatch.
func (e *Engine) requestItem(ctx context.Context, payload string, want rustitem.Want) (code, crates string, imports map[string]bool, found bool, err error) {
	resp, err := e.oracle.Request(ctx, oracle.ConvertCode, payload)
	if err != nil {
		return "", "", nil, false, err
	}
	raw, deps, err := oracle.ExtractCode(resp, false)
	if err != nil {
		return "", "", nil, false, err
	}

	imports = map[string]bool{}
	res, err := rustitem.Extract(ctx, raw, want)
	if err != nil {
		e.log.Warn("rust parse failed, keeping raw completion", map[string]interface{}{
			"item": want.Name, "error": err.Error(),
		})
		return raw, deps, imports, false, nil
	}
	for _, imp := range res.Imports {
		imports[imp] = true
	}
	if !res.Found {
		if res.KindMismatch {
			e.log.Warn("item matched with wrong kind", map[string]interface{}{
				"item": want.Name, "kind": string(want.Kind),
			})
		}
		return raw, deps, imports, false, nil
	}
	return res.Code, deps, imports, true, nil
}

// filterImports drops hallucinated crate-internal imports: a use crate::...
// line survives only when it resolves into a dependency's package.
func (e *Engine) filterImports(imports map[string]bool, deps map[string]Reference) map[string]bool {
	out := map[string]bool{}
	for imp := range imports {
		flat := strings.ReplaceAll(strings.TrimPrefix(imp, "use "), " ", "")
		flat = strings.TrimSuffix(flat, ";")
		if !strings.HasPrefix(flat, "crate::") {
			out[imp] = true
			continue
		}
		for _, dep := range deps {
			if dep.Import != "" && strings.HasPrefix(flat, dep.Import) {
				out[imp] = true
				break
			}
		}
	}
	return out
}
