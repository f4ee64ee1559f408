// Package compress implements the cascading summarization engine: a
// bottom-up walk of the symbol graph that summarizes every dependency before
// the symbol that uses it, checkpointing the repository after each summary so
// a restarted run resumes where it stopped.
package compress

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"xlate/internal/logging"
	"xlate/internal/oracle"
	"xlate/internal/storage"
	"xlate/internal/uniast"
)

// MaxVarReferences bounds how many referencing snippets are attached to a
// variable request.
const MaxVarReferences = 4

// generatedDirs are code-generator outputs that never get summarized.
var generatedDirs = []string{"kitex_gen/", "hertz_gen/"}

// Resolver looks up symbols in other repositories' checkpoints. External
// dependencies that were compressed in their own run contribute summaries
// instead of nothing.
type Resolver interface {
	Summary(id uniast.Identity) (string, bool)
}

// Engine drives the cascade. It is single-goroutine; the cache provides the
// persistence that makes restarts cheap.
type Engine struct {
	oracle   oracle.Oracle
	cache    storage.Engine
	log      *logging.Logger
	exclude  []string
	resolver Resolver
}

// New creates a compression engine.
func New(o oracle.Oracle, cache storage.Engine, log *logging.Logger, excludeDirs []string) *Engine {
	return &Engine{oracle: o, cache: cache, log: log, exclude: excludeDirs}
}

// WithResolver attaches a cross-repo resolver used to describe external
// dependencies.
func (e *Engine) WithResolver(r Resolver) *Engine {
	e.resolver = r
	return e
}

// resolveExternal consults the resolver for a symbol outside this repo.
func (e *Engine) resolveExternal(id uniast.Identity) (string, bool) {
	if e.resolver == nil || id.Inside() {
		return "", false
	}
	return e.resolver.Summary(id)
}

// CompressAll summarizes every symbol of every internal module, then the
// packages, then the modules. Order is vars, funcs, types so that by the time
// a package is summarized everything below it is done.
func (e *Engine) CompressAll(ctx context.Context, repo *uniast.Repository) error {
	var funcs, types, vars []uniast.Identity
	for _, mod := range repo.Modules {
		if mod.External() {
			continue
		}
		for _, pkg := range mod.Packages {
			for _, f := range pkg.Functions {
				funcs = append(funcs, f.Identity)
			}
			for _, t := range pkg.Types {
				types = append(types, t.Identity)
			}
			for _, v := range pkg.Vars {
				vars = append(vars, v.Identity)
			}
		}
	}
	sortIdentities(vars)
	sortIdentities(funcs)
	sortIdentities(types)

	for _, id := range vars {
		if err := e.cascadeVariable(ctx, repo, id, map[string]bool{}); err != nil {
			return err
		}
	}
	for _, id := range funcs {
		if err := e.cascadeFunction(ctx, repo, id, map[string]bool{}); err != nil {
			return err
		}
	}
	for _, id := range types {
		if err := e.cascadeType(ctx, repo, id, map[string]bool{}); err != nil {
			return err
		}
	}

	for modName, mod := range repo.Modules {
		if mod.External() {
			continue
		}
		pkgNames := make([]string, 0, len(mod.Packages))
		for name := range mod.Packages {
			pkgNames = append(pkgNames, name)
		}
		sort.Strings(pkgNames)
		for _, name := range pkgNames {
			if mod.Packages[name].CompressData == "" {
				if err := e.compressPackage(ctx, repo, modName, name); err != nil {
					return err
				}
			}
		}
		if mod.CompressData == "" {
			if err := e.compressModule(ctx, repo, modName); err != nil {
				return err
			}
		}
	}
	return nil
}

// shouldCompress gates the cascade: external symbols, generated code and
// configured exclude dirs are treated as opaque.
func (e *Engine) shouldCompress(repo *uniast.Repository, id uniast.Identity) bool {
	if !id.Inside() {
		return false
	}
	for _, g := range generatedDirs {
		if strings.Contains(id.PkgPath, g) {
			return false
		}
	}
	fl := repo.GetFileLine(id)
	for _, exclude := range e.exclude {
		if exclude != "" && strings.HasPrefix(fl.File, exclude) {
			return false
		}
	}
	return true
}

func (e *Engine) cascadeVariable(ctx context.Context, repo *uniast.Repository, id uniast.Identity, guard map[string]bool) error {
	if !e.shouldCompress(repo, id) {
		return nil
	}
	v := repo.GetVar(id)
	if v == nil {
		e.log.Warn("variable not found", map[string]interface{}{"id": id.String()})
		return nil
	}
	if v.CompressData != "" {
		return nil
	}
	e.log.Info("compressing variable", map[string]interface{}{"id": id.String()})

	payload := VarPayload{Content: v.Content}
	if node := repo.GetNode(id); node != nil {
		for i, ref := range node.References {
			if i >= MaxVarReferences {
				e.log.Warn("too many references, truncating", map[string]interface{}{"id": id.String()})
				break
			}
			if content, ok := repo.GetIdentityContent(ref.Identity); ok {
				payload.References = append(payload.References, content)
			} else {
				e.log.Warn("reference not found", map[string]interface{}{"id": ref.String()})
			}
		}
	}

	if v.Type != nil {
		if err := e.cascadeType(ctx, repo, *v.Type, guard); err != nil {
			return err
		}
		if t := repo.GetType(*v.Type); t != nil {
			payload.Type = t.CompressData
		} else {
			e.log.Warn("variable type not found", map[string]interface{}{"id": v.Type.String()})
		}
	}

	summary, err := e.request(ctx, oracle.CompressVariable, payload)
	if err != nil {
		return err
	}
	v.CompressData = summary
	return storage.SaveRepo(e.cache, repo)
}

func (e *Engine) cascadeFunction(ctx context.Context, repo *uniast.Repository, id uniast.Identity, guard map[string]bool) error {
	if !e.shouldCompress(repo, id) {
		return nil
	}
	f := repo.GetFunction(id)
	if f == nil {
		e.log.Warn("function not found", map[string]interface{}{"id": id.String()})
		return nil
	}
	if f.CompressData != "" {
		return nil
	}
	e.log.Info("compressing function", map[string]interface{}{"id": id.String()})

	var depVars, depFuncs, depTypes []uniast.Identity
	admit := func(dep uniast.Identity, out *[]uniast.Identity) {
		if dep.Name == id.Name && dep.PkgPath == id.PkgPath {
			e.log.Debug("skipping self reference", map[string]interface{}{"id": dep.String()})
			return
		}
		key := dep.String()
		if guard[key] {
			e.log.Warn("calling cycle detected", map[string]interface{}{"id": key})
			return
		}
		guard[key] = true
		*out = append(*out, dep)
	}
	for _, dep := range f.GlobalVars {
		admit(dep, &depVars)
	}
	for _, dep := range f.FunctionCalls {
		admit(dep, &depFuncs)
	}
	for _, dep := range f.MethodCalls {
		admit(dep, &depFuncs)
	}
	for _, dep := range f.Params {
		admit(dep, &depTypes)
	}
	for _, dep := range f.Results {
		admit(dep, &depTypes)
	}
	for _, dep := range f.Types {
		admit(dep, &depTypes)
	}
	if f.Receiver != nil {
		admit(f.Receiver.Type, &depTypes)
	}

	for _, dep := range depVars {
		if err := e.cascadeVariable(ctx, repo, dep, guard); err != nil {
			return err
		}
		delete(guard, dep.String())
	}
	for _, dep := range depFuncs {
		if err := e.cascadeFunction(ctx, repo, dep, guard); err != nil {
			return err
		}
		delete(guard, dep.String())
	}
	for _, dep := range depTypes {
		if err := e.cascadeType(ctx, repo, dep, guard); err != nil {
			return err
		}
		delete(guard, dep.String())
	}

	// A cycle may have summarized this symbol while the recursion above ran.
	if f.CompressData != "" {
		return nil
	}
	if strings.TrimSpace(f.Content) == "" {
		e.log.Warn("function has no content, skipping", map[string]interface{}{"id": id.String()})
		return nil
	}

	payload := e.buildFuncPayload(repo, f)
	summary, err := e.request(ctx, oracle.CompressFunction, payload)
	if err != nil {
		return err
	}
	f.CompressData = summary
	return storage.SaveRepo(e.cache, repo)
}

// buildFuncPayload attaches the summary of every dependency, falling back to
// raw source when a dependency was skipped or is still uncompressed.
func (e *Engine) buildFuncPayload(repo *uniast.Repository, f *uniast.Function) FuncPayload {
	payload := FuncPayload{Content: f.Content}

	describeType := func(dep uniast.Identity) (KeyValue, bool) {
		t := repo.GetType(dep)
		if t == nil {
			if desc, ok := e.resolveExternal(dep); ok {
				return KeyValue{Name: dep.Name, Description: desc}, true
			}
			e.log.Warn("type not found", map[string]interface{}{"id": dep.String()})
			return KeyValue{}, false
		}
		desc := t.CompressData
		if desc == "" {
			e.log.Warn("dependency not compressed, using raw source", map[string]interface{}{"id": dep.String()})
			desc = t.Content
		}
		return KeyValue{Name: dep.Name, Description: desc}, true
	}

	for _, dep := range f.GlobalVars {
		v := repo.GetVar(dep)
		if v == nil {
			if desc, ok := e.resolveExternal(dep); ok {
				payload.RelatedVar = append(payload.RelatedVar, KeyValue{Name: dep.Name, Description: desc})
				continue
			}
			e.log.Warn("variable not found", map[string]interface{}{"id": dep.String()})
			continue
		}
		desc := v.CompressData
		if desc == "" {
			desc = v.Content
		}
		payload.RelatedVar = append(payload.RelatedVar, KeyValue{Name: dep.Name, Description: desc})
	}
	for _, dep := range f.Types {
		if kv, ok := describeType(dep); ok {
			payload.RelatedType = append(payload.RelatedType, kv)
		}
	}
	for _, dep := range f.Params {
		if kv, ok := describeType(dep); ok {
			payload.Params = append(payload.Params, kv)
		}
	}
	for _, dep := range f.Results {
		if kv, ok := describeType(dep); ok {
			payload.Results = append(payload.Results, kv)
		}
	}
	if f.Receiver != nil {
		if kv, ok := describeType(f.Receiver.Type); ok {
			payload.Receiver = kv.Description
		}
	}

	for _, dep := range append(append([]uniast.Identity{}, f.FunctionCalls...), f.MethodCalls...) {
		if dep.Name == f.Name && dep.PkgPath == f.PkgPath {
			continue
		}
		sub := repo.GetFunction(dep)
		if sub == nil {
			if desc, ok := e.resolveExternal(dep); ok {
				payload.RelatedFunc = append(payload.RelatedFunc, CalledType{CallName: dep.Name, Description: desc})
				continue
			}
			e.log.Warn("callee not found", map[string]interface{}{"id": dep.String()})
			continue
		}
		desc := sub.CompressData
		if desc == "" {
			e.log.Warn("callee not compressed, using raw source", map[string]interface{}{"id": dep.String()})
			desc = sub.Content
		}
		payload.RelatedFunc = append(payload.RelatedFunc, CalledType{CallName: dep.Name, Description: desc})
	}
	return payload
}

func (e *Engine) cascadeType(ctx context.Context, repo *uniast.Repository, id uniast.Identity, guard map[string]bool) error {
	if !e.shouldCompress(repo, id) {
		return nil
	}
	t := repo.GetType(id)
	if t == nil {
		e.log.Warn("type not found", map[string]interface{}{"id": id.String()})
		return nil
	}
	if t.CompressData != "" {
		return nil
	}
	e.log.Info("compressing type", map[string]interface{}{"id": id.String()})

	var depTypes, depFuncs []uniast.Identity
	admit := func(dep uniast.Identity, out *[]uniast.Identity) {
		if !repo.Contains(dep) {
			return
		}
		key := dep.String()
		if guard[key] {
			e.log.Warn("embedding cycle detected", map[string]interface{}{"id": key})
			return
		}
		guard[key] = true
		*out = append(*out, dep)
	}
	for _, dep := range t.SubStruct {
		admit(dep, &depTypes)
	}
	for _, dep := range t.InlineStruct {
		admit(dep, &depTypes)
	}
	methodNames := make([]string, 0, len(t.Methods))
	for name := range t.Methods {
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)
	for _, name := range methodNames {
		admit(t.Methods[name], &depFuncs)
	}

	for _, dep := range depTypes {
		if err := e.cascadeType(ctx, repo, dep, guard); err != nil {
			return err
		}
		delete(guard, dep.String())
	}
	for _, dep := range depFuncs {
		if err := e.cascadeFunction(ctx, repo, dep, guard); err != nil {
			return err
		}
		delete(guard, dep.String())
	}

	if t.CompressData != "" {
		return nil
	}
	if strings.TrimSpace(t.Content) == "" {
		e.log.Warn("type has no content, skipping", map[string]interface{}{"id": id.String()})
		return nil
	}

	payload := TypePayload{Content: t.Content}
	describe := func(dep uniast.Identity) (KeyValue, bool) {
		sub := repo.GetType(dep)
		if sub == nil {
			e.log.Warn("type not found", map[string]interface{}{"id": dep.String()})
			return KeyValue{}, false
		}
		desc := sub.CompressData
		if desc == "" {
			desc = sub.Content
		}
		return KeyValue{Name: dep.Name, Description: desc}, true
	}
	for _, dep := range t.SubStruct {
		if kv, ok := describe(dep); ok {
			payload.RelatedTypes = append(payload.RelatedTypes, kv)
		}
	}
	for _, dep := range t.InlineStruct {
		if kv, ok := describe(dep); ok {
			payload.RelatedTypes = append(payload.RelatedTypes, kv)
		}
	}
	for _, name := range methodNames {
		dep := t.Methods[name]
		if !repo.Contains(dep) {
			continue
		}
		m := repo.GetFunction(dep)
		if m == nil {
			e.log.Warn("method not found", map[string]interface{}{"id": dep.String()})
			continue
		}
		desc := m.CompressData
		if desc == "" {
			desc = m.Content
		}
		payload.RelatedMethods = append(payload.RelatedMethods, KeyValue{Name: name, Description: desc})
	}

	summary, err := e.request(ctx, oracle.CompressType, payload)
	if err != nil {
		return err
	}
	t.CompressData = summary
	return storage.SaveRepo(e.cache, repo)
}

// compressPackage summarizes a package from its exported, already-summarized
// symbols.
func (e *Engine) compressPackage(ctx context.Context, repo *uniast.Repository, modName, pkgName string) error {
	pkg := repo.Modules[modName].Packages[pkgName]
	payload := PkgPayload{PkgPath: pkg.PkgPath}
	if payload.PkgPath == "" {
		payload.PkgPath = pkgName
	}

	for name, f := range pkg.Functions {
		if f.Exported && f.CompressData != "" {
			payload.Functions = append(payload.Functions, KeyValue{Name: name, Description: f.CompressData})
		}
	}
	for name, t := range pkg.Types {
		if t.Exported && t.CompressData != "" {
			payload.Types = append(payload.Types, KeyValue{Name: name, Description: t.CompressData})
		}
	}
	for name, v := range pkg.Vars {
		if v.IsExported && v.CompressData != "" {
			payload.Variables = append(payload.Variables, KeyValue{Name: name, Description: v.CompressData})
		}
	}
	sortKeyValues(payload.Functions)
	sortKeyValues(payload.Types)
	sortKeyValues(payload.Variables)

	summary, err := e.request(ctx, oracle.CompressPackage, payload)
	if err != nil {
		return err
	}
	pkg.CompressData = summary
	e.log.Info("finished package", map[string]interface{}{"pkg": pkgName})
	return storage.SaveRepo(e.cache, repo)
}

// compressModule summarizes a module from its package summaries.
func (e *Engine) compressModule(ctx context.Context, repo *uniast.Repository, modName string) error {
	mod := repo.Modules[modName]
	payload := ModulePayload{Name: mod.Name}
	for name, pkg := range mod.Packages {
		if pkg.CompressData != "" {
			payload.Packages = append(payload.Packages, KeyValue{Name: name, Description: pkg.CompressData})
		}
	}
	sortKeyValues(payload.Packages)

	summary, err := e.request(ctx, oracle.CompressModule, payload)
	if err != nil {
		return err
	}
	mod.CompressData = summary
	e.log.Info("finished module", map[string]interface{}{"module": modName})
	return storage.SaveRepo(e.cache, repo)
}

func (e *Engine) request(ctx context.Context, kind oracle.Kind, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	out, err := e.oracle.Request(ctx, kind, string(data))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func sortIdentities(ids []uniast.Identity) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

func sortKeyValues(kvs []KeyValue) {
	sort.Slice(kvs, func(i, j int) bool { return kvs[i].Name < kvs[j].Name })
}
