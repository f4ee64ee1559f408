// Package resolver looks up symbols of third-party repositories in the
// shared cache. A dependency that was itself compressed earlier has a
// checkpoint under its own repo name; the resolver reads summaries out of it.
// Strictly read-only: foreign checkpoints are never written back.
package resolver

import (
	"xlate/internal/logging"
	"xlate/internal/storage"
	"xlate/internal/uniast"
)

// Resolver caches loaded foreign repositories per run. A nil map entry marks
// a known miss so the cache is probed at most once per repo.
type Resolver struct {
	cache storage.Engine
	log   *logging.Logger
	repos map[string]*uniast.Repository
}

// New creates a resolver over the shared cache.
func New(cache storage.Engine, log *logging.Logger) *Resolver {
	return &Resolver{cache: cache, log: log, repos: map[string]*uniast.Repository{}}
}

// Summary returns the compressed description of a symbol from its owning
// repository's checkpoint.
func (r *Resolver) Summary(id uniast.Identity) (string, bool) {
	repo := r.repoFor(id.PkgPath)
	if repo == nil {
		return "", false
	}
	for _, mod := range repo.Modules {
		pkg, ok := mod.Packages[id.PkgPath]
		if !ok {
			continue
		}
		if f, ok := pkg.Functions[id.Name]; ok && f.CompressData != "" {
			return f.CompressData, true
		}
		if t, ok := pkg.Types[id.Name]; ok && t.CompressData != "" {
			return t.CompressData, true
		}
		if v, ok := pkg.Vars[id.Name]; ok && v.CompressData != "" {
			return v.CompressData, true
		}
	}
	return "", false
}

// Content returns the raw source of a symbol from its owning repository's
// checkpoint, for callers that want the fallback the cascade uses locally.
func (r *Resolver) Content(id uniast.Identity) (string, bool) {
	repo := r.repoFor(id.PkgPath)
	if repo == nil {
		return "", false
	}
	for _, mod := range repo.Modules {
		pkg, ok := mod.Packages[id.PkgPath]
		if !ok {
			continue
		}
		if f, ok := pkg.Functions[id.Name]; ok {
			return f.Content, true
		}
		if t, ok := pkg.Types[id.Name]; ok {
			return t.Content, true
		}
		if v, ok := pkg.Vars[id.Name]; ok {
			return v.Content, true
		}
	}
	return "", false
}

func (r *Resolver) repoFor(pkgPath string) *uniast.Repository {
	name := storage.RepoNameFromPkgPath(pkgPath)
	if repo, ok := r.repos[name]; ok {
		return repo
	}
	repo, err := storage.LoadRepo(r.cache, name)
	if err != nil {
		r.log.Warn("cannot load dependency repo", map[string]interface{}{
			"repo": name, "error": err.Error(),
		})
		repo = nil
	}
	r.repos[name] = repo
	return repo
}
