package translate

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"xlate/internal/manifest"
	"xlate/internal/storage"
	"xlate/internal/translate/naming"
	"xlate/internal/uniast"
)

// modFile accumulates the mod.rs (or main.rs, or lib.rs) of one package
// directory while the files of the package are written.
type modFile struct {
	content string
	isMain  bool
}

// WriteProject reassembles the translated symbols into a buildable crate
// under dir: src/ tree mirroring the package layout, mod declarations and
// re-exports, mocked external modules under src/external_mocks, and a
// Cargo.toml with one [[bin]] per main package.
func (e *Engine) WriteProject(repo *uniast.Repository, cc *uniast.CodeCache, dir string) error {
	cargo := manifest.NewCargo(repo.ID)
	for _, code := range cc.Nodes {
		if code.Crates != "" {
			cargo.Dep(code.Crates)
		}
	}

	rootDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return err
	}
	rootFiles := []string{filepath.Join(rootDir, "lib.rs")}

	modNames := make([]string, 0, len(repo.Modules))
	for name := range repo.Modules {
		modNames = append(modNames, name)
	}
	sort.Strings(modNames)

	for _, mname := range modNames {
		if mname == "" {
			continue
		}
		mod := repo.Modules[mname]

		// External modules carry a version suffix and get mocked under
		// external_mocks instead of the real layout.
		externalMod := strings.Contains(mname, "@")
		var mdir string
		switch {
		case mod.Dir == ".":
			mdir = rootDir
		case !externalMod:
			mdir = filepath.Join(rootDir, mod.Dir)
		default:
			mdir = filepath.Join(rootDir, ExternalMocksDir, naming.ConvertCrate(mod.Name))
		}

		pkgFiles := map[string]*modFile{}
		appendMod := func(pkgPath, decl string, isMain *bool) {
			f, ok := pkgFiles[pkgPath]
			if !ok {
				f = &modFile{}
				pkgFiles[pkgPath] = f
			}
			f.content += decl
			if isMain != nil {
				f.isMain = *isMain
			}
		}

		pkgPaths := make([]string, 0, len(mod.Packages))
		for p := range mod.Packages {
			pkgPaths = append(pkgPaths, p)
		}
		sort.Strings(pkgPaths)

		for _, pp := range pkgPaths {
			pkg := mod.Packages[pp]
			if err := e.writePackage(repo, cc, cargo, mod, pkg, mdir, appendMod); err != nil {
				return err
			}
		}

		// Flush each package's mod file. A main package writes (or prepends
		// to) main.rs and registers a cargo bin; the module root becomes
		// lib.rs; everything else is mod.rs.
		modPaths := make([]string, 0, len(pkgFiles))
		for p := range pkgFiles {
			modPaths = append(modPaths, p)
		}
		sort.Strings(modPaths)

		for _, pkgPath := range modPaths {
			mf := pkgFiles[pkgPath]
			pdir := filepath.Join(mdir, pkgPath)
			if err := os.MkdirAll(pdir, 0o755); err != nil {
				return err
			}
			switch {
			case mf.isMain:
				binName := strings.ReplaceAll(pkgPath, "/", "_")
				if binName == "" {
					binName = cargo.ID
				}
				rel, err := filepath.Rel(rootDir, pdir)
				if err != nil {
					return err
				}
				if rel == "." {
					rel = ""
				}
				cargo.Bin(binName, filepath.ToSlash(rel))

				fpath := filepath.Join(pdir, "main.rs")
				existing, _ := os.ReadFile(fpath)
				if err := os.WriteFile(fpath, []byte(mf.content+string(existing)), 0o644); err != nil {
					return err
				}
				if pkgPath == "" {
					rootFiles[0] = fpath
				} else {
					rootFiles = append(rootFiles, fpath)
				}
			case pkgPath == "" && !externalMod:
				if err := os.WriteFile(filepath.Join(pdir, "lib.rs"), []byte(mf.content), 0o644); err != nil {
					return err
				}
			default:
				if err := os.WriteFile(filepath.Join(pdir, "mod.rs"), []byte(mf.content), 0o644); err != nil {
					return err
				}
			}
		}

		if externalMod {
			if err := declareExternalMock(rootDir, naming.ConvertCrate(mod.Name)); err != nil {
				return err
			}
		}

		// Pick up module directories the mod declarations above missed, e.g.
		// external_mocks itself.
		if err := declareMissingMods(rootDir, rootFiles[0]); err != nil {
			return err
		}

		// The oracle tends to list the crate itself as a dependency.
		cargo.Undep(naming.ConvertCrate(mod.Name))
	}

	out, err := cargo.Render()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(out), 0o644)
}

func (e *Engine) writePackage(repo *uniast.Repository, cc *uniast.CodeCache, cargo *manifest.Cargo, mod *uniast.Module, pkg *uniast.Package, mdir string, appendMod func(string, string, *bool)) error {
	parts := strings.Split(pkg.PkgPath, "/")
	pkgName := strings.ReplaceAll(parts[len(parts)-1], "-", "_")
	pkgPath := strings.TrimPrefix(pkg.PkgPath, mod.Name)
	pkgPath = strings.TrimPrefix(pkgPath, "/")

	pdir := mdir
	if pkgPath != "" {
		pdir = filepath.Join(mdir, pkgPath)
	}
	if err := os.MkdirAll(pdir, 0o755); err != nil {
		return err
	}

	isMain := pkg.IsMain
	pfile := ""
	// The module-root package has no parent to declare it.
	if !isMain && pkgPath != "" {
		parent := path.Dir(pkgPath)
		if parent == "." {
			parent = ""
		}
		appendMod(parent, "pub mod "+naming.EscapeKeyword(pkgName)+";\n", nil)
	}

	// When the package sits under a main package, crate-internal imports in
	// its files must be rewritten relative to that binary root.
	mainRoot := ""
	if mainPkg, ok := repo.InsideMainPkg(mod.Name, pkg.PkgPath); ok {
		mainRoot = ImportFor(repo, uniast.Identity{ModPath: mod.Name, PkgPath: mainPkg})
	}

	files := pkg.ToFiles()
	fnames := make([]string, 0, len(files))
	for f := range files {
		fnames = append(fnames, f)
	}
	sort.Strings(fnames)

	for _, f := range fnames {
		ids := files[f]
		file := strings.TrimSuffix(f, ".go")
		fkey := pkg.PkgPath + "/" + file

		merged, ok := cc.GetFile(fkey)
		if !ok {
			var entries []fileEntry
			for _, id := range ids {
				code, ok := cc.Get(id.Identity)
				if !ok {
					e.log.Warn("symbol missing from code cache, skipping", map[string]interface{}{"id": id.String()})
					continue
				}
				entries = append(entries, fileEntry{loc: repo.GetFileLine(id.Identity), code: code, name: id.Name})
			}
			if len(entries) == 0 {
				continue
			}
			merged = mergeCodes(entries, mainRoot, cargo.ID)
			cc.InsertFile(fkey, merged)
			if err := storage.SaveCodeCache(e.cache, cc); err != nil {
				return err
			}
		}

		pfile += "mod " + naming.EscapeKeyword(file) + ";\n"

		var fp strings.Builder
		for _, ff := range fnames {
			if ff == f {
				continue
			}
			sib := naming.EscapeKeyword(strings.TrimSuffix(ff, ".go"))
			fp.WriteString("use super::" + sib + "::*;\n")
		}
		imps := make([]string, 0, len(merged.Imports))
		for imp := range merged.Imports {
			imps = append(imps, imp)
		}
		sort.Strings(imps)
		for _, imp := range imps {
			fp.WriteString(imp + "\n")
		}
		fp.WriteString("\n")
		fp.WriteString(merged.Code)

		fpath := filepath.Join(pdir, file+".rs")
		e.log.Info("writing file", map[string]interface{}{"path": fpath})
		if err := os.WriteFile(fpath, []byte(fp.String()), 0o644); err != nil {
			return err
		}

		// Re-export the file's public non-method symbols from the package.
		for _, id := range ids {
			if !isMain && id.Exported && !strings.Contains(id.Name, ".") {
				name, _, _ := RustID(repo, id.Identity)
				pfile += "pub use self::" + naming.EscapeKeyword(file) + "::" + name + ";\n"
			}
		}
	}

	appendMod(pkgPath, pfile, &isMain)
	return nil
}

type fileEntry struct {
	loc  uniast.FileLine
	code uniast.Code
	name string
}

// mergeCodes concatenates the symbols of one source file in declaration
// order, tagging each with its origin, and rewrites crate imports against
// the binary root.
func mergeCodes(entries []fileEntry, mainRoot, repoID string) uniast.Code {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].loc.Line < entries[j].loc.Line
	})

	imps := map[string]bool{}
	for _, e := range entries {
		for imp := range e.code.Imports {
			imps[naming.ReplaceImportCrate(imp, mainRoot, repoID)] = true
		}
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString("\n")
		b.WriteString("// " + e.loc.Pkg + "/" + e.loc.File + "#" + e.name + "\n")
		b.WriteString(e.code.Code)
		b.WriteString("\n")
	}

	code := uniast.Code{Code: b.String()}
	if len(imps) > 0 {
		code.Imports = imps
	}
	return code
}

// declareExternalMock registers a mocked crate in external_mocks/mod.rs.
func declareExternalMock(rootDir, crate string) error {
	emDir := filepath.Join(rootDir, ExternalMocksDir)
	if err := os.MkdirAll(emDir, 0o755); err != nil {
		return err
	}
	emFile := filepath.Join(emDir, "mod.rs")
	content, _ := os.ReadFile(emFile)
	decl := "pub mod " + crate + ";\n"
	if strings.Contains(string(content), decl) {
		return nil
	}
	return os.WriteFile(emFile, append(content, decl...), 0o644)
}

// declareMissingMods scans the crate root for directories that carry a
// mod.rs and declares any of them the root file does not mention yet.
func declareMissingMods(rootDir, rootFile string) error {
	isMainLib := filepath.Base(rootFile) == "main.rs"
	content, _ := os.ReadFile(rootFile)
	bs := string(content)

	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return err
	}
	for _, de := range entries {
		if !de.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(rootDir, de.Name(), "mod.rs")); err != nil {
			continue
		}
		decl := "pub mod " + de.Name() + ";\n"
		if isMainLib {
			decl = "mod " + de.Name() + ";\n"
		}
		if !strings.Contains(bs, decl) {
			bs += decl
		}
	}
	return os.WriteFile(rootFile, []byte(bs), 0o644)
}
