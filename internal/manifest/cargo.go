// Package manifest accumulates the Cargo.toml of a generated project: crate
// dependencies merged from oracle toml blocks plus one [[bin]] entry per main
// package.
package manifest

import (
	"sort"
	"strings"

	bstoml "github.com/BurntSushi/toml"
	toml "github.com/pelletier/go-toml/v2"

	"xlate/internal/translate/naming"
)

// Cargo builds the manifest. The ID doubles as the crate name.
type Cargo struct {
	ID   string
	deps map[string]interface{}
	bins map[string]string
}

// NewCargo derives the crate name from the last segment of the repo id.
func NewCargo(repoID string) *Cargo {
	parts := strings.Split(repoID, "/")
	return &Cargo{
		ID:   naming.NormalizeImport(parts[len(parts)-1]),
		deps: map[string]interface{}{},
		bins: map[string]string{},
	}
}

// Dep merges a [dependencies] block emitted by the oracle. Well-formed toml
// is decoded structurally; anything else falls back to line parsing so a
// slightly mangled block still contributes its crates.
func (c *Cargo) Dep(block string) {
	var doc struct {
		Dependencies map[string]interface{} `toml:"dependencies"`
	}
	if _, err := bstoml.Decode(block, &doc); err == nil && len(doc.Dependencies) > 0 {
		for name, spec := range doc.Dependencies {
			c.deps[name] = spec
		}
		return
	}

	for _, line := range strings.Split(block, "\n") {
		name, version, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		version = strings.TrimSpace(version)
		if i := strings.Index(version, "//"); i >= 0 {
			version = strings.TrimSpace(version[:i])
		}
		if name == "" || name == "[dependencies]" {
			continue
		}
		c.deps[name] = strings.Trim(version, `"`)
	}
}

// Undep removes a dependency, used to drop the self-referential crate the
// oracle tends to emit.
func (c *Cargo) Undep(name string) {
	delete(c.deps, name)
}

// Bin registers a [[bin]] target for a main package.
func (c *Cargo) Bin(name, path string) {
	c.bins[name] = path
}

type binEntry struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type packageMeta struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

type document struct {
	Package      packageMeta            `toml:"package"`
	Bin          []binEntry             `toml:"bin,omitempty"`
	Dependencies map[string]interface{} `toml:"dependencies"`
}

// Render serializes the manifest.
func (c *Cargo) Render() (string, error) {
	doc := document{
		Package:      packageMeta{Name: c.ID, Version: "0.1.0", Edition: "2021"},
		Dependencies: map[string]interface{}{},
	}
	for name, spec := range c.deps {
		// crate self-references never belong in the manifest
		if strings.Contains(name, "crate") {
			continue
		}
		doc.Dependencies[name] = spec
	}

	binNames := make([]string, 0, len(c.bins))
	for name := range c.bins {
		binNames = append(binNames, name)
	}
	sort.Strings(binNames)
	for _, name := range binNames {
		p := "src/main.rs"
		if dir := c.bins[name]; dir != "" {
			p = "src/" + dir + "/main.rs"
		}
		doc.Bin = append(doc.Bin, binEntry{Name: name, Path: p})
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
