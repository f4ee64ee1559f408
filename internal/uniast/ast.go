// Package uniast holds the language-independent symbol graph model: a
// Repository of modules, packages and symbols as emitted by the external
// parser, plus the dependency/reference graph derived from it.
package uniast

import (
	"fmt"
	"strings"
)

// Identity uniquely names a function, type or variable as the triple
// (module path, package path, unqualified name). Method names are
// "Type.Method".
type Identity struct {
	ModPath string `json:"ModPath"`
	PkgPath string `json:"PkgPath"`
	Name    string `json:"Name"`
}

// String serializes the identity as "{module}?{package}#{name}".
func (i Identity) String() string {
	return fmt.Sprintf("%s?%s#%s", i.ModPath, i.PkgPath, i.Name)
}

// ParseIdentity parses the "{module}?{package}#{name}" form back into an
// Identity. The inverse of String for every identity.
func ParseIdentity(s string) (Identity, error) {
	mod, rest, ok := strings.Cut(s, "?")
	if !ok {
		return Identity{}, fmt.Errorf("invalid identity %q: missing '?'", s)
	}
	pkg, name, ok := strings.Cut(rest, "#")
	if !ok {
		return Identity{}, fmt.Errorf("invalid identity %q: missing '#'", s)
	}
	return Identity{ModPath: mod, PkgPath: pkg, Name: name}, nil
}

// Inside reports whether the identity belongs to the repository being
// processed. External symbols carry a versioned module path ("mod@v1.2.3")
// or no module path at all.
func (i Identity) Inside() bool {
	return i.ModPath != "" && !strings.Contains(i.ModPath, "@")
}

// Receiver describes the method target of a function.
type Receiver struct {
	IsPointer bool     `json:"IsPointer"`
	Type      Identity `json:"Type"`
}

// Function is a parsed function or method.
type Function struct {
	Identity
	File              string  `json:"File"`
	Line              int     `json:"Line"`
	Exported          bool    `json:"Exported"`
	IsMethod          bool    `json:"IsMethod,omitempty"`
	IsInterfaceMethod bool    `json:"IsInterfaceMethod,omitempty"`
	Content           string  `json:"Content"`
	Receiver          *Receiver  `json:"Receiver,omitempty"`
	Params            []Identity `json:"Params,omitempty"`
	Results           []Identity `json:"Results,omitempty"`
	FunctionCalls     []Identity `json:"FunctionCalls,omitempty"`
	MethodCalls       []Identity `json:"MethodCalls,omitempty"`
	Types             []Identity `json:"Types,omitempty"`
	GlobalVars        []Identity `json:"GlobalVars,omitempty"`

	// CompressData is the natural-language summary. Empty means "not yet
	// computed"; traversal never recomputes a non-empty one.
	CompressData string `json:"compress_data,omitempty"`
}

// MergeWith replaces every structural field with the incoming parse while
// preserving an already-computed summary.
func (f *Function) MergeWith(other *Function) {
	compress := f.CompressData
	*f = *other
	f.CompressData = compress
}

// Struct is a parsed type declaration (struct, interface, alias, enum...).
type Struct struct {
	Identity
	File         string              `json:"File"`
	Line         int                 `json:"Line"`
	Exported     bool                `json:"Exported"`
	TypeKind     string              `json:"TypeKind"`
	Content      string              `json:"Content"`
	SubStruct    []Identity          `json:"SubStruct,omitempty"`
	InlineStruct []Identity          `json:"InlineStruct,omitempty"`
	Methods      map[string]Identity `json:"Methods,omitempty"`

	CompressData string `json:"compress_data,omitempty"`
}

// MergeWith replaces structural fields, preserving the summary.
func (s *Struct) MergeWith(other *Struct) {
	compress := s.CompressData
	*s = *other
	s.CompressData = compress
}

// Variant is a parsed global variable or constant.
type Variant struct {
	Identity
	File       string    `json:"File"`
	Line       int       `json:"Line"`
	IsExported bool      `json:"IsExported"`
	IsConst    bool      `json:"IsConst"`
	IsPointer  bool      `json:"IsPointer"`
	Type       *Identity `json:"Type,omitempty"`
	Content    string    `json:"Content"`

	CompressData string `json:"compress_data,omitempty"`
}

// MergeWith replaces structural fields, preserving the summary.
func (v *Variant) MergeWith(other *Variant) {
	compress := v.CompressData
	*v = *other
	v.CompressData = compress
}

// Package owns the symbols of one source package.
type Package struct {
	PkgPath   string               `json:"PkgPath"`
	IsMain    bool                 `json:"IsMain,omitempty"`
	Functions map[string]*Function `json:"Functions"`
	Types     map[string]*Struct   `json:"Types"`
	Vars      map[string]*Variant  `json:"Vars"`

	CompressData string `json:"compress_data,omitempty"`
}

// MergeWith deep-merges another parse of the same package.
func (p *Package) MergeWith(other *Package) {
	p.PkgPath = other.PkgPath
	p.IsMain = other.IsMain
	if p.Functions == nil {
		p.Functions = map[string]*Function{}
	}
	if p.Types == nil {
		p.Types = map[string]*Struct{}
	}
	if p.Vars == nil {
		p.Vars = map[string]*Variant{}
	}
	for name, f := range other.Functions {
		if old, ok := p.Functions[name]; ok {
			old.MergeWith(f)
		} else {
			p.Functions[name] = f
		}
	}
	for name, t := range other.Types {
		if old, ok := p.Types[name]; ok {
			old.MergeWith(t)
		} else {
			p.Types[name] = t
		}
	}
	for name, v := range other.Vars {
		if old, ok := p.Vars[name]; ok {
			old.MergeWith(v)
		} else {
			p.Vars[name] = v
		}
	}
}

// Module is one build unit of the repository. An empty Dir marks an external
// module kept only for symbol lookup.
type Module struct {
	Name         string              `json:"Name"`
	Dir          string              `json:"Dir"`
	Language     string              `json:"Language,omitempty"`
	Dependencies map[string]string   `json:"Dependencies,omitempty"`
	Packages     map[string]*Package `json:"Packages"`

	CompressData string `json:"compress_data,omitempty"`
}

// External reports whether the module is lookup-only.
func (m *Module) External() bool {
	return m.Dir == ""
}

// Repository is the top-level owner of all modules plus the derived symbol
// graph. Once built, the Graph is the single source of truth for traversal.
type Repository struct {
	ID      string             `json:"id,omitempty"`
	Modules map[string]*Module `json:"Modules"`
	Graph   map[string]*Node   `json:"Graph,omitempty"`
}

// GetFunction returns the function named by id, if present.
func (r *Repository) GetFunction(id Identity) *Function {
	if m, ok := r.Modules[id.ModPath]; ok {
		if p, ok := m.Packages[id.PkgPath]; ok {
			return p.Functions[id.Name]
		}
	}
	return nil
}

// GetType returns the type named by id, if present.
func (r *Repository) GetType(id Identity) *Struct {
	if m, ok := r.Modules[id.ModPath]; ok {
		if p, ok := m.Packages[id.PkgPath]; ok {
			return p.Types[id.Name]
		}
	}
	return nil
}

// GetVar returns the global variable named by id, if present.
func (r *Repository) GetVar(id Identity) *Variant {
	if m, ok := r.Modules[id.ModPath]; ok {
		if p, ok := m.Packages[id.PkgPath]; ok {
			return p.Vars[id.Name]
		}
	}
	return nil
}

// GetPackage returns the module and package owning id.
func (r *Repository) GetPackage(id Identity) (*Module, *Package) {
	if m, ok := r.Modules[id.ModPath]; ok {
		if p, ok := m.Packages[id.PkgPath]; ok {
			return m, p
		}
	}
	return nil, nil
}

// GetIdentityContent returns the raw source text of the symbol named by id.
func (r *Repository) GetIdentityContent(id Identity) (string, bool) {
	if f := r.GetFunction(id); f != nil {
		return f.Content, true
	}
	if t := r.GetType(id); t != nil {
		return t.Content, true
	}
	if v := r.GetVar(id); v != nil {
		return v.Content, true
	}
	return "", false
}

// Contains reports whether id names a module-local function or type. The
// traversal engines use it to decide between recursing and treating the
// symbol as opaque.
func (r *Repository) Contains(id Identity) bool {
	if m, ok := r.Modules[id.ModPath]; ok {
		if p, ok := m.Packages[id.PkgPath]; ok {
			if _, ok := p.Functions[id.Name]; ok {
				return true
			}
			if _, ok := p.Types[id.Name]; ok {
				return true
			}
		}
	}
	return false
}

// IsExported reports whether the symbol named by id is exported.
func (r *Repository) IsExported(id Identity) bool {
	if f := r.GetFunction(id); f != nil {
		return f.Exported
	}
	if t := r.GetType(id); t != nil {
		return t.Exported
	}
	if v := r.GetVar(id); v != nil {
		return v.IsExported
	}
	return false
}

// GetKind classifies id by looking it up in the structural maps.
func (r *Repository) GetKind(id Identity) NodeType {
	if f := r.GetFunction(id); f != nil {
		return KindFunc
	} else if t := r.GetType(id); t != nil {
		return KindType
	} else if v := r.GetVar(id); v != nil {
		return KindVar
	}
	return KindUnknown
}

// FileLine locates a symbol in its original source.
type FileLine struct {
	Pkg  string
	File string
	Line int
}

// GetFileLine returns the source location of id, or a zero FileLine when the
// symbol is unknown.
func (r *Repository) GetFileLine(id Identity) FileLine {
	if f := r.GetFunction(id); f != nil {
		return FileLine{Pkg: id.PkgPath, File: f.File, Line: f.Line}
	}
	if t := r.GetType(id); t != nil {
		return FileLine{Pkg: id.PkgPath, File: t.File, Line: t.Line}
	}
	if v := r.GetVar(id); v != nil {
		return FileLine{Pkg: id.PkgPath, File: v.File, Line: v.Line}
	}
	return FileLine{}
}

// InsideMainPkg returns the package path of the "main" package that pkgPath
// belongs to, when there is one in the module.
func (r *Repository) InsideMainPkg(modPath, pkgPath string) (string, bool) {
	if m, ok := r.Modules[modPath]; ok {
		for name, p := range m.Packages {
			if p.IsMain && strings.HasPrefix(pkgPath, name) {
				return p.PkgPath, true
			}
		}
	}
	return "", false
}

// MergeWith deep-merges another parse of the same repository: structural data
// is replaced by the incoming parse, computed summaries are preserved, and
// module-level dir/dependency metadata is always taken from the newer parse.
// The graph is replaced wholesale and should be rebuilt when absent.
func (r *Repository) MergeWith(other *Repository) {
	if r.Modules == nil {
		r.Modules = map[string]*Module{}
	}
	for modName, om := range other.Modules {
		sm, ok := r.Modules[modName]
		if !ok {
			r.Modules[modName] = om
			continue
		}
		for pkgName, op := range om.Packages {
			if sp, ok := sm.Packages[pkgName]; ok {
				sp.MergeWith(op)
			} else {
				sm.Packages[pkgName] = op
			}
		}
		sm.Name = om.Name
		sm.Dir = om.Dir
		sm.Language = om.Language
		sm.Dependencies = om.Dependencies
	}
	r.Graph = other.Graph
}
