package uniast

import (
	"sort"
	"strings"
)

// FormatFile flattens a source path into a single file name: every
// non-alphanumeric run except the final extension dot becomes "_", so
// "pkg/sub/svc.go" becomes "pkg_sub_svc.go" and "api.pb.go" becomes
// "api_pb.go".
func FormatFile(path string) string {
	last := -1
	for i, c := range path {
		if !isAlnum(c) {
			last = i
		}
	}
	var b strings.Builder
	b.Grow(len(path))
	for i, c := range path {
		switch {
		case isAlnum(c):
			b.WriteRune(c)
		case i == last:
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isAlnum(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// FileSymbol is one symbol slotted into its (flattened) source file.
type FileSymbol struct {
	Identity
	Kind     NodeType
	Line     int
	Exported bool
}

// ToFiles groups the package's symbols by flattened file name, each group
// sorted by source line so reconstruction preserves declaration order.
func (p *Package) ToFiles() map[string][]FileSymbol {
	files := map[string][]FileSymbol{}
	add := func(id Identity, kind NodeType, file string, line int, exported bool) {
		if file == "" {
			return
		}
		name := FormatFile(file)
		files[name] = append(files[name], FileSymbol{Identity: id, Kind: kind, Line: line, Exported: exported})
	}
	for _, f := range p.Functions {
		add(f.Identity, KindFunc, f.File, f.Line, f.Exported)
	}
	for _, t := range p.Types {
		add(t.Identity, KindType, t.File, t.Line, t.Exported)
	}
	for _, v := range p.Vars {
		add(v.Identity, KindVar, v.File, v.Line, v.IsExported)
	}
	for name := range files {
		syms := files[name]
		sort.Slice(syms, func(i, j int) bool {
			if syms[i].Line != syms[j].Line {
				return syms[i].Line < syms[j].Line
			}
			return syms[i].Name < syms[j].Name
		})
		files[name] = syms
	}
	return files
}
