// Package rustitem extracts a single named item out of generated Rust source
// using a tree-sitter parse. The generator often wraps the wanted item in
// extra prose, sibling items or an impl block, so extraction matches on both
// name and syntactic kind and collects use declarations on the side.
package rustitem

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"xlate/internal/uniast"
)

// Want describes the item to pull out of the parse.
type Want struct {
	// Name is the expected Rust item name.
	Name string
	// Kind is the symbol kind the item must have.
	Kind uniast.NodeType
	// ImplType, when set, is the receiver type whose impl block may carry the
	// item as a method.
	ImplType string
	// NewType, when set, accepts `impl NewType { fn new() }` as a match for a
	// new_X constructor.
	NewType string
}

// Result is the extracted item plus every use declaration seen in the parse.
type Result struct {
	Code    string
	Imports []string
	Found   bool
	// KindMismatch is set when an item matched by name but carried the wrong
	// syntactic kind, which drives the one-shot retry.
	KindMismatch bool
}

// Extract parses source and looks for the wanted item among the top-level
// items. Use declarations are always collected, found or not.
func Extract(ctx context.Context, source string, want Want) (Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, []byte(source))
	if err != nil {
		return Result{}, err
	}
	defer tree.Close()

	src := []byte(source)
	root := tree.RootNode()
	var res Result

	for i := 0; i < int(root.NamedChildCount()); i++ {
		item := root.NamedChild(i)
		if item.Type() == "use_declaration" {
			res.Imports = append(res.Imports, item.Content(src))
			continue
		}
		if res.Found {
			continue
		}
		code, found, mismatch := matchItem(item, src, want)
		if found {
			res.Code = code
			res.Found = true
		}
		res.KindMismatch = res.KindMismatch || mismatch
	}
	return res, nil
}

func matchItem(item *sitter.Node, src []byte, want Want) (code string, found, mismatch bool) {
	switch item.Type() {
	case "function_item":
		if nodeName(item, src) == want.Name {
			if want.Kind == uniast.KindFunc {
				return item.Content(src), true, false
			}
			return "", false, true
		}

	case "impl_item":
		return matchImpl(item, src, want)

	case "struct_item", "enum_item", "union_item", "type_item", "trait_item":
		if nodeName(item, src) == want.Name {
			if want.Kind == uniast.KindType {
				return item.Content(src), true, false
			}
			return "", false, true
		}

	case "static_item", "const_item":
		if nodeName(item, src) == want.Name {
			if want.Kind == uniast.KindVar {
				return item.Content(src), true, false
			}
			return "", false, true
		}

	case "macro_invocation", "macro_definition":
		return matchMacro(item, src, want)
	}
	return "", false, false
}

// matchImpl keeps only the matching method out of an impl block for the
// wanted receiver type (or the new_X constructor type).
func matchImpl(item *sitter.Node, src []byte, want Want) (string, bool, bool) {
	typeNode := item.ChildByFieldName("type")
	if typeNode == nil {
		return "", false, false
	}
	implType := lastPathSegment(typeNode.Content(src))
	if implType != want.ImplType && (want.NewType == "" || implType != want.NewType) {
		return "", false, false
	}

	body := item.ChildByFieldName("body")
	if body == nil {
		return "", false, false
	}
	mismatch := false
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() != "function_item" {
			continue
		}
		name := nodeName(member, src)
		if name != want.Name && !(want.NewType != "" && name == "new") {
			continue
		}
		if want.Kind != uniast.KindFunc {
			mismatch = true
			continue
		}
		// Rebuild the impl with only the matched method.
		var b strings.Builder
		b.WriteString("impl ")
		if generics := item.ChildByFieldName("type_parameters"); generics != nil {
			b.WriteString(generics.Content(src))
			b.WriteByte(' ')
		}
		if trait := item.ChildByFieldName("trait"); trait != nil {
			b.WriteString(trait.Content(src))
			b.WriteString(" for ")
		}
		b.WriteString(typeNode.Content(src))
		b.WriteString(" {\n")
		b.WriteString(member.Content(src))
		b.WriteString("\n}")
		return b.String(), true, false
	}
	return "", false, mismatch
}

// matchMacro accepts a macro whose token stream mentions the wanted name,
// plus the lazy_static special case for init functions.
func matchMacro(item *sitter.Node, src []byte, want Want) (string, bool, bool) {
	content := item.Content(src)
	if want.Name == "init" && strings.Contains(content, "lazy_static") {
		return content, true, false
	}
	if macroMentions(item, src, want.Name) {
		return content, true, false
	}
	return "", false, false
}

func macroMentions(item *sitter.Node, src []byte, name string) bool {
	var walk func(n *sitter.Node) bool
	walk = func(n *sitter.Node) bool {
		if n.Type() == "identifier" && n.Content(src) == name {
			return true
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if walk(n.NamedChild(i)) {
				return true
			}
		}
		return false
	}
	body := item.ChildByFieldName("arguments")
	if body == nil {
		return false
	}
	return walk(body)
}

func nodeName(item *sitter.Node, src []byte) string {
	name := item.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(src)
}

func lastPathSegment(typ string) string {
	typ = strings.TrimSpace(typ)
	if i := strings.LastIndex(typ, "::"); i >= 0 {
		typ = typ[i+2:]
	}
	// Drop generic arguments.
	if i := strings.Index(typ, "<"); i >= 0 {
		typ = typ[:i]
	}
	return typ
}
