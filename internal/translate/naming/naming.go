// Package naming converts Go identifiers and import paths into their Rust
// equivalents: snake_case functions, UpperCamel types, UPPER_SNAKE globals,
// keyword escaping and crate path normalization.
package naming

import (
	"strings"
)

var rustKeywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "crate": true,
	"else": true, "enum": true, "extern": true, "false": true, "fn": true,
	"for": true, "if": true, "impl": true, "in": true, "let": true,
	"loop": true, "match": true, "mod": true, "move": true, "mut": true,
	"pub": true, "ref": true, "return": true, "self": true, "Self": true,
	"static": true, "struct": true, "super": true, "trait": true, "true": true,
	"type": true, "unsafe": true, "use": true, "where": true, "while": true,
	"abstract": true, "alignof": true, "become": true, "box": true, "do": true,
	"final": true, "macro": true, "offsetof": true, "override": true,
	"priv": true, "proc": true, "pure": true, "sizeof": true, "typeof": true,
	"unsized": true, "virtual": true, "yield": true,
}

// EscapeKeyword prefixes reserved words with r# so they stay legal item
// names. Non-keywords pass through unchanged.
func EscapeKeyword(word string) string {
	if rustKeywords[word] {
		return "r#" + word
	}
	return word
}

// CamelToSnake converts CamelCase (including acronym runs like JSONString)
// into snake_case.
func CamelToSnake(camel string) string {
	runes := []rune(camel)
	var b strings.Builder
	for i, ch := range runes {
		if ch >= 'A' && ch <= 'Z' && i > 0 {
			before := runes[i-1]
			after := ' '
			if i < len(runes)-1 {
				after = runes[i+1]
			}
			beforeLowerOrDigit := before >= 'a' && before <= 'z' || before >= '0' && before <= '9'
			afterLower := after >= 'a' && after <= 'z'
			if beforeLowerOrDigit || afterLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(toLower(ch))
	}
	return b.String()
}

// SnakeToCamel converts snake_case into UpperCamelCase.
func SnakeToCamel(snake string) string {
	var b strings.Builder
	upper := true
	for _, ch := range snake {
		if ch == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(toUpper(ch))
			upper = false
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func toLower(ch rune) rune {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

func toUpper(ch rune) rune {
	if ch >= 'a' && ch <= 'z' {
		return ch - ('a' - 'A')
	}
	return ch
}

// NormalizeImport maps a slash path onto a Rust module path: "/" becomes
// "::", anything else non-alphanumeric becomes "_", and each segment is
// keyword-escaped.
func NormalizeImport(path string) string {
	var b strings.Builder
	for _, ch := range path {
		switch {
		case ch == '/':
			b.WriteString("::")
		case ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		default:
			b.WriteByte('_')
		}
	}
	segments := strings.Split(b.String(), "::")
	for i := 1; i < len(segments); i++ {
		segments[i] = EscapeKeyword(segments[i])
	}
	return strings.Join(segments, "::")
}

// ConvertCrate derives the mock crate name for an external module path from
// its last two path segments.
func ConvertCrate(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) >= 2 {
		return NormalizeImport(parts[len(parts)-2] + "#" + parts[len(parts)-1])
	}
	return NormalizeImport(path)
}

// NewImport joins a crate root and a package path into one use path. An
// empty path imports everything under the root.
func NewImport(crateRoot, path string) string {
	p := "*"
	if path != "" {
		p = NormalizeImport(path)
	}
	return NormalizeImport(crateRoot) + "::" + p
}

// ReplaceImportCrate rewrites a use declaration against the binary root:
// paths under root become crate::..., crate:: paths outside the root are
// rewritten to go through the library crate repoID.
func ReplaceImportCrate(imp string, root string, repoID string) string {
	imp = strings.TrimPrefix(imp, "use ")
	imp = strings.ReplaceAll(imp, " ", "")
	if root != "" {
		if strings.HasPrefix(imp, root) {
			imp = "crate" + strings.TrimPrefix(imp, root)
		} else if strings.HasPrefix(imp, "crate::") {
			imp = repoID + strings.TrimPrefix(imp, "crate")
		}
	}
	return "use " + imp
}
