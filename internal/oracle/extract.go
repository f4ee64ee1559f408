package oracle

import (
	"strings"

	xerrors "xlate/internal/errors"
)

// ExtractCode pulls the generated Rust source and the optional toml
// dependency block out of a fenced completion. With biggest set only the
// largest rust block is kept, otherwise all rust blocks are concatenated.
func ExtractCode(data string, biggest bool) (code string, deps string, err error) {
	segments := strings.Split(data, "```")
	if len(segments) < 2 {
		return "", "", xerrors.Newf(xerrors.ExtractFailed, "no fenced code block in completion")
	}

	for i := 1; i < len(segments); i++ {
		seg := segments[i]
		switch {
		case strings.Contains(seg, "toml\n") && strings.Contains(seg, "[dependencies]"):
			deps = strings.TrimPrefix(seg, "toml\n")
		case strings.HasPrefix(seg, "rust"):
			block := strings.TrimPrefix(seg, "rust")
			if biggest {
				if len(block) > len(code) {
					code = block
				}
			} else {
				code += block
			}
		}
	}

	if strings.TrimSpace(code) == "" {
		return "", "", xerrors.Newf(xerrors.ExtractFailed, "no rust block in completion")
	}
	return code, deps, nil
}
