package expression

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/modkit/brickflow/internal/fault"
)

// segment is one access in a parsed variable path.
type segment struct {
	key      string
	index    int
	isIndex  bool
	optional bool
}

func (s segment) String() string {
	if s.isIndex {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.key
}

// parsePath splits a variable reference like `@input.users[0]?.name` into
// segments. Supported accessors: `.name`, `["quoted key"]`, `[0]`, each
// optionally preceded by `?` to make the access optional-chaining.
func parsePath(path string) ([]segment, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty variable path")
	}

	var segs []segment
	i := 0
	optional := false

	readIdent := func() string {
		start := i
		for i < len(path) && path[i] != '.' && path[i] != '[' && path[i] != '?' {
			i++
		}
		return path[start:i]
	}

	// Leading segment is a bare identifier (usually "@input", "@options",
	// or an output key reference).
	first := readIdent()
	if first == "" {
		return nil, fmt.Errorf("variable path %q must start with an identifier", path)
	}
	segs = append(segs, segment{key: first})

	for i < len(path) {
		switch path[i] {
		case '?':
			i++
			optional = true
		case '.':
			i++
			ident := readIdent()
			if ident == "" {
				return nil, fmt.Errorf("variable path %q has an empty segment", path)
			}
			segs = append(segs, segment{key: ident, optional: optional})
			optional = false
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("variable path %q has an unterminated bracket", path)
			}
			inner := path[i+1 : i+end]
			i += end + 1
			if len(inner) >= 2 && (inner[0] == '"' || inner[0] == '\'') {
				quote := inner[0]
				if inner[len(inner)-1] != quote {
					return nil, fmt.Errorf("variable path %q has a mismatched quote", path)
				}
				segs = append(segs, segment{key: inner[1 : len(inner)-1], optional: optional})
			} else {
				idx, err := strconv.Atoi(inner)
				if err != nil {
					return nil, fmt.Errorf("variable path %q has a non-numeric index %q", path, inner)
				}
				segs = append(segs, segment{index: idx, isIndex: true, optional: optional})
			}
			optional = false
		default:
			return nil, fmt.Errorf("variable path %q has unexpected character %q", path, path[i])
		}
	}

	return segs, nil
}

// lookupPath walks a context object along a parsed path. A missing terminal
// segment yields nil. Descending through a missing or non-container
// intermediate is a business error unless the access is marked optional, in
// which case the whole lookup short-circuits to nil.
func lookupPath(ectx map[string]any, path string) (any, error) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, fault.Businessf("invalid variable reference: %w", err)
	}

	var current any = ectx
	for i, seg := range segs {
		next, found := access(current, seg)
		if found {
			current = next
			continue
		}
		// Terminal misses are nil. An intermediate miss fails loudly
		// unless the next accessor is optional: `a?.b` tolerates a
		// missing `a`, the same way optional chaining does elsewhere.
		if i == len(segs)-1 || segs[i+1].optional {
			return nil, nil
		}
		return nil, fault.Businessf("variable %q has no value at %q", path, seg.String())
	}
	return current, nil
}

// access performs one accessor step against a value.
func access(value any, seg segment) (any, bool) {
	if seg.isIndex {
		list, ok := value.([]any)
		if !ok || seg.index < 0 || seg.index >= len(list) {
			return nil, false
		}
		return list[seg.index], true
	}

	switch m := value.(type) {
	case map[string]any:
		v, ok := m[seg.key]
		return v, ok
	case map[string]string:
		v, ok := m[seg.key]
		return v, ok
	default:
		return nil, false
	}
}
