package emitter

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// namer maps user variable names to identifiers that are valid in the
// target, distinct from each other and clear of reserved words.
type namer struct {
	reserved map[string]bool
	taken    map[string]bool
	vars     map[string]string
	order    []string
}

func newNamer(reserved []string) *namer {
	n := &namer{
		reserved: make(map[string]bool, len(reserved)),
		taken:    make(map[string]bool),
		vars:     make(map[string]string),
	}
	for _, r := range reserved {
		n.reserved[r] = true
	}
	return n
}

// variable returns the identifier for raw, assigning one on first use.
func (n *namer) variable(raw string) string {
	if id, ok := n.vars[raw]; ok {
		return id
	}
	base := sanitizeIdent(raw)
	id := base
	for i := 2; n.reserved[id] || n.taken[id]; i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}
	n.vars[raw] = id
	n.taken[id] = true
	n.order = append(n.order, id)
	return id
}

// variables returns the assigned identifiers in assignment order.
func (n *namer) variables() []string {
	return append([]string(nil), n.order...)
}

// counter names the loop variable of a repeat block at the given depth.
func (n *namer) counter(depth int) string {
	name := "count"
	if depth > 0 {
		name = fmt.Sprintf("count%d", depth+1)
	}
	for n.taken[name] || n.reserved[name] {
		name += "_"
	}
	return name
}

// sanitizeIdent folds raw to ASCII letters, digits and underscores.
// Accents are stripped through NFKD decomposition; anything else becomes
// an underscore.
func sanitizeIdent(raw string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(raw) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			b.WriteRune(r)
		case unicode.Is(unicode.Mn, r):
		default:
			b.WriteByte('_')
		}
	}
	id := b.String()
	if id == "" {
		return "_"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}
