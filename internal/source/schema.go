package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is wrapped by Bind when no alias of a required column is
// present in the header.
var ErrMissingColumn = errors.New("missing required column")

// Column is one logical field of a source table. Aliases are tried in order
// and the first one present in the header wins.
type Column struct {
	Name     string
	Aliases  []string
	Required bool
}

// Schema is the declared column set of one source layout.
type Schema []Column

// Binding maps logical column names to header positions.
type Binding struct {
	index map[string]int
	used  map[string]string
}

// Bind resolves the schema against a header row.
func (s Schema) Bind(header []string) (Binding, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	b := Binding{index: make(map[string]int, len(s)), used: make(map[string]string, len(s))}
	for _, c := range s {
		aliases := c.Aliases
		if len(aliases) == 0 {
			aliases = []string{c.Name}
		}
		found := false
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				b.index[c.Name] = i
				b.used[c.Name] = a
				found = true
				break
			}
		}
		if !found && c.Required {
			return Binding{}, fmt.Errorf("%w %s (accepted: %s)", ErrMissingColumn, c.Name, strings.Join(aliases, ", "))
		}
	}
	return b, nil
}

// Has reports whether the logical column was bound.
func (b Binding) Has(name string) bool {
	_, ok := b.index[name]
	return ok
}

// Header returns the header name that satisfied the logical column.
func (b Binding) Header(name string) string {
	return b.used[name]
}

// Value returns the trimmed cell for a logical column; unbound columns and
// short rows yield "".
func (b Binding) Value(row []string, name string) string {
	i, ok := b.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
