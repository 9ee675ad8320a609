package color

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

var (
	// ErrUnknownColor is returned by [Table.Resolve] when a code matches
	// neither a short code nor a long name.
	ErrUnknownColor = errors.New("unknown color")

	// ErrInvalidTable is returned by [New] when entries are empty or collide.
	ErrInvalidTable = errors.New("invalid color table")
)

// DefaultCode is the color assigned to wires of a connection that does not
// declare one.
const DefaultCode = "BK"

// Entry is one color of the registry.
type Entry struct {
	ShortCode string `toml:"code" json:"code"`
	LongName  string `toml:"name" json:"name"`
	Value     string `toml:"value" json:"value"`
}

// Table maps short codes and long names to display values.
// The zero value is an empty table; use [Default] or [New].
type Table struct {
	entries []Entry
	byCode  map[string]int
	byName  map[string]int
}

var defaultEntries = []Entry{
	{"WH", "white", "#ffffff"},
	{"BN", "brown", "#a52a2a"},
	{"GN", "green", "#008000"},
	{"YE", "yellow", "#ffff00"},
	{"GY", "grey", "#808080"},
	{"PK", "pink", "#ffc0cb"},
	{"BU", "blue", "#0000ff"},
	{"RD", "red", "#ff0000"},
	{"BK", "black", "#000000"},
	{"VT", "violet", "#ee82ee"},
	{"PU", "purple", "#800080"},
	{"OR", "orange", "#ffa500"},
	{"TQ", "turquoise", "#40e0d0"},
	{"SL", "silver", "#c0c0c0"},
	{"GD", "gold", "#ffd700"},
}

var defaultTable = mustNew(defaultEntries)

// Default returns the built-in 15 color table. The returned table is shared
// and must not be modified; it is safe for concurrent use.
func Default() *Table { return defaultTable }

// New builds a table from entries, preserving their order.
// Returns ErrInvalidTable if any field is empty or a short code or long
// name appears twice.
func New(entries []Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, len(entries)),
		byCode:  make(map[string]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	copy(t.entries, entries)

	for i, e := range t.entries {
		if e.ShortCode == "" || e.LongName == "" || e.Value == "" {
			return nil, fmt.Errorf("%w: entry %d has empty fields", ErrInvalidTable, i)
		}
		if _, dup := t.byCode[e.ShortCode]; dup {
			return nil, fmt.Errorf("%w: duplicate code %q", ErrInvalidTable, e.ShortCode)
		}
		if _, dup := t.byName[e.LongName]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidTable, e.LongName)
		}
		t.byCode[e.ShortCode] = i
		t.byName[e.LongName] = i
	}
	return t, nil
}

func mustNew(entries []Entry) *Table {
	t, err := New(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a table from TOML. The document must contain a [[color]]
// array of tables with code, name and value keys.
func Load(r io.Reader) (*Table, error) {
	var doc struct {
		Colors []Entry `toml:"color"`
	}
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode palette: %w", err)
	}
	if len(doc.Colors) == 0 {
		return nil, fmt.Errorf("%w: no colors defined", ErrInvalidTable)
	}
	return New(doc.Colors)
}

// LoadFile reads a TOML palette from path. See [Load].
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Lookup finds the entry for code, trying short codes before long names.
// legacy reports whether the match was by long name.
func (t *Table) Lookup(code string) (e Entry, legacy bool, ok bool) {
	if i, found := t.byCode[code]; found {
		return t.entries[i], false, true
	}
	if i, found := t.byName[code]; found {
		return t.entries[i], true, true
	}
	return Entry{}, false, false
}

// Resolve returns the display value for code. legacy is true when code was
// matched by long name; the value is still returned. Unknown codes return
// an error wrapping ErrUnknownColor.
func (t *Table) Resolve(code string) (value string, legacy bool, err error) {
	e, legacy, ok := t.Lookup(code)
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownColor, code)
	}
	return e.Value, legacy, nil
}

// IsValid reports whether code is a known short code or long name.
func (t *Table) IsValid(code string) bool {
	_, _, ok := t.Lookup(code)
	return ok
}

// Entries returns a copy of the table's entries in registry order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of colors in the table.
func (t *Table) Len() int { return len(t.entries) }
