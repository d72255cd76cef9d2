package pipeline

import (
	"fmt"

	"starlift/pkg/models"
)

// Dimension is one append-only natural-name to surrogate-code mapping,
// scoped to a single run. The natural name is the sole identity key,
// compared exactly: strings differing by case or whitespace get
// distinct codes.
type Dimension struct {
	prefix  string
	codes   map[string]string
	entries []models.DimensionEntry
}

// NewDimension creates an empty dimension with the given code prefix
func NewDimension(prefix string) *Dimension {
	return &Dimension{
		prefix: prefix,
		codes:  map[string]string{},
	}
}

// Resolve returns the surrogate code for a natural name, generating a
// new code on first sighting. Codes are 1-based in first-seen order and
// immutable for the rest of the run.
func (d *Dimension) Resolve(name string) string {
	if code, ok := d.codes[name]; ok {
		return code
	}

	code := fmt.Sprintf("%s_%04d", d.prefix, len(d.entries)+1)
	d.codes[name] = code
	d.entries = append(d.entries, models.DimensionEntry{Code: code, Name: name})
	return code
}

// ResolveTyped is Resolve with a secondary type attribute recorded on
// first sighting. Used by award categories only.
func (d *Dimension) ResolveTyped(name string, entryType *string) string {
	if code, ok := d.codes[name]; ok {
		return code
	}

	code := fmt.Sprintf("%s_%04d", d.prefix, len(d.entries)+1)
	d.codes[name] = code
	d.entries = append(d.entries, models.DimensionEntry{Code: code, Name: name, Type: entryType})
	return code
}

// Entries returns the dimension rows in first-seen order
func (d *Dimension) Entries() []models.DimensionEntry {
	return d.entries
}

// Len returns the number of distinct names seen so far
func (d *Dimension) Len() int {
	return len(d.entries)
}
