package file

import (
	"fmt"

	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
	"github.com/SciQLop/cdfgo/record"
)

// Entry is one attribute entry: a typed cell plus its entry number.
// Global attribute entries are numbered by position; variable attribute
// entries are numbered by the variable they annotate.
type Entry struct {
	Number int32
	Data   Data
}

// Attribute is a named, scoped, ordered sequence of entries. Entry numbers
// are unique within an attribute but need not be contiguous.
type Attribute struct {
	name    string
	scope   format.Scope
	entries []Entry
}

// NewAttribute creates an empty attribute.
//
// Parameters:
//   - name: attribute name, at most 256 bytes
//   - scope: format.GlobalScope or format.VariableScope
func NewAttribute(name string, scope format.Scope) (*Attribute, error) {
	if name == "" || !record.ValidName(name) {
		return nil, fmt.Errorf("%w: attribute name %q", errs.ErrInvalidName, name)
	}

	return &Attribute{name: name, scope: scope}, nil
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.name
}

// Scope returns the attribute scope.
func (a *Attribute) Scope() format.Scope {
	return a.scope
}

// Len returns the number of entries.
func (a *Attribute) Len() int {
	return len(a.entries)
}

// Entry returns the entry at position i in insertion order.
// It panics if i is out of range.
func (a *Attribute) Entry(i int) Entry {
	return a.entries[i]
}

// Entries returns the entries in insertion order. The slice is shared.
func (a *Attribute) Entries() []Entry {
	return a.entries
}

// Get returns the entry with the given entry number.
func (a *Attribute) Get(number int32) (Data, bool) {
	for i := range a.entries {
		if a.entries[i].Number == number {
			return a.entries[i].Data, true
		}
	}

	return Data{}, false
}

// Append adds an entry numbered one past the current maximum.
func (a *Attribute) Append(d Data) {
	number := int32(0)
	for i := range a.entries {
		if a.entries[i].Number >= number {
			number = a.entries[i].Number + 1
		}
	}

	a.entries = append(a.entries, Entry{Number: number, Data: d})
}

// Set adds an entry with an explicit number, replacing an existing entry
// with the same number in place.
func (a *Attribute) Set(number int32, d Data) {
	for i := range a.entries {
		if a.entries[i].Number == number {
			a.entries[i].Data = d
			return
		}
	}

	a.entries = append(a.entries, Entry{Number: number, Data: d})
}

// Remove deletes the entry with the given number, reporting whether one
// existed.
func (a *Attribute) Remove(number int32) bool {
	for i := range a.entries {
		if a.entries[i].Number == number {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return true
		}
	}

	return false
}

// MaxEntry returns the highest entry number, or -1 when empty.
func (a *Attribute) MaxEntry() int32 {
	maxEntry := int32(-1)
	for i := range a.entries {
		if a.entries[i].Number > maxEntry {
			maxEntry = a.entries[i].Number
		}
	}

	return maxEntry
}

// Equal reports whether two attributes match by name, scope and entries.
func (a *Attribute) Equal(other *Attribute) bool {
	if a.name != other.name || a.scope != other.scope || len(a.entries) != len(other.entries) {
		return false
	}

	for i := range a.entries {
		if a.entries[i].Number != other.entries[i].Number {
			return false
		}
		if !a.entries[i].Data.Equal(other.entries[i].Data) {
			return false
		}
	}

	return true
}
