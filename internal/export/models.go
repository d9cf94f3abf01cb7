// Package export holds the disclosure tree assembled when a user asks what
// data is held about them. The tree is a snapshot built purely from store
// reads; serialization framing (XML, JSON envelopes) is a transport concern.
package export

import (
	"time"

	id "datawipe/pkg/domain"
)

// Field is a single column/value pair on an exported item.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Item is one exported record, flattened to field/value pairs.
type Item struct {
	Fields []Field `json:"fields"`
}

// Section groups the items of one data domain under its label.
type Section struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}

// Warning records a domain whose export failed. Export is best-effort
// disclosure: a failing domain yields an empty section plus one of these,
// never an aborted export.
type Warning struct {
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}

// Tree is the root of a disclosure snapshot, partitioned by domain.
type Tree struct {
	UserID      id.UserID `json:"user_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections"`
	Warnings    []Warning `json:"warnings,omitempty"`
}

// Partial reports whether any domain failed to contribute.
func (t Tree) Partial() bool {
	return len(t.Warnings) > 0
}

// Section returns the named section, if present.
func (t Tree) Section(name string) (Section, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// NewItem builds an item from alternating name/value pairs, keeping adapter
// export code compact.
func NewItem(pairs ...string) Item {
	item := Item{}
	for i := 0; i+1 < len(pairs); i += 2 {
		item.Fields = append(item.Fields, Field{Name: pairs[i], Value: pairs[i+1]})
	}
	return item
}
