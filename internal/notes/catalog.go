package notes

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Table names a content table in the catalog.
type Table string

const (
	TableGeneral  Table = "general"
	TableAdvanced Table = "advanced"
	TableForm     Table = "form"
	TableAlias    Table = "alias"
)

// Catalog is the frozen set of notes and the tables that index them.
// Every table maps a key to an ID in the arena, so a note referenced from
// several tables exists once. A Catalog is never modified after loading and
// is safe for concurrent use.
type Catalog struct {
	arena    map[string]*TopicNotes
	general  map[string]map[string]string // grade -> topic -> id
	advanced map[string]string            // topic -> id
	forms    map[string]map[string]string // form -> topic -> id
	aliases  map[string]string            // name -> id
	version  string
}

// Len returns the number of canonical notes.
func (c *Catalog) Len() int {
	return len(c.arena)
}

// Version identifies the bundle content the catalog was built from.
func (c *Catalog) Version() string {
	return c.version
}

// Note returns a note by canonical ID.
func (c *Catalog) Note(id string) (*TopicNotes, bool) {
	n, ok := c.arena[id]
	return n, ok
}

// General looks up a topic in the general table for a grade level.
func (c *Catalog) General(grade, topic string) (*TopicNotes, bool) {
	return c.deref(c.general[grade][topic])
}

// Advanced looks up a topic in the advanced-level table.
func (c *Catalog) Advanced(topic string) (*TopicNotes, bool) {
	return c.deref(c.advanced[topic])
}

// Form looks up a topic in the table for one form.
func (c *Catalog) Form(form, topic string) (*TopicNotes, bool) {
	return c.deref(c.forms[form][topic])
}

// Alias looks up a secondary topic name.
func (c *Catalog) Alias(name string) (*TopicNotes, bool) {
	return c.deref(c.aliases[name])
}

func (c *Catalog) deref(id string) (*TopicNotes, bool) {
	if id == "" {
		return nil, false
	}
	n, ok := c.arena[id]
	return n, ok
}

// IndexEntry is one addressable key in the catalog.
type IndexEntry struct {
	Table   Table   `json:"table"`
	Scope   string  `json:"scope,omitempty"` // grade for general, form for form tables
	Topic   string  `json:"topic"`
	NoteID  string  `json:"note_id"`
	Subject Subject `json:"subject"`
}

// Index lists every table key. Entries are grouped by table, then ordered by
// scope label in natural order ("Form 2" before "Form 10") and by topic name.
func (c *Catalog) Index() []IndexEntry {
	var entries []IndexEntry
	add := func(t Table, scope string, m map[string]string) {
		for topic, id := range m {
			entries = append(entries, IndexEntry{
				Table:   t,
				Scope:   scope,
				Topic:   topic,
				NoteID:  id,
				Subject: c.arena[id].Subject,
			})
		}
	}
	for grade, m := range c.general {
		add(TableGeneral, grade, m)
	}
	add(TableAdvanced, "", c.advanced)
	for form, m := range c.forms {
		add(TableForm, form, m)
	}
	add(TableAlias, "", c.aliases)

	order := map[Table]int{TableGeneral: 0, TableAdvanced: 1, TableForm: 2, TableAlias: 3}
	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Table != b.Table {
			return order[a.Table] < order[b.Table]
		}
		if a.Scope != b.Scope {
			return natural.Less(a.Scope, b.Scope)
		}
		if r := col.CompareString(a.Topic, b.Topic); r != 0 {
			return r < 0
		}
		return strings.Compare(a.Topic, b.Topic) < 0
	})
	return entries
}

// Notes returns every canonical note ordered by ID.
func (c *Catalog) Notes() []*TopicNotes {
	ids := make([]string, 0, len(c.arena))
	for id := range c.arena {
		ids = append(ids, id)
	}
	sort.Sort(natural.StringSlice(ids))
	out := make([]*TopicNotes, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.arena[id])
	}
	return out
}
