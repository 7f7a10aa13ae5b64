package notes

import (
	"context"
	"log/slog"
)

const defaultGradeLevel = "O-Level"

var defaultAdvancedGrades = []string{"A-Level"}

// Query identifies the notes a screen asks for. FormLevel is optional.
type Query struct {
	Topic      string
	GradeLevel string
	FormLevel  string
}

// Match is a resolved note and the table it was found in.
type Match struct {
	Notes *TopicNotes
	Table Table
}

// ResolverConfig holds resolver settings.
type ResolverConfig struct {
	DefaultGrade   string   // grade assumed by HasNotes (default "O-Level")
	AdvancedGrades []string // grades served by the advanced table (default ["A-Level"])
}

// Resolver selects the note for a query by probing the catalog tables in a
// fixed order. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	catalog      *Catalog
	defaultGrade string
	advanced     map[string]struct{}
	chain        []probe
}

// probe is one step of the lookup chain. applies decides whether the step
// runs for a query at all.
type probe struct {
	table   Table
	applies func(r *Resolver, q Query) bool
	find    func(c *Catalog, q Query) (*TopicNotes, bool)
}

var probeChain = []probe{
	{
		table:   TableAdvanced,
		applies: func(r *Resolver, q Query) bool { return r.isAdvanced(q.GradeLevel) },
		find:    func(c *Catalog, q Query) (*TopicNotes, bool) { return c.Advanced(q.Topic) },
	},
	{
		table:   TableForm,
		applies: func(r *Resolver, q Query) bool { return !r.isAdvanced(q.GradeLevel) && q.FormLevel != "" },
		find:    func(c *Catalog, q Query) (*TopicNotes, bool) { return c.Form(q.FormLevel, q.Topic) },
	},
	{
		table:   TableGeneral,
		applies: always,
		find:    func(c *Catalog, q Query) (*TopicNotes, bool) { return c.General(q.GradeLevel, q.Topic) },
	},
	{
		table:   TableAlias,
		applies: always,
		find:    func(c *Catalog, q Query) (*TopicNotes, bool) { return c.Alias(q.Topic) },
	},
}

func always(*Resolver, Query) bool { return true }

// NewResolver creates a resolver over a loaded catalog.
func NewResolver(c *Catalog, cfg ResolverConfig) *Resolver {
	grade := cfg.DefaultGrade
	if grade == "" {
		grade = defaultGradeLevel
	}
	grades := cfg.AdvancedGrades
	if len(grades) == 0 {
		grades = defaultAdvancedGrades
	}
	advanced := make(map[string]struct{}, len(grades))
	for _, g := range grades {
		advanced[g] = struct{}{}
	}
	return &Resolver{
		catalog:      c,
		defaultGrade: grade,
		advanced:     advanced,
		chain:        probeChain,
	}
}

// Catalog returns the catalog the resolver reads from.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// DefaultGrade returns the grade level assumed when a caller has none.
func (r *Resolver) DefaultGrade() string {
	return r.defaultGrade
}

// Lookup runs the probe chain and reports which table answered. The
// context is accepted so that slower sources can honour cancellation; the
// catalog lookup itself never blocks.
func (r *Resolver) Lookup(_ context.Context, q Query) (Match, bool) {
	for _, p := range r.chain {
		if !p.applies(r, q) {
			continue
		}
		if n, ok := p.find(r.catalog, q); ok {
			slog.Debug("notes resolved",
				"topic", q.Topic,
				"grade", q.GradeLevel,
				"form", q.FormLevel,
				"table", p.table,
				"note_id", n.ID,
			)
			return Match{Notes: n, Table: p.table}, true
		}
	}
	return Match{}, false
}

// Resolve returns the notes for a query, or false when no table has them.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*TopicNotes, bool) {
	m, ok := r.Lookup(ctx, q)
	return m.Notes, ok
}

// ResolveNotes returns the notes for a topic at a grade and optional form,
// or nil when none exist.
func (r *Resolver) ResolveNotes(topic, gradeLevel, formLevel string) *TopicNotes {
	n, _ := r.Resolve(context.Background(), Query{
		Topic:      topic,
		GradeLevel: gradeLevel,
		FormLevel:  formLevel,
	})
	return n
}

// HasNotes reports whether a topic resolves at the default grade.
func (r *Resolver) HasNotes(topic string) bool {
	return r.ResolveNotes(topic, r.defaultGrade, "") != nil
}

func (r *Resolver) isAdvanced(grade string) bool {
	_, ok := r.advanced[grade]
	return ok
}
