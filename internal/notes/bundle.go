package notes

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/multierr"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidBundle is matched by every validation failure from a loader.
	ErrInvalidBundle = errors.New("invalid notes bundle")

	errNotBundle = errors.New("not a notes bundle")
)

// ValidationError carries every problem found while building a catalog.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string {
	return ErrInvalidBundle.Error() + ": " + e.err.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidBundle
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// Problems returns the individual problems in report order.
func (e *ValidationError) Problems() []error {
	return multierr.Errors(e.err)
}

var validate = validator.New()

var bundleSchema = gojsonschema.NewStringLoader(bundleSchemaJSON)

type bundleFile struct {
	Notes  []noteEntry  `yaml:"notes" validate:"dive"`
	Tables bundleTables `yaml:"tables"`
}

type bundleTables struct {
	General  map[string]map[string]string `yaml:"general"`
	Advanced map[string]string            `yaml:"advanced"`
	Forms    map[string]map[string]string `yaml:"forms"`
	Aliases  map[string]string            `yaml:"aliases"`
}

type noteEntry struct {
	ID                 string         `yaml:"id"`
	Topic              string         `yaml:"topic" validate:"required"`
	Subject            string         `yaml:"subject" validate:"required,oneof=mathematics chemistry"`
	GradeLevel         string         `yaml:"grade_level" validate:"required"`
	Form               string         `yaml:"form"`
	Summary            string         `yaml:"summary"`
	Sections           []sectionEntry `yaml:"sections" validate:"dive"`
	KeyPoints          []string       `yaml:"key_points"`
	ExamTips           []string       `yaml:"exam_tips"`
	VisualDescriptions []string       `yaml:"visual_descriptions"`
}

type sectionEntry struct {
	Title          string         `yaml:"title" validate:"required"`
	Content        string         `yaml:"content"`
	WorkedExamples []exampleEntry `yaml:"worked_examples" validate:"dive"`
}

type exampleEntry struct {
	Question    string   `yaml:"question" validate:"required"`
	Steps       []string `yaml:"steps"`
	FinalAnswer string   `yaml:"final_answer"`
}

// decodeBundle parses and validates one bundle document. YAML that carries
// neither notes nor tables returns errNotBundle.
func decodeBundle(name string, data []byte) (*bundleFile, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: parsing yaml: %w", name, err)
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, errNotBundle
	}
	_, hasNotes := doc["notes"]
	_, hasTables := doc["tables"]
	if !hasNotes && !hasTables {
		return nil, errNotBundle
	}

	result, err := gojsonschema.Validate(bundleSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%s: checking schema: %w", name, err)
	}
	if !result.Valid() {
		var errs error
		for _, re := range result.Errors() {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", name, re.String()))
		}
		return nil, errs
	}

	var bf bundleFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("%s: decoding bundle: %w", name, err)
	}
	if err := validate.Struct(&bf); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		var errs error
		for _, fe := range verrs {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s fails %q", name, fe.Namespace(), fe.Tag()))
		}
		return nil, errs
	}
	return &bf, nil
}

// builder accumulates bundles and freezes them into a Catalog.
type builder struct {
	c        *Catalog
	origin   map[string]string // note id -> bundle name
	problems error
	digest   hash.Hash
	files    int
}

func newBuilder() *builder {
	digest, _ := blake2b.New256(nil)
	return &builder{
		c: &Catalog{
			arena:    make(map[string]*TopicNotes),
			general:  make(map[string]map[string]string),
			advanced: make(map[string]string),
			forms:    make(map[string]map[string]string),
			aliases:  make(map[string]string),
		},
		origin: make(map[string]string),
		digest: digest,
	}
}

// digestField writes p to the version digest behind its length, so moving
// bytes between a name and its data changes the digest.
func (b *builder) digestField(p []byte) {
	b.digest.Write(binary.LittleEndian.AppendUint64(nil, uint64(len(p))))
	b.digest.Write(p)
}

func (b *builder) problem(err error) {
	b.problems = multierr.Append(b.problems, err)
}

// addFile decodes one bundle. It reports whether the data was a bundle.
func (b *builder) addFile(name string, data []byte) bool {
	bf, err := decodeBundle(name, data)
	if errors.Is(err, errNotBundle) {
		return false
	}
	b.digestField([]byte(name))
	b.digestField(data)
	b.files++
	if err != nil {
		b.problem(err)
		return true
	}
	b.add(name, bf)
	return true
}

func (b *builder) add(name string, bf *bundleFile) {
	type pending struct {
		id    string
		entry noteEntry
	}
	var added []pending
	for _, e := range bf.Notes {
		id := e.ID
		if id == "" {
			id = deriveID(e)
		}
		if prev, dup := b.origin[id]; dup {
			b.problem(fmt.Errorf("%s: note id %q already defined in %s", name, id, prev))
			continue
		}
		b.origin[id] = name
		b.c.arena[id] = e.toNotes(id)
		added = append(added, pending{id: id, entry: e})
	}

	for grade, m := range bf.Tables.General {
		for topic, id := range m {
			b.put(name, fmt.Sprintf("general[%s]", grade), b.scope(b.c.general, grade), topic, id)
		}
	}
	for topic, id := range bf.Tables.Advanced {
		b.put(name, "advanced", b.c.advanced, topic, id)
	}
	for form, m := range bf.Tables.Forms {
		for topic, id := range m {
			b.put(name, fmt.Sprintf("forms[%s]", form), b.scope(b.c.forms, form), topic, id)
		}
	}
	for alias, id := range bf.Tables.Aliases {
		b.put(name, "aliases", b.c.aliases, alias, id)
	}

	// Notes that no table of their own bundle mentions are registered under
	// their home key: the form table when a form is given, otherwise the
	// general table of their grade.
	referenced := bf.Tables.referencedIDs()
	for _, p := range added {
		if referenced[p.id] {
			continue
		}
		if p.entry.Form != "" {
			b.put(name, fmt.Sprintf("forms[%s]", p.entry.Form), b.scope(b.c.forms, p.entry.Form), p.entry.Topic, p.id)
			continue
		}
		b.put(name, fmt.Sprintf("general[%s]", p.entry.GradeLevel), b.scope(b.c.general, p.entry.GradeLevel), p.entry.Topic, p.id)
	}
}

func (b *builder) scope(tables map[string]map[string]string, key string) map[string]string {
	m, ok := tables[key]
	if !ok {
		m = make(map[string]string)
		tables[key] = m
	}
	return m
}

func (b *builder) put(name, table string, m map[string]string, key, id string) {
	if key == "" {
		b.problem(fmt.Errorf("%s: %s has an empty key", name, table))
		return
	}
	if prev, dup := m[key]; dup {
		b.problem(fmt.Errorf("%s: %s key %q already maps to %q", name, table, key, prev))
		return
	}
	m[key] = id
}

// build checks that every table entry points into the arena.
func (b *builder) build() (*Catalog, error) {
	check := func(table string, m map[string]string) {
		for key, id := range m {
			if _, ok := b.c.arena[id]; !ok {
				b.problem(fmt.Errorf("%s key %q references unknown note %q", table, key, id))
			}
		}
	}
	for grade, m := range b.c.general {
		check(fmt.Sprintf("general[%s]", grade), m)
	}
	check("advanced", b.c.advanced)
	for form, m := range b.c.forms {
		check(fmt.Sprintf("forms[%s]", form), m)
	}
	check("aliases", b.c.aliases)

	if b.problems != nil {
		return nil, &ValidationError{err: b.problems}
	}
	b.c.version = hex.EncodeToString(b.digest.Sum(nil))
	return b.c, nil
}

func (t bundleTables) referencedIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, m := range t.General {
		for _, id := range m {
			ids[id] = true
		}
	}
	for _, id := range t.Advanced {
		ids[id] = true
	}
	for _, m := range t.Forms {
		for _, id := range m {
			ids[id] = true
		}
	}
	for _, id := range t.Aliases {
		ids[id] = true
	}
	return ids
}

func deriveID(e noteEntry) string {
	parts := []string{e.Topic, e.GradeLevel}
	if e.Form != "" {
		parts = append(parts, e.Form)
	}
	return slug.Make(strings.Join(parts, " "))
}

func (e noteEntry) toNotes(id string) *TopicNotes {
	n := &TopicNotes{
		ID:                 id,
		Topic:              e.Topic,
		Subject:            Subject(e.Subject),
		GradeLevel:         e.GradeLevel,
		Summary:            e.Summary,
		Sections:           make([]Section, 0, len(e.Sections)),
		KeyPoints:          nonNil(e.KeyPoints),
		ExamTips:           nonNil(e.ExamTips),
		VisualDescriptions: nonNil(e.VisualDescriptions),
	}
	for _, s := range e.Sections {
		sec := Section{
			Title:          s.Title,
			Content:        s.Content,
			WorkedExamples: make([]WorkedExample, 0, len(s.WorkedExamples)),
		}
		for _, we := range s.WorkedExamples {
			sec.WorkedExamples = append(sec.WorkedExamples, WorkedExample{
				Question:    we.Question,
				Steps:       nonNil(we.Steps),
				FinalAnswer: we.FinalAnswer,
			})
		}
		n.Sections = append(n.Sections, sec)
	}
	return n
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
