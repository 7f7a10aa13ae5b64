package notes_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-notes/internal/notes"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := notes.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	if c.Len() != 7 {
		t.Errorf("Len() = %d, want 7", c.Len())
	}
	if c.Version() == "" {
		t.Error("Version() is empty")
	}

	n, ok := c.Note("vectors-o-level")
	if !ok {
		t.Fatal("Note(vectors-o-level) not found")
	}
	if len(n.Sections) != 3 {
		t.Errorf("len(Sections) = %d, want 3", len(n.Sections))
	}
	if n.Subject != notes.SubjectMathematics {
		t.Errorf("Subject = %q, want mathematics", n.Subject)
	}
	if got := n.Sections[2].WorkedExamples; got == nil || len(got) != 0 {
		t.Errorf("Parallel vectors examples = %v, want empty non-nil", got)
	}
}

func TestLoadDir(t *testing.T) {
	dir := setupTestBundles(t)

	c, err := notes.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.General("O-Level", "Sets"); !ok {
		t.Error("General(O-Level, Sets) not found")
	}
	if _, ok := c.Form("Form 1", "Sets"); !ok {
		t.Error("Form(Form 1, Sets) not found")
	}
}

func TestLoadDir_SkipsNonBundleYAML(t *testing.T) {
	dir := setupTestBundles(t)

	// Unrelated YAML in the same tree
	os.WriteFile(filepath.Join(dir, "sets", "assessments.yaml"), []byte(`
topic_id: F1-01
questions:
  - id: Q1
    text: "How many elements are in {1, 2, 3}?"
`), 0o644)
	os.WriteFile(filepath.Join(dir, "list.yaml"), []byte("- a\n- b\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Notes"), 0o644)

	c, err := notes.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (non-bundle YAML should be skipped)", c.Len())
	}
}

func TestLoadDir_EmptyDir(t *testing.T) {
	c, err := notes.LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for empty dir", c.Len())
	}
}

func TestLoadDir_Missing(t *testing.T) {
	if _, err := notes.LoadDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("LoadDir() should fail for a missing directory")
	}
}

func TestLoadDir_Version(t *testing.T) {
	dir := setupTestBundles(t)

	a, err := notes.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	b, err := notes.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if a.Version() != b.Version() {
		t.Errorf("Version() differs between loads of the same tree: %s != %s", a.Version(), b.Version())
	}

	os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(`
notes:
  - topic: Ratios
    subject: mathematics
    grade_level: O-Level
`), 0o644)
	c, err := notes.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if c.Version() == a.Version() {
		t.Error("Version() did not change after adding a bundle")
	}
}

func TestLoadBytes_Problems(t *testing.T) {
	tests := []struct {
		name    string
		bundles []notes.NamedBundle
		want    []string
	}{
		{
			name: "dangling reference",
			bundles: []notes.NamedBundle{{Name: "a.yaml", Data: []byte(`
tables:
  aliases:
    Set Theory: sets-o-level
`)}},
			want: []string{`aliases key "Set Theory" references unknown note "sets-o-level"`},
		},
		{
			name: "duplicate id across bundles",
			bundles: []notes.NamedBundle{
				{Name: "a.yaml", Data: []byte(sampleNote("sets", "Sets"))},
				{Name: "b.yaml", Data: []byte(sampleNote("sets", "Set Theory"))},
			},
			want: []string{`b.yaml: note id "sets" already defined in a.yaml`},
		},
		{
			name: "duplicate table key",
			bundles: []notes.NamedBundle{
				{Name: "a.yaml", Data: []byte(sampleNote("sets-a", "Sets"))},
				{Name: "b.yaml", Data: []byte(sampleNote("sets-b", "Sets"))},
			},
			want: []string{`general[O-Level] key "Sets" already maps to "sets-a"`},
		},
		{
			name: "schema and struct problems together",
			bundles: []notes.NamedBundle{
				{Name: "a.yaml", Data: []byte("notes:\n  - topic: Sets\n    grade_level: O-Level\n")},
				{Name: "b.yaml", Data: []byte("notes:\n  - topic: Sets\n    subject: physics\n    grade_level: O-Level\n")},
			},
			want: []string{"a.yaml", "subject", `b.yaml`, `"oneof"`},
		},
		{
			name:    "not a bundle",
			bundles: []notes.NamedBundle{{Name: "x.yaml", Data: []byte("title: hello\n")}},
			want:    []string{"x.yaml: not a notes bundle"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := notes.LoadBytes(tt.bundles...)
			if err == nil {
				t.Fatal("LoadBytes() error = nil, want validation error")
			}
			if !errors.Is(err, notes.ErrInvalidBundle) {
				t.Errorf("errors.Is(err, ErrInvalidBundle) = false for %v", err)
			}
			var verr *notes.ValidationError
			if !errors.As(err, &verr) || len(verr.Problems()) == 0 {
				t.Fatalf("error %v carries no problems", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestLoadBytes_AllProblemsReported(t *testing.T) {
	_, err := notes.LoadBytes(
		notes.NamedBundle{Name: "a.yaml", Data: []byte(sampleNote("sets", "Sets"))},
		notes.NamedBundle{Name: "b.yaml", Data: []byte(sampleNote("sets", "Sets"))},
		notes.NamedBundle{Name: "c.yaml", Data: []byte("tables:\n  advanced:\n    Sets: missing\n")},
	)
	var verr *notes.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("LoadBytes() error = %v, want ValidationError", err)
	}
	if got := len(verr.Problems()); got != 2 {
		t.Errorf("len(Problems()) = %d, want 2: %v", got, verr.Problems())
	}
}

func TestLoadBytes_VersionSeparatesNameAndData(t *testing.T) {
	note := sampleNote("sets", "Sets")
	a, err := notes.LoadBytes(notes.NamedBundle{Name: "a.yaml", Data: []byte("#\n" + note)})
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	b, err := notes.LoadBytes(notes.NamedBundle{Name: "a.yaml#", Data: []byte("\n" + note)})
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	if a.Version() == b.Version() {
		t.Errorf("Version() = %s for both, want different digests when bytes move from data to name", a.Version())
	}
}

func TestReadBundles(t *testing.T) {
	dir := setupTestBundles(t)
	os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("title: not notes\n"), 0o644)

	bundles, err := notes.ReadBundles(os.DirFS(dir))
	if err != nil {
		t.Fatalf("ReadBundles() error = %v", err)
	}
	if len(bundles) != 1 || bundles[0].Name != "sets/sets.yaml" {
		t.Fatalf("ReadBundles() = %d bundles, want only sets/sets.yaml", len(bundles))
	}

	fromBytes, err := notes.LoadBytes(bundles...)
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	fromDir, err := notes.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if fromBytes.Version() != fromDir.Version() {
		t.Errorf("Version() = %s from bytes, %s from dir", fromBytes.Version(), fromDir.Version())
	}
}

func TestReadBundles_Embedded(t *testing.T) {
	bundles, err := notes.ReadBundles(notes.EmbeddedFS())
	if err != nil {
		t.Fatalf("ReadBundles() error = %v", err)
	}
	var names []string
	for _, b := range bundles {
		names = append(names, b.Name)
	}
	if want := []string{"chemistry.yaml", "mathematics.yaml"}; !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestLoadPostgres_NilPool(t *testing.T) {
	if _, err := notes.LoadPostgres(t.Context(), nil); err == nil {
		t.Error("LoadPostgres(nil) should return error")
	}
}

func sampleNote(id, topic string) string {
	return `notes:
  - id: ` + id + `
    topic: ` + topic + `
    subject: mathematics
    grade_level: O-Level
`
}

func setupTestBundles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	setsDir := filepath.Join(dir, "sets")
	os.MkdirAll(setsDir, 0o755)

	os.WriteFile(filepath.Join(setsDir, "sets.yaml"), []byte(`
notes:
  - id: sets-o-level
    topic: Sets
    subject: mathematics
    grade_level: O-Level
    summary: 'A set is a collection of distinct objects, written $A = \{1, 2, 3\}$.'
    sections:
      - title: Notation
        content: The number of elements is $n(A)$.
  - topic: Sets
    subject: mathematics
    grade_level: O-Level
    form: Form 1
    sections:
      - title: Venn diagrams
        content: Shade $A \cap B$ for the intersection.
`), 0o644)

	return dir
}
