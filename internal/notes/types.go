// Package notes holds the bundled topic notes and resolves which note object
// serves a given topic, grade and form.
package notes

import "fmt"

// Subject identifies the curriculum subject a note belongs to.
type Subject string

const (
	SubjectMathematics Subject = "mathematics"
	SubjectChemistry   Subject = "chemistry"
)

// ParseSubject converts a bundle value to a Subject.
func ParseSubject(s string) (Subject, error) {
	switch Subject(s) {
	case SubjectMathematics, SubjectChemistry:
		return Subject(s), nil
	}
	return "", fmt.Errorf("unknown subject %q", s)
}

// TopicNotes is the structured content for one curriculum topic.
// Instances are owned by a Catalog and must not be modified by callers.
type TopicNotes struct {
	ID                 string    `json:"id"`
	Topic              string    `json:"topic"`
	Subject            Subject   `json:"subject"`
	GradeLevel         string    `json:"grade_level"`
	Summary            string    `json:"summary"`
	Sections           []Section `json:"sections"`
	KeyPoints          []string  `json:"key_points"`
	ExamTips           []string  `json:"exam_tips"`
	VisualDescriptions []string  `json:"visual_descriptions"`
}

// Section is one titled block of a note. Content mixes markdown and math.
type Section struct {
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	WorkedExamples []WorkedExample `json:"worked_examples"`
}

// WorkedExample is a solved problem. Steps are in solution order; an
// example with no steps is valid.
type WorkedExample struct {
	Question    string   `json:"question"`
	Steps       []string `json:"steps"`
	FinalAnswer string   `json:"final_answer"`
}
