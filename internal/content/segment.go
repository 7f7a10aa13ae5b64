// Package content splits note text into prose and math segments.
package content

import "fmt"

// Kind tags a Segment.
type Kind int

const (
	KindText Kind = iota
	KindInlineMath
	KindBlockMath
)

var kindNames = [...]string{
	KindText:       "text",
	KindInlineMath: "inline_math",
	KindBlockMath:  "block_math",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown segment kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown segment kind %q", b)
}

// Segment is one renderable piece of parsed content. For math kinds, Value is
// the expression without delimiters and with source escaping removed.
type Segment struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// Text returns a prose segment.
func Text(v string) Segment { return Segment{Kind: KindText, Value: v} }

// InlineMath returns an inline math segment.
func InlineMath(expr string) Segment { return Segment{Kind: KindInlineMath, Value: expr} }

// BlockMath returns a display math segment.
func BlockMath(expr string) Segment { return Segment{Kind: KindBlockMath, Value: expr} }

// IsMath reports whether the segment holds an expression.
func (s Segment) IsMath() bool {
	return s.Kind == KindInlineMath || s.Kind == KindBlockMath
}

func (s Segment) String() string {
	return fmt.Sprintf("%s(%q)", s.Kind, s.Value)
}
