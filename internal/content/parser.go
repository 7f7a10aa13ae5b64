package content

import (
	"iter"
	"slices"
	"strings"
)

// Parse returns the segments of raw in document order. Segments are produced
// as the scan advances, so a consumer that stops early never pays for the
// rest of the input. The sequence can be ranged over any number of times.
//
// Parse never fails: a math delimiter that is not closed (before the end of
// the line for $, before the end of input for $$) is kept as literal text.
// A dollar sign meant as text must be written \$.
func Parse(raw string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		scan(raw, yield)
	}
}

// ParseAll collects every segment of raw.
func ParseAll(raw string) []Segment {
	return slices.Collect(Parse(raw))
}

func scan(src string, yield func(Segment) bool) {
	var text strings.Builder
	flush := func() bool {
		if text.Len() == 0 {
			return true
		}
		s := text.String()
		text.Reset()
		return yield(Text(s))
	}

	// Once a $$ is found unterminated, no later delimiter can open math.
	literal := false

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src) && src[i+1] == '$':
			text.WriteByte('$')
			i += 2

		case c == '$' && literal:
			text.WriteByte('$')
			i++

		case c == '$' && i+1 < len(src) && src[i+1] == '$':
			end := closeBlock(src, i+2)
			if end < 0 {
				literal = true
				text.WriteString("$$")
				i += 2
				continue
			}
			if !flush() || !yield(BlockMath(unescapeMath(src[i+2:end]))) {
				return
			}
			i = end + 2

		case c == '$':
			end := closeInline(src, i+1)
			if end < 0 {
				text.WriteByte('$')
				i++
				continue
			}
			if !flush() || !yield(InlineMath(unescapeMath(src[i+1:end]))) {
				return
			}
			i = end + 1

		default:
			j := i + 1
			for j < len(src) && src[j] != '$' && src[j] != '\\' {
				j++
			}
			text.WriteString(src[i:j])
			i = j
		}
	}
	flush()
}

// closeInline returns the index of the $ closing inline math opened before
// from, or -1 if the line or input ends first. Escaped characters are skipped.
func closeInline(src string, from int) int {
	for k := from; k < len(src); k++ {
		switch src[k] {
		case '\\':
			k++
		case '\n':
			return -1
		case '$':
			return k
		}
	}
	return -1
}

// closeBlock returns the index of the $$ closing block math, or -1.
func closeBlock(src string, from int) int {
	for k := from; k < len(src); k++ {
		switch src[k] {
		case '\\':
			k++
		case '$':
			if k+1 < len(src) && src[k+1] == '$' {
				return k
			}
		}
	}
	return -1
}

// unescapeMath removes the extra escaping level of authored math: each
// doubled backslash becomes one. Braces and everything else pass through.
func unescapeMath(expr string) string {
	if !strings.Contains(expr, `\\`) {
		return expr
	}
	var b strings.Builder
	b.Grow(len(expr))
	for i := 0; i < len(expr); i++ {
		if expr[i] == '\\' && i+1 < len(expr) && expr[i+1] == '\\' {
			i++
		}
		b.WriteByte(expr[i])
	}
	return b.String()
}
