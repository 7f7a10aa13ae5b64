package document

import "sort"

// Expansion tracks which sections of one displayed document are open. A new
// Expansion has only the first section open. It belongs to a single view and
// is not safe for concurrent use.
type Expansion struct {
	open map[int]struct{}
}

// NewExpansion returns the state for a freshly displayed document.
func NewExpansion() *Expansion {
	e := &Expansion{}
	e.Reset()
	return e
}

// Reset returns to the initial state with only section 0 open.
func (e *Expansion) Reset() {
	e.open = map[int]struct{}{0: {}}
}

// Toggle opens a closed section or closes an open one.
func (e *Expansion) Toggle(index int) {
	if _, ok := e.open[index]; ok {
		delete(e.open, index)
		return
	}
	e.open[index] = struct{}{}
}

// IsExpanded reports whether a section is open.
func (e *Expansion) IsExpanded(index int) bool {
	_, ok := e.open[index]
	return ok
}

// Expanded returns the open section indices in ascending order.
func (e *Expansion) Expanded() []int {
	out := make([]int, 0, len(e.open))
	for i := range e.open {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// ExpandAll opens sections 0 through n-1.
func (e *Expansion) ExpandAll(n int) {
	for i := 0; i < n; i++ {
		e.open[i] = struct{}{}
	}
}
