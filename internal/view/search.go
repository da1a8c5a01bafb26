package view

// SortDir is the direction of a sort. The zero value is Desc.
type SortDir int

const (
	Desc SortDir = iota
	Asc
)

// Toggle flips the direction.
func (d SortDir) Toggle() SortDir {
	if d == Asc {
		return Desc
	}
	return Asc
}

func (d SortDir) String() string {
	if d == Asc {
		return "asc"
	}
	return "desc"
}

// SortSpec names a column index and a direction.
type SortSpec struct {
	Col int
	Dir SortDir
}

// SearchState is the filter pattern and sort order of one view.
type SearchState struct {
	// Pattern is nil when no filter is active.
	Pattern *string
	Sort    *SortSpec
	// MaxCols bounds column navigation.
	MaxCols int
}

// NewSearchState returns an unfiltered, unsorted state over maxCols columns.
func NewSearchState(maxCols int) SearchState {
	return SearchState{MaxCols: maxCols}
}

// PatternText returns the pattern or an empty string.
func (s SearchState) PatternText() string {
	if s.Pattern == nil {
		return ""
	}
	return *s.Pattern
}

// SetPattern replaces the pattern; blank input clears it.
func (s *SearchState) SetPattern(p *string) {
	if p == nil || *p == "" {
		s.Pattern = nil
		return
	}
	v := *p
	s.Pattern = &v
}

// SortRev toggles the direction of the active sort.
func (s *SearchState) SortRev() {
	if s.Sort != nil {
		s.Sort.Dir = s.Sort.Dir.Toggle()
	}
}

// SortNext moves the sort to the next column, wrapping around. Without an
// active sort it starts at the first column, descending.
func (s *SearchState) SortNext() {
	if s.MaxCols == 0 {
		return
	}
	if s.Sort != nil {
		s.Sort.Col = (s.Sort.Col + 1) % s.MaxCols
		return
	}
	s.Sort = &SortSpec{Col: 0, Dir: Desc}
}

// SortPrev moves the sort to the previous column, wrapping around. Without an
// active sort it starts at the last column, ascending.
func (s *SearchState) SortPrev() {
	if s.MaxCols == 0 {
		return
	}
	if s.Sort != nil {
		s.Sort.Col = (s.Sort.Col + s.MaxCols - 1) % s.MaxCols
		return
	}
	s.Sort = &SortSpec{Col: s.MaxCols - 1, Dir: Asc}
}

// ClearSort drops the active sort so rows keep insertion order.
func (s *SearchState) ClearSort() {
	s.Sort = nil
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s SearchState) Clone() SearchState {
	out := SearchState{MaxCols: s.MaxCols}
	if s.Pattern != nil {
		p := *s.Pattern
		out.Pattern = &p
	}
	if s.Sort != nil {
		sk := *s.Sort
		out.Sort = &sk
	}
	return out
}
