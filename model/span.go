package model

// CharSpan is a half-open character interval [Start, End) within a section text.
// It is character index based rather than token based.
type CharSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsCompletelyOverlapped reports whether other completely encloses this span.
func (c CharSpan) IsCompletelyOverlapped(other CharSpan) bool {
	return c.Start >= other.Start && c.End <= other.End
}

// IsPartiallyOverlapped reports whether other partially overlaps this span,
// i.e. either endpoint of one span falls within the inclusive range of the other.
func (c CharSpan) IsPartiallyOverlapped(other CharSpan) bool {
	return (other.Start <= c.Start && c.Start <= other.End) ||
		(other.Start <= c.End && c.End <= other.End)
}

// Less orders spans by start position.
func (c CharSpan) Less(other CharSpan) bool {
	return c.Start < other.Start
}

// Greater orders spans by end position.
func (c CharSpan) Greater(other CharSpan) bool {
	return c.End > other.End
}
