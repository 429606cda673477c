package editor

import "strings"

// TextFilter matches labels against comma separated terms. A term prefixed
// with '-' excludes matches. With no include terms everything not excluded
// passes. Matching is a case-insensitive substring test.
type TextFilter struct {
	raw      string
	includes []string
	excludes []string
}

// ParseFilter builds a filter from its text form
func ParseFilter(s string) TextFilter {
	f := TextFilter{raw: s}
	for _, term := range strings.Split(s, ",") {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || term == "-" {
			continue
		}
		if strings.HasPrefix(term, "-") {
			f.excludes = append(f.excludes, term[1:])
			continue
		}
		f.includes = append(f.includes, term)
	}
	return f
}

// String returns the text the filter was parsed from
func (f TextFilter) String() string {
	return f.raw
}

// Active reports whether the filter has any terms
func (f TextFilter) Active() bool {
	return len(f.includes)+len(f.excludes) > 0
}

// Pass reports whether label passes the filter
func (f TextFilter) Pass(label string) bool {
	label = strings.ToLower(label)
	for _, ex := range f.excludes {
		if strings.Contains(label, ex) {
			return false
		}
	}
	if len(f.includes) == 0 {
		return true
	}
	for _, in := range f.includes {
		if strings.Contains(label, in) {
			return true
		}
	}
	return false
}
