package extractor

import (
	"fmt"
	"regexp"
)

// CompilePatterns compiles --match/--exclude expressions, prefixing (?i) when
// ignoreCase is set.
func CompilePatterns(patterns []string, ignoreCase bool) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for i, pattern := range patterns {
		expr := pattern
		if ignoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern #%d (%q): %w", ErrInvalidConfig, i+1, pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Filtered reports whether any filter is configured.
func (c Config) Filtered() bool {
	return len(c.MatchPatterns) > 0 || len(c.ExcludePatterns) > 0
}

// ShouldPrint applies the filters to a match: any exclude pattern rejects it,
// otherwise at least one match pattern must hit when any are configured.
func (c Config) ShouldPrint(m Match) bool {
	if !c.Filtered() {
		return true
	}
	text := m.String()
	for _, re := range c.ExcludePatterns {
		if re.MatchString(text) {
			return false
		}
	}
	if len(c.MatchPatterns) == 0 {
		return true
	}
	for _, re := range c.MatchPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
