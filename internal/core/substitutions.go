package core

import (
	"fmt"
	"maps"
	"regexp"
)

// Substitutions renames header cells before roles are resolved.
//
// Exact renames are looked up first; if none matches, pattern rules are applied
// in the order they were added, each rewriting the output of the previous one.
// The zero value renames nothing.
type Substitutions struct {
	exact    map[string]string
	patterns []patternRule
}

type patternRule struct {
	re   *regexp.Regexp
	repl string
}

// NoSubstitutions is the identity: header names pass through unchanged.
func NoSubstitutions() Substitutions {
	return Substitutions{}
}

// Rename returns substitutions that replace whole header names.
func Rename(m map[string]string) Substitutions {
	return Substitutions{exact: maps.Clone(m)}
}

// WithRename returns a copy with one more exact rename.
func (s Substitutions) WithRename(from, to string) Substitutions {
	out := s.clone()
	if out.exact == nil {
		out.exact = make(map[string]string)
	}
	out.exact[from] = to
	return out
}

// WithPattern returns a copy with a regular-expression rewrite rule appended.
// repl may reference capture groups ($1, ${name}).
func (s Substitutions) WithPattern(pattern, repl string) (Substitutions, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return s, fmt.Errorf("substitution pattern %q: %w", pattern, err)
	}
	out := s.clone()
	out.patterns = append(out.patterns, patternRule{re: re, repl: repl})
	return out, nil
}

// Merge returns s with every rule of other added after its own.
// Exact renames in other win on conflicting keys.
func (s Substitutions) Merge(other Substitutions) Substitutions {
	out := s.clone()
	for k, v := range other.exact {
		if out.exact == nil {
			out.exact = make(map[string]string)
		}
		out.exact[k] = v
	}
	out.patterns = append(out.patterns, other.patterns...)
	return out
}

// IsTrivial reports whether no rule is configured.
func (s Substitutions) IsTrivial() bool {
	return len(s.exact) == 0 && len(s.patterns) == 0
}

// Apply rewrites a single header name.
func (s Substitutions) Apply(name string) string {
	if to, ok := s.exact[name]; ok {
		return to
	}
	for _, p := range s.patterns {
		name = p.re.ReplaceAllString(name, p.repl)
	}
	return name
}

// ApplyAll rewrites every header cell, returning a new slice.
func (s Substitutions) ApplyAll(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = s.Apply(h)
	}
	return out
}

func (s Substitutions) clone() Substitutions {
	return Substitutions{
		exact:    maps.Clone(s.exact),
		patterns: append([]patternRule(nil), s.patterns...),
	}
}
