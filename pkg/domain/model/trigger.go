package model

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ryanuber/go-glob"
)

const (
	globPrefix      = "glob:"
	semverPrefix    = "semver:"
	regexpPrefix    = "regexp:"
	regexpAltPrefix = "regex:"
)

// DefaultTagPattern activates the pipeline for version tags such as
// v1.0 or v20.15.10.
const DefaultTagPattern = "v*"

const tagRefPrefix = "refs/tags/"

// TagPattern matches pushed tag names against a configured pattern.
type TagPattern interface {
	// Matches returns true if the given tag activates the pipeline.
	Matches(tag string) bool
	// String returns the prefixed string representation.
	String() string
	// Valid returns true if the pattern is well formed.
	Valid() bool
}

type globPattern string

// semverPattern matches tags that parse as a semantic version and
// satisfy the constraint, e.g. `semver:>=1.0.0`.
type semverPattern struct {
	pattern     string // pattern without prefix
	constraints *semver.Constraints
}

type regexpPattern struct {
	pattern string // pattern without prefix
	regexp  *regexp.Regexp
}

// NewTagPattern instantiates a TagPattern according to the prefix it
// finds. The prefix can be either `glob:` (default if omitted),
// `semver:` or `regexp:`.
func NewTagPattern(pattern string) TagPattern {
	switch {
	case strings.HasPrefix(pattern, semverPrefix):
		pattern = strings.TrimPrefix(pattern, semverPrefix)
		c, _ := semver.NewConstraint(pattern)
		return semverPattern{pattern, c}
	case strings.HasPrefix(pattern, regexpPrefix):
		pattern = strings.TrimPrefix(pattern, regexpPrefix)
		r, _ := regexp.Compile(pattern)
		return regexpPattern{pattern, r}
	case strings.HasPrefix(pattern, regexpAltPrefix):
		pattern = strings.TrimPrefix(pattern, regexpAltPrefix)
		r, _ := regexp.Compile(pattern)
		return regexpPattern{pattern, r}
	default:
		return globPattern(strings.TrimPrefix(pattern, globPrefix))
	}
}

func (g globPattern) Matches(tag string) bool {
	return glob.Glob(string(g), tag)
}

func (g globPattern) String() string {
	return globPrefix + string(g)
}

func (g globPattern) Valid() bool {
	return string(g) != ""
}

func (s semverPattern) Matches(tag string) bool {
	v, err := semver.NewVersion(tag)
	if err != nil {
		return false
	}
	if s.constraints == nil {
		return false
	}
	return s.constraints.Check(v)
}

func (s semverPattern) String() string {
	return semverPrefix + s.pattern
}

func (s semverPattern) Valid() bool {
	return s.constraints != nil
}

func (r regexpPattern) Matches(tag string) bool {
	if r.regexp == nil {
		return false
	}
	return r.regexp.MatchString(tag)
}

func (r regexpPattern) String() string {
	return regexpPrefix + r.pattern
}

func (r regexpPattern) Valid() bool {
	return r.regexp != nil
}

// Trigger gates pipeline activation. A push activates the pipeline if
// and only if it refers to a tag and the tag name matches at least one
// of the configured patterns. Non-matching pushes are not an error,
// they simply never start a run.
type Trigger struct {
	patterns []TagPattern
}

// NewTrigger builds a trigger from pattern strings. Empty entries are
// ignored; with no usable pattern the trigger falls back to
// DefaultTagPattern.
func NewTrigger(patterns ...string) Trigger {
	var ps []TagPattern
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ps = append(ps, NewTagPattern(p))
	}
	if len(ps) == 0 {
		ps = append(ps, NewTagPattern(DefaultTagPattern))
	}
	return Trigger{patterns: ps}
}

// ParseTagPatterns splits a comma separated pattern list as given on
// the command line, e.g. "v*,semver:>=1.0.0".
func ParseTagPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Matches returns true if the tag name activates the pipeline.
func (t Trigger) Matches(tag string) bool {
	for _, p := range t.patterns {
		if p.Matches(tag) {
			return true
		}
	}
	return false
}

// MatchesRef is Matches applied to a fully qualified reference: it
// returns false for anything that is not a tag reference.
func (t Trigger) MatchesRef(ref string) bool {
	tag, ok := RefToTag(ref)
	if !ok {
		return false
	}
	return t.Matches(tag)
}

// Patterns returns the string representations of the configured
// patterns, for logging.
func (t Trigger) Patterns() []string {
	out := make([]string, 0, len(t.patterns))
	for _, p := range t.patterns {
		out = append(out, p.String())
	}
	return out
}

// RefToTag extracts the tag name from a fully qualified git reference.
// It returns false for branch references and other non-tag refs: only
// tags can activate the pipeline.
func RefToTag(ref string) (string, bool) {
	if !strings.HasPrefix(ref, tagRefPrefix) {
		return "", false
	}
	tag := strings.TrimPrefix(ref, tagRefPrefix)
	if tag == "" {
		return "", false
	}
	return tag, true
}
