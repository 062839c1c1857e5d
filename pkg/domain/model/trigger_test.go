package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

func TestTrigger_Matches(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		tag      string
		expected bool
	}{
		{
			name:     "Default pattern matches v1.0",
			patterns: nil,
			tag:      "v1.0",
			expected: true,
		},
		{
			name:     "Default pattern matches v20.15.10",
			patterns: nil,
			tag:      "v20.15.10",
			expected: true,
		},
		{
			name:     "Default pattern rejects main",
			patterns: nil,
			tag:      "main",
			expected: false,
		},
		{
			name:     "Default pattern rejects version1",
			patterns: nil,
			tag:      "version1",
			expected: false,
		},
		{
			name:     "Explicit glob prefix",
			patterns: []string{"glob:v*"},
			tag:      "v2.3.4",
			expected: true,
		},
		{
			name:     "Glob with suffix",
			patterns: []string{"v*-rc*"},
			tag:      "v1.0.0-rc1",
			expected: true,
		},
		{
			name:     "Semver constraint matches",
			patterns: []string{"semver:>=1.0.0"},
			tag:      "v1.2.3",
			expected: true,
		},
		{
			name:     "Semver constraint rejects lower version",
			patterns: []string{"semver:>=2.0.0"},
			tag:      "v1.2.3",
			expected: false,
		},
		{
			name:     "Semver constraint rejects non-version tag",
			patterns: []string{"semver:>=0.0.1"},
			tag:      "nightly",
			expected: false,
		},
		{
			name:     "Regexp pattern",
			patterns: []string{`regexp:^v\d+\.\d+\.\d+$`},
			tag:      "v10.2.0",
			expected: true,
		},
		{
			name:     "Regexp alt prefix",
			patterns: []string{`regex:^v\d+$`},
			tag:      "v7",
			expected: true,
		},
		{
			name:     "Multiple patterns, second matches",
			patterns: []string{"release-*", "v*"},
			tag:      "v0.9.1",
			expected: true,
		},
		{
			name:     "Multiple patterns, none match",
			patterns: []string{"release-*", "stable-*"},
			tag:      "v0.9.1",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := model.NewTrigger(tt.patterns...)
			got := trigger.Matches(tt.tag)
			if got != tt.expected {
				t.Errorf("Matches(%q) = %v, want %v", tt.tag, got, tt.expected)
			}
		})
	}
}

func TestTrigger_MatchesRef(t *testing.T) {
	trigger := model.NewTrigger()

	tests := []struct {
		name     string
		ref      string
		expected bool
	}{
		{name: "Tag reference activates", ref: "refs/tags/v1.0", expected: true},
		{name: "Branch reference never activates", ref: "refs/heads/main", expected: false},
		{name: "Branch named like a tag never activates", ref: "refs/heads/v1.0", expected: false},
		{name: "Bare tag name is not a reference", ref: "v1.0", expected: false},
		{name: "Empty reference", ref: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trigger.MatchesRef(tt.ref)
			if got != tt.expected {
				t.Errorf("MatchesRef(%q) = %v, want %v", tt.ref, got, tt.expected)
			}
		})
	}
}

func TestRefToTag(t *testing.T) {
	tag, ok := model.RefToTag("refs/tags/v1.2.3")
	gt.True(t, ok)
	gt.Value(t, tag).Equal("v1.2.3")

	_, ok = model.RefToTag("refs/heads/main")
	gt.False(t, ok)

	_, ok = model.RefToTag("refs/tags/")
	gt.False(t, ok)
}

func TestParseTagPatterns(t *testing.T) {
	got := model.ParseTagPatterns("v*, semver:>=1.0.0 ,")
	gt.Value(t, got).Equal([]string{"v*", "semver:>=1.0.0"})
	gt.Number(t, len(model.ParseTagPatterns(""))).Equal(0)
}

func TestTrigger_Patterns(t *testing.T) {
	trigger := model.NewTrigger("v*", "semver:>=1.0.0")
	gt.Value(t, trigger.Patterns()).Equal([]string{"glob:v*", "semver:>=1.0.0"})
}
