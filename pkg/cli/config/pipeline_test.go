package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shipwright/pkg/cli/config"
)

func TestPipeline_Config(t *testing.T) {
	cfg := config.Pipeline{
		PythonBin:     "python3.11",
		PythonVersion: "3.11",
		BuildCommand:  "setup.py sdist --formats=gztar",
		KeepWorkspace: true,
	}

	got := cfg.Config()
	gt.Value(t, got.PythonBin).Equal("python3.11")
	gt.Value(t, got.PythonVersion).Equal("3.11")
	gt.Value(t, got.BuildCommand).Equal([]string{"setup.py", "sdist", "--formats=gztar"})
	gt.True(t, got.KeepWorkspace)
}

func TestPipeline_Trigger(t *testing.T) {
	tests := []struct {
		name     string
		patterns string
		tag      string
		want     bool
	}{
		{
			name:     "default pattern matches version tag",
			patterns: "v*",
			tag:      "v1.2.3",
			want:     true,
		},
		{
			name:     "default pattern rejects other tags",
			patterns: "v*",
			tag:      "nightly",
			want:     false,
		},
		{
			name:     "comma separated list",
			patterns: "v*, release-*",
			tag:      "release-2024",
			want:     true,
		},
		{
			name:     "semver constraint",
			patterns: "semver:>=1.0.0",
			tag:      "v0.9.0",
			want:     false,
		},
		{
			name:     "empty falls back to default",
			patterns: "",
			tag:      "v2.0.0",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Pipeline{TagPatterns: tt.patterns}
			gt.Value(t, cfg.Trigger().Matches(tt.tag)).Equal(tt.want)
		})
	}
}
