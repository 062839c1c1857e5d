package config

import (
	"strings"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Pipeline holds the tunables of the release pipeline itself.
type Pipeline struct {
	TagPatterns   string
	PythonBin     string
	PythonVersion string
	BuildCommand  string
	KeepWorkspace bool
}

// Flags returns CLI flags for pipeline configuration
func (c *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tag-patterns",
			Usage:       "Comma separated tag patterns activating the pipeline (glob:, semver: or regexp: prefixed)",
			Value:       model.DefaultTagPattern,
			Destination: &c.TagPatterns,
			Sources:     cli.EnvVars("SHIPWRIGHT_TAG_PATTERNS"),
		},
		&cli.StringFlag{
			Name:        "python-bin",
			Usage:       "Python interpreter used to build the package",
			Value:       "python3",
			Destination: &c.PythonBin,
			Sources:     cli.EnvVars("SHIPWRIGHT_PYTHON_BIN"),
		},
		&cli.StringFlag{
			Name:        "python-version",
			Usage:       "Required Python version prefix, e.g. 3.10 (any version when empty)",
			Destination: &c.PythonVersion,
			Sources:     cli.EnvVars("SHIPWRIGHT_PYTHON_VERSION"),
		},
		&cli.StringFlag{
			Name:        "build-command",
			Usage:       "Space separated arguments passed to the interpreter to build the distribution",
			Value:       "setup.py sdist",
			Destination: &c.BuildCommand,
			Sources:     cli.EnvVars("SHIPWRIGHT_BUILD_COMMAND"),
		},
		&cli.BoolFlag{
			Name:        "keep-workspace",
			Usage:       "Leave the extracted workspace on disk after the run",
			Destination: &c.KeepWorkspace,
			Sources:     cli.EnvVars("SHIPWRIGHT_KEEP_WORKSPACE"),
		},
	}
}

// Config converts the flag values into pipeline settings.
func (c *Pipeline) Config() usecase.PipelineConfig {
	return usecase.PipelineConfig{
		PythonBin:     c.PythonBin,
		PythonVersion: c.PythonVersion,
		BuildCommand:  strings.Fields(c.BuildCommand),
		KeepWorkspace: c.KeepWorkspace,
	}
}

// Trigger builds the tag trigger from the configured patterns.
func (c *Pipeline) Trigger() model.Trigger {
	return model.NewTrigger(model.ParseTagPatterns(c.TagPatterns)...)
}
