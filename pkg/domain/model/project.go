package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// ProjectMetadata is the distribution name and version declared by the
// project being built. It is read from pyproject.toml when present;
// projects that only carry a setup.py have no metadata and that is
// tolerated, the sdist filename is authoritative in that case.
type ProjectMetadata struct {
	Name    string
	Version string
}

// pyprojectFile mirrors the subset of pyproject.toml we care about:
// PEP 621 [project] with a [tool.poetry] fallback.
type pyprojectFile struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ParseProjectMetadata parses pyproject.toml content.
func ParseProjectMetadata(data []byte) (*ProjectMetadata, error) {
	var f pyprojectFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse pyproject.toml")
	}

	meta := &ProjectMetadata{
		Name:    f.Project.Name,
		Version: f.Project.Version,
	}
	if meta.Name == "" {
		meta.Name = f.Tool.Poetry.Name
	}
	if meta.Version == "" {
		meta.Version = f.Tool.Poetry.Version
	}
	return meta, nil
}
