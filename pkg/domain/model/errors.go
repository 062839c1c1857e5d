package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrRunNotFound is returned by run repositories for unknown IDs.
	ErrRunNotFound = goerr.New("pipeline run not found")

	// ErrNoArtifact is returned by the build step when the build
	// command succeeded but produced nothing under dist/.
	ErrNoArtifact = goerr.New("build produced no distributable artifact")
)
