package model

import "github.com/m-mizutani/goerr/v2"

// FileTypeSdist is the only distribution type the build step produces.
const FileTypeSdist = "sdist"

// Artifact is the distributable file produced by the build step and
// consumed by the publish step. It lives only for the duration of a
// single run; archival to object storage is optional bookkeeping.
type Artifact struct {
	Path     string // Absolute path within the run workspace
	Filename string // Base name, e.g. mylib-1.2.3.tar.gz
	Name     string // Distribution (project) name
	Version  string // Distribution version
	Size     int64  // File size in bytes
	SHA256   string // Hex encoded SHA-256 digest
	MD5      string // Hex encoded MD5 digest
	FileType string // Distribution type, always sdist
}

// Validate checks the artifact carries everything the publish step
// needs.
func (a *Artifact) Validate() error {
	if a.Path == "" || a.Filename == "" {
		return goerr.New("artifact has no file", goerr.V("artifact", a))
	}
	if a.Version == "" {
		return goerr.New("artifact has no version", goerr.V("filename", a.Filename))
	}
	if a.SHA256 == "" {
		return goerr.New("artifact has no digest", goerr.V("filename", a.Filename))
	}
	return nil
}
