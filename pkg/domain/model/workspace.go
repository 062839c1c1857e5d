package model

// Workspace is the ephemeral checkout area of a single run: the
// extracted source tree the later steps operate on. It is shared
// between steps and removed when the run finishes.
type Workspace struct {
	Dir        string // Root temporary directory
	ProjectDir string // Top-level directory of the extracted archive
	Files      int    // Number of extracted files
	Size       int64  // Total uncompressed size in bytes
}
