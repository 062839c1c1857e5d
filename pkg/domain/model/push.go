package model

// PushInfo represents information extracted from a push event. Ref is
// the fully qualified reference (refs/tags/v1.2.3); Tag is the short
// tag name, empty for branch pushes.
type PushInfo struct {
	Owner     string // Repository owner
	Repo      string // Repository name
	Ref       string // Pushed git reference
	Tag       string // Tag name when the reference is a tag
	CommitSHA string // Commit the reference points at after the push
	Deleted   bool   // True when the push removed the reference
	Pusher    string // User who pushed
}

// IsTagPush returns true when the push created or moved a tag. Deleted
// tags never activate the pipeline.
func (p *PushInfo) IsTagPush() bool {
	return p.Tag != "" && !p.Deleted
}

// FullName returns owner/repo.
func (p *PushInfo) FullName() string {
	return p.Owner + "/" + p.Repo
}
