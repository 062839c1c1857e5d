package model

// ReleaseNamePrefix is prepended to the triggering reference to form
// the release name, e.g. "Release v1.0.3".
const ReleaseNamePrefix = "Release "

// Release describes the release to be created for a triggering tag.
// Draft and Prerelease are always false: every activated tag becomes a
// regular published release.
type Release struct {
	Owner      string // Repository owner
	Repo       string // Repository name
	TagName    string // Tag the release is created for, exactly as pushed
	Name       string // Human readable release name
	CommitSHA  string // Commit the tag points at
	Draft      bool
	Prerelease bool
}

// NewRelease derives the release for a tag push. The tag name used is
// exactly the one that triggered the run.
func NewRelease(push *PushInfo) *Release {
	return &Release{
		Owner:      push.Owner,
		Repo:       push.Repo,
		TagName:    push.Tag,
		Name:       ReleaseNamePrefix + push.Tag,
		CommitSHA:  push.CommitSHA,
		Draft:      false,
		Prerelease: false,
	}
}

// ReleaseResult is the persisted release record returned by the
// hosting platform.
type ReleaseResult struct {
	ID  int64  // Release identifier assigned by the platform
	URL string // HTML URL of the created release
}
