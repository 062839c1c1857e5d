package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// PackageIndex publishes built artifacts to a package index.
type PackageIndex interface {
	// Upload publishes the artifact content. The reader supplies the
	// file body; metadata comes from the artifact itself.
	Upload(ctx context.Context, artifact *model.Artifact, r io.Reader) error
}
