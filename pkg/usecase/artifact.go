package usecase

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// sdistSuffixes are the archive formats setuptools produces for source
// distributions.
var sdistSuffixes = []string{".tar.gz", ".zip"}

// collectArtifact locates the distribution built under dist/ and
// computes the size and digests the upload needs. The newest matching
// file wins when several are present.
func (uc *pipelineUseCase) collectArtifact(ctx context.Context, run *model.PipelineRun, st *runState) (*model.Artifact, error) {
	distDir := filepath.Join(st.workspace.ProjectDir, "dist")
	ctxlog.From(ctx).Debug("Scanning dist directory", "dir", distDir)

	entries, err := os.ReadDir(distDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(model.ErrNoArtifact, "dist directory was not created", goerr.V("dir", distDir))
		}
		return nil, fmt.Errorf("failed to read dist directory %s: %w", distDir, err)
	}

	var (
		newestName string
		newestTime time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !isSdistName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newestName == "" || info.ModTime().After(newestTime) {
			newestName = e.Name()
			newestTime = info.ModTime()
		}
	}

	if newestName == "" {
		return nil, goerr.Wrap(model.ErrNoArtifact, "no distribution found under dist", goerr.V("dir", distDir))
	}

	path := filepath.Join(distDir, newestName)
	size, sha256Hex, md5Hex, err := fileDigests(path)
	if err != nil {
		return nil, err
	}

	name, version := parseSdistFilename(newestName)
	if name == "" {
		name = st.project.Name
	}
	if name == "" {
		name = run.Repo
	}
	if version == "" {
		version = st.project.Version
	}
	if version == "" {
		version = run.Version
	}

	artifact := &model.Artifact{
		Path:     path,
		Filename: newestName,
		Name:     name,
		Version:  version,
		Size:     size,
		SHA256:   sha256Hex,
		MD5:      md5Hex,
		FileType: model.FileTypeSdist,
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return artifact, nil
}

func isSdistName(name string) bool {
	for _, suffix := range sdistSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// parseSdistFilename splits "{name}-{version}{suffix}" at the last
// dash. PEP 440 normalized versions never contain a dash, so the split
// is unambiguous for files produced by setuptools.
func parseSdistFilename(filename string) (name, version string) {
	base := filename
	for _, suffix := range sdistSuffixes {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}

	idx := strings.LastIndex(base, "-")
	if idx <= 0 || idx == len(base)-1 {
		return base, ""
	}
	return base[:idx], base[idx+1:]
}

// fileDigests returns the size plus hex encoded SHA-256 and MD5 of
// the file. The package index wants both digests on upload.
func fileDigests(path string) (int64, string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", "", fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer f.Close()

	sha := sha256.New()
	sum := md5.New()
	size, err := io.Copy(io.MultiWriter(sha, sum), f)
	if err != nil {
		return 0, "", "", fmt.Errorf("failed to hash artifact %s: %w", path, err)
	}

	return size, hex.EncodeToString(sha.Sum(nil)), hex.EncodeToString(sum.Sum(nil)), nil
}
