package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// extractWorkspace unpacks a repository archive into a fresh temporary
// directory and locates the project root inside it. The directory is
// removed again when extraction fails part way.
func (uc *pipelineUseCase) extractWorkspace(ctx context.Context, archive []byte) (*model.Workspace, error) {
	logger := ctxlog.From(ctx)

	tempDir, err := os.MkdirTemp("", "shipwright-run-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	if err := os.Chmod(tempDir, 0700); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to set workspace permissions for %s: %w", tempDir, err)
	}

	logger.Debug("Created workspace directory", "dir", tempDir)

	zipReader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to open source archive: %w", err)
	}

	var fileCount int
	var totalSize int64

	for _, file := range zipReader.File {
		if err := uc.extractArchiveFile(file, tempDir); err != nil {
			_ = os.RemoveAll(tempDir)
			return nil, fmt.Errorf("failed to extract file %s: %w", file.Name, err)
		}
		if !file.FileInfo().IsDir() {
			fileCount++
		}
		totalSize += int64(file.UncompressedSize64)
	}

	return &model.Workspace{
		Dir:        tempDir,
		ProjectDir: findProjectDir(tempDir),
		Files:      fileCount,
		Size:       totalSize,
	}, nil
}

// extractArchiveFile extracts a single file from the archive to the
// destination directory.
func (uc *pipelineUseCase) extractArchiveFile(file *zip.File, destDir string) error {
	// Security check: prevent path traversal attacks
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("invalid file path detected: file=%s, dest=%s", file.Name, destPath)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file %s in archive: %w", file.Name, err)
	}
	defer rc.Close()

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, file.FileInfo().Mode())
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directories %s: %w", filepath.Dir(destPath), err)
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.FileInfo().Mode())
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, rc); err != nil {
		return fmt.Errorf("failed to copy file content to %s: %w", destPath, err)
	}

	return nil
}

// findProjectDir returns the directory the later steps run in. GitHub
// archives wrap the repository in a single "{repo}-{sha}" directory;
// when exactly one top-level directory exists it is the project root,
// otherwise the workspace root itself is used.
func findProjectDir(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return dir
	}

	var only string
	for _, e := range entries {
		if !e.IsDir() {
			return dir
		}
		if only != "" {
			return dir
		}
		only = e.Name()
	}

	if only == "" {
		return dir
	}
	return filepath.Join(dir, only)
}

// loadProjectMetadata reads pyproject.toml from the project root. A
// missing file is tolerated: name and version then fall back to the
// repository name and the tag derived version.
func (uc *pipelineUseCase) loadProjectMetadata(ctx context.Context, ws *model.Workspace) (*model.ProjectMetadata, error) {
	path := filepath.Join(ws.ProjectDir, "pyproject.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ctxlog.From(ctx).Debug("No pyproject.toml in project", "dir", ws.ProjectDir)
			return &model.ProjectMetadata{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	meta, err := model.ParseProjectMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return meta, nil
}
