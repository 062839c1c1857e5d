package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

func TestParseProjectMetadata(t *testing.T) {
	t.Run("PEP 621 project table", func(t *testing.T) {
		data := []byte(`
[project]
name = "mylib"
version = "20.15.10"
description = "Example data toolkit"
`)
		meta, err := model.ParseProjectMetadata(data)
		gt.NoError(t, err)
		gt.Value(t, meta.Name).Equal("mylib")
		gt.Value(t, meta.Version).Equal("20.15.10")
	})

	t.Run("Poetry fallback", func(t *testing.T) {
		data := []byte(`
[tool.poetry]
name = "mylib"
version = "1.0.0"
`)
		meta, err := model.ParseProjectMetadata(data)
		gt.NoError(t, err)
		gt.Value(t, meta.Name).Equal("mylib")
		gt.Value(t, meta.Version).Equal("1.0.0")
	})

	t.Run("Project table wins over poetry", func(t *testing.T) {
		data := []byte(`
[project]
name = "mylib"
version = "2.0.0"

[tool.poetry]
name = "other"
version = "1.0.0"
`)
		meta, err := model.ParseProjectMetadata(data)
		gt.NoError(t, err)
		gt.Value(t, meta.Name).Equal("mylib")
		gt.Value(t, meta.Version).Equal("2.0.0")
	})

	t.Run("No metadata is tolerated", func(t *testing.T) {
		meta, err := model.ParseProjectMetadata([]byte(`[build-system]
requires = ["setuptools"]
`))
		gt.NoError(t, err)
		gt.Value(t, meta.Name).Equal("")
		gt.Value(t, meta.Version).Equal("")
	})

	t.Run("Broken TOML", func(t *testing.T) {
		_, err := model.ParseProjectMetadata([]byte(`[project`))
		gt.Error(t, err)
	})
}
