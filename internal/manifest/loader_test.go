package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/heacheck/internal/layer"
)

const authHCL = `
layer "auth" {
  type         = shared
  version      = "1.0.0"
  dependencies = [core]
  exports      = ["AuthService"]

  module "session" {
    imports = ["@core/utils"]
  }
}
`

const authYAML = `
name: auth
type: shared
version: 1.0.0
dependencies: [core]
exports: [AuthService]
modules:
  - name: session
    imports: ["@core/utils"]
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFile_HCLAndYAMLAgree(t *testing.T) {
	dir := t.TempDir()
	hclPath := filepath.Join(dir, "a", "layer.hcl")
	yamlPath := filepath.Join(dir, "b", "layer.yaml")
	writeFile(t, hclPath, authHCL)
	writeFile(t, yamlPath, authYAML)

	fromHCL, err := LoadFile(hclPath)
	require.NoError(t, err)
	fromYAML, err := LoadFile(yamlPath)
	require.NoError(t, err)
	require.Len(t, fromHCL, 1)
	require.Len(t, fromYAML, 1)

	want := layer.Config{
		Name:         "auth",
		Type:         layer.Shared,
		Path:         filepath.Join(dir, "a"),
		Dependencies: []layer.Type{layer.Core},
		Exports:      []string{"AuthService"},
		Version:      "1.0.0",
		Modules:      []layer.ModuleConfig{{Name: "session", Imports: []string{"@core/utils"}}},
	}
	if diff := cmp.Diff(want, fromHCL[0]); diff != "" {
		t.Errorf("HCL manifest mismatch (-want +got):\n%s", diff)
	}

	want.Path = filepath.Join(dir, "b")
	if diff := cmp.Diff(want, fromYAML[0]); diff != "" {
		t.Errorf("YAML manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_QuotedTypesAndMultipleBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.hcl")
	writeFile(t, path, `
layer "core" {
  type = "core"
}
layer "ui" {
  type         = themes
  dependencies = ["core", shared]
}
`)
	cfgs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)
	assert.Equal(t, layer.Core, cfgs[0].Type)
	assert.Empty(t, cfgs[0].Dependencies)
	assert.Equal(t, []string{}, cfgs[0].Exports)
	assert.Equal(t, []layer.Type{layer.Core, layer.Shared}, cfgs[1].Dependencies)
}

func TestLoadFile_MultiDocumentYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.yml")
	writeFile(t, path, "name: a\ntype: core\n---\nname: b\ntype: Shared\ndependencies: [core]\n")

	cfgs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)
	assert.Equal(t, "b", cfgs[1].Name)
	assert.Equal(t, layer.Shared, cfgs[1].Type)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		sentinel error
		wantErr  string
	}{
		{
			name:     "unknown layer type",
			file:     "layer.yaml",
			content:  "name: x\ntype: domain\n",
			sentinel: ErrInvalidManifest,
			wantErr:  `layer "x" has unknown type "domain"`,
		},
		{
			name:     "unknown dependency type",
			file:     "layer.hcl",
			content:  "layer \"x\" {\n  type = core\n  dependencies = [\"ui\"]\n}\n",
			sentinel: ErrInvalidManifest,
			wantErr:  `depends on unknown type "ui"`,
		},
		{
			name:     "missing name",
			file:     "layer.yaml",
			content:  "type: core\n",
			sentinel: ErrInvalidManifest,
			wantErr:  "layer name is required",
		},
		{
			name:    "unknown yaml field",
			file:    "layer.yaml",
			content: "name: x\ntype: core\ncolour: red\n",
			wantErr: "failed to decode YAML file",
		},
		{
			name:    "undefined identifier",
			file:    "layer.hcl",
			content: "layer \"x\" {\n  type = domain\n}\n",
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "hcl syntax error",
			file:    "layer.hcl",
			content: "layer \"x\" {\n",
			wantErr: "failed to parse HCL file",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			writeFile(t, path, tc.content)

			_, err := LoadFile(path)
			require.Error(t, err)
			if tc.sentinel != nil {
				assert.ErrorIs(t, err, tc.sentinel)
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "core", "layer.hcl"), "layer \"core\" {\n  type = core\n}\n")
	writeFile(t, filepath.Join(root, "auth", "layer.yaml"), authYAML)
	writeFile(t, filepath.Join(root, "node_modules", "x", "layer.yaml"), "name: ignored\ntype: core\n")
	writeFile(t, filepath.Join(root, "README.md"), "# readme")

	res, err := NewLoader(nil, nil).Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"auth", "core"}, res.Names())
	assert.Equal(t, filepath.Join(root, "core"), res.Layers["core"].Path)
	assert.Equal(t, filepath.Join(root, "auth", "layer.yaml"), res.Files["auth"])
}

func TestLoader_LoadDuplicate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "layer.hcl"), "layer \"dup\" {\n  type = core\n}\n")
	writeFile(t, filepath.Join(root, "b", "layer.yaml"), "name: dup\ntype: shared\n")

	_, err := NewLoader(nil, nil).Load(context.Background(), root)
	require.ErrorIs(t, err, ErrDuplicateLayer)
	assert.ErrorContains(t, err, `layer "dup" is declared in`)
}

func TestLoader_CustomPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep", "layer.yaml"), "name: keep\ntype: core\n")
	writeFile(t, filepath.Join(root, "skip", "layer.yaml"), "name: skip\ntype: core\n")

	res, err := NewLoader([]string{"keep/**/layer.yaml"}, []string{}).Load(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, res.Names())
}
