package app

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// setupAppTest creates an App over root with debug logging captured.
func setupAppTest(t *testing.T, cfg Config) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()
	cfg.LogLevel = "debug"
	c, err := NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &SafeBuffer{}, &SafeBuffer{}
	a := NewApp(out, logs, c)

	t.Cleanup(func() {
		if os.Getenv("HEACHECK_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// layerFiles returns the index files every layer directory needs.
func layerFiles(dir string) map[string]string {
	return map[string]string{
		dir + "/index.ts":      "export * from './pipe';\n",
		dir + "/pipe/index.ts": "export {};\n",
	}
}

// cleanProject lays out three layers that follow every rule. ui:app imports
// three targets, which makes it a hotspot at the default threshold.
func cleanProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"core/layer.hcl": `
layer "core" {
  type    = core
  version = "1.0.0"
  module "utils" {}
}
`,
		"shared/layer.yaml": `
name: auth
type: shared
version: 1.0.0
dependencies: [core]
modules:
  - name: session
    imports: ["@core/utils"]
`,
		"ui/layer.hcl": `
layer "ui" {
  type         = themes
  dependencies = [core, shared]

  module "app" {
    imports = ["@core/utils", "@shared/session", "@themes/ui/widgets"]
  }
  module "widgets" {}
}
`,
	}
	for _, dir := range []string{"core", "shared", "ui"} {
		for k, v := range layerFiles(dir) {
			files[k] = v
		}
	}
	writeFiles(t, root, files)
	return root
}

// brokenProject has a core layer depending on shared, an unknown import and
// a layer without its index files.
func brokenProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"core/layer.hcl": `
layer "core" {
  type         = core
  dependencies = [shared]
  module "utils" {
    imports = ["@shared/session"]
  }
}
`,
		"shared/layer.hcl": `
layer "auth" {
  type         = shared
  dependencies = [core]
  module "session" {
    imports = ["@core/utils", "@vendor/lib"]
  }
}
`,
	}
	for k, v := range layerFiles("core") {
		files[k] = v
	}
	writeFiles(t, root, files)
	return root
}
