package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loom/internal/hcl"
)

func writeManifest(t *testing.T, root, module, content string) {
	t.Helper()
	dir := filepath.Join(root, module)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0o600))
}

func TestScan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, "dev", `
fiber "dev" {
  depends_on = ["core"]

  chain "golang" {
    tools = ["go"]
  }
}
`)
	writeManifest(t, root, "core", `
fiber "core" {}
`)

	models, err := Scan(context.Background(), hcl.NewLoader(), root)
	require.NoError(t, err)
	require.Len(t, models, 2)

	// Path order: core/ sorts before dev/.
	require.Len(t, models[0].Fibers, 1)
	assert.Equal(t, "core", models[0].Fibers[0].Name)
	require.Len(t, models[1].Fibers, 1)
	assert.Equal(t, "dev", models[1].Fibers[0].Name)
	require.Len(t, models[1].Fibers[0].Chains, 1)
}

func TestScan_MissingRoot(t *testing.T) {
	t.Parallel()

	models, err := Scan(context.Background(), hcl.NewLoader(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestScan_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "misc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "misc", "notes.hcl"), []byte(`fiber "x" {}`), 0o600))

	models, err := Scan(context.Background(), hcl.NewLoader(), root)
	require.NoError(t, err)
	assert.Empty(t, models, "only module.hcl files are manifests")
}
