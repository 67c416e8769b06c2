package tenant

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forumsJSON = `{
  "forums": [
    {"forum_id": "golang", "name": "Go Forum", "categories": ["general", "help"], "features": {"voting": true}},
    {"forum_id": "offtopic", "name": "Off Topic"}
  ]
}`

const forumsYAML = `forums:
  - forum_id: rust
    name: Rust Forum
    categories: [general]
    features:
      voting: false
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFileJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "forums.json", forumsJSON)

	registry, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, registry.Exists("golang"))
	assert.True(t, registry.Exists("offtopic"))
	assert.False(t, registry.Exists("rust"))
	assert.Equal(t, "Go Forum", registry.Get("golang").Name)
	assert.True(t, registry.HasFeature("golang", "voting"))
	assert.False(t, registry.HasFeature("offtopic", "voting"))

	all := registry.All()
	require.Len(t, all, 2)
	assert.Equal(t, "golang", all[0].ForumID)
}

func TestLoadFromFileYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "forums.yaml", forumsYAML)

	registry, err := LoadFromFile(path)
	require.NoError(t, err)

	cfg := registry.Get("rust")
	require.NotNil(t, cfg)
	assert.Equal(t, []string{"general"}, cfg.Categories)
	assert.False(t, registry.HasFeature("rust", "voting"))
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.json", `{"forums": [`)
	_, err = LoadFromFile(bad)
	assert.Error(t, err)

	noID := writeFile(t, dir, "noid.json", `{"forums": [{"name": "x"}]}`)
	_, err = LoadFromFile(noID)
	assert.ErrorContains(t, err, "forum_id")
}

func TestAllowsCategory(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&ForumConfig{ForumID: "golang", Categories: []string{"general", "help"}})
	registry.Register(&ForumConfig{ForumID: "open"})

	assert.True(t, registry.AllowsCategory("golang", "help"))
	assert.False(t, registry.AllowsCategory("golang", "jobs"))
	assert.True(t, registry.AllowsCategory("open", "anything"))
	assert.False(t, registry.AllowsCategory("unknown", "general"))
}

func TestWatchReloadsRegistry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "forums.json", forumsJSON)

	registry, err := LoadFromFile(path)
	require.NoError(t, err)

	done := make(chan struct{})
	defer close(done)
	require.NoError(t, Watch(path, registry, done))

	writeFile(t, dir, "forums.json", `{"forums": [{"forum_id": "rust", "name": "Rust"}]}`)

	require.Eventually(t, func() bool {
		return registry.Exists("rust") && !registry.Exists("golang")
	}, 5*time.Second, 20*time.Millisecond)
}
