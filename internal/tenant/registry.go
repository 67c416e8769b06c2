package tenant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ForumConfig describes one forum served by this backend.
type ForumConfig struct {
	ForumID    string          `json:"forum_id" yaml:"forum_id"`
	Name       string          `json:"name" yaml:"name"`
	Categories []string        `json:"categories" yaml:"categories"`
	Features   map[string]bool `json:"features" yaml:"features"`
}

type ForumsFile struct {
	Forums []ForumConfig `json:"forums" yaml:"forums"`
}

type Registry struct {
	mu     sync.RWMutex
	forums map[string]*ForumConfig
}

func NewRegistry() *Registry {
	return &Registry{
		forums: make(map[string]*ForumConfig),
	}
}

// LoadFromFile reads a forums file. Files ending in .yaml or .yml are parsed
// as YAML, everything else as JSON.
func LoadFromFile(path string) (*Registry, error) {
	forums, err := readForums(path)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	registry.Replace(forums)
	return registry, nil
}

func readForums(path string) ([]ForumConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read forums config: %w", err)
	}

	var file ForumsFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse forums config: %w", err)
	}

	for i, f := range file.Forums {
		if strings.TrimSpace(f.ForumID) == "" {
			return nil, fmt.Errorf("forums config: entry %d has no forum_id", i)
		}
	}
	return file.Forums, nil
}

func (r *Registry) Register(cfg *ForumConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forums[cfg.ForumID] = cfg
}

// Replace swaps the whole set of forums at once.
func (r *Registry) Replace(forums []ForumConfig) {
	next := make(map[string]*ForumConfig, len(forums))
	for i := range forums {
		next[forums[i].ForumID] = &forums[i]
	}

	r.mu.Lock()
	r.forums = next
	r.mu.Unlock()
}

func (r *Registry) Get(forumID string) *ForumConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forums[forumID]
}

func (r *Registry) Exists(forumID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.forums[forumID]
	return ok
}

func (r *Registry) HasFeature(forumID, feature string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.forums[forumID]
	if !ok {
		return false
	}
	return cfg.Features[feature]
}

// AllowsCategory reports whether category may be used in forumID. A forum
// without a category list accepts any category.
func (r *Registry) AllowsCategory(forumID, category string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.forums[forumID]
	if !ok {
		return false
	}
	if len(cfg.Categories) == 0 {
		return true
	}
	for _, c := range cfg.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// All returns every forum sorted by id.
func (r *Registry) All() []*ForumConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*ForumConfig, 0, len(r.forums))
	for _, cfg := range r.forums {
		result = append(result, cfg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ForumID < result[j].ForumID })
	return result
}
