package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"LEARNCORE_BACKEND", "LEARNCORE_PARENT_SIZE", "LEARNCORE_CHILD_SIZE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 1500, cfg.Chunking.ParentSize)
	assert.Equal(t, 50, cfg.Chunking.ParentOverlap)
	assert.Equal(t, 300, cfg.Chunking.ChildSize)
	assert.Equal(t, 50, cfg.Chunking.ChildOverlap)
	assert.Equal(t, 5, cfg.Retrieval.TopChildren)
	assert.Equal(t, 2, cfg.Retrieval.TopParents)
	assert.NotEmpty(t, cfg.Store.DBPath)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LEARNCORE_BACKEND", "Redis")
	t.Setenv("LEARNCORE_PARENT_SIZE", "900")
	t.Setenv("LEARNCORE_CHILD_SIZE", "not-a-number")
	t.Setenv("LEARNCORE_LOG_JSON", "true")

	cfg := Load()
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 900, cfg.Chunking.ParentSize)
	assert.Equal(t, 300, cfg.Chunking.ChildSize)
	assert.True(t, cfg.Log.JSON)
}
