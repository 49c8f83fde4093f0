package exclusions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcludedDir(t *testing.T) {
	assert.True(t, ExcludedDir("node_modules"))
	assert.True(t, ExcludedDir("target"))
	assert.True(t, ExcludedDir(".git"))
	assert.True(t, ExcludedDir(".anything-hidden"))

	assert.False(t, ExcludedDir("src"))
	assert.False(t, ExcludedDir("lib"))
	assert.False(t, ExcludedDir("internal"))
}

func TestExcludedPath(t *testing.T) {
	assert.True(t, ExcludedPath("node_modules/package/index.js"))
	assert.True(t, ExcludedPath("target/debug/main"))
	assert.True(t, ExcludedPath("vendor/github.com/pkg/file.go"))
	assert.True(t, ExcludedPath(".git/config"))
	assert.True(t, ExcludedPath("src/.hidden/file.rs"))

	assert.False(t, ExcludedPath("src/main.rs"))
	assert.False(t, ExcludedPath("lib/utils.ts"))
	assert.False(t, ExcludedPath("packages/core/index.js"))
}

func TestTooLarge(t *testing.T) {
	assert.False(t, TooLarge(MaxFileSize))
	assert.True(t, TooLarge(MaxFileSize+1))
	assert.False(t, TooLarge(0))
}
