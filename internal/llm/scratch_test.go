package llm

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchDocLifecycle(t *testing.T) {
	doc, err := NewScratchDoc("Widget", "<p>fragment</p>")
	require.NoError(t, err)

	path := doc.Path()
	require.NotEmpty(t, path)

	content, err := doc.Read()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "<!DOCTYPE html>"))
	assert.Contains(t, content, "<title>Widget</title>")
	assert.Contains(t, content, "<p>fragment</p>")

	doc.Release()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "release must remove the backing file")

	// releasing twice is safe
	doc.Release()
	assert.Empty(t, doc.Path())
}
