package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngestConfigDefaults(t *testing.T) {
	var c IngestConfig
	c.ApplyDefaults()

	assert.Equal(t, DefaultMaxFileSizeMB, c.MaxFileSizeMB)
	assert.Equal(t, DefaultChunkSize, c.ChunkSize)
	assert.NotEmpty(t, c.AllowedExtensions)
}

func TestIngestConfigDefaultsKeepExplicitValues(t *testing.T) {
	c := IngestConfig{
		MaxFileSizeMB:     2,
		ChunkSize:         500,
		AllowedExtensions: []string{".txt"},
	}
	c.ApplyDefaults()

	assert.Equal(t, 2, c.MaxFileSizeMB)
	assert.Equal(t, 500, c.ChunkSize)
	assert.Equal(t, []string{".txt"}, c.AllowedExtensions)
}

func TestExtensionAllowed(t *testing.T) {
	c := IngestConfig{AllowedExtensions: []string{".txt", ".pdf"}}

	assert.True(t, c.ExtensionAllowed(".txt"))
	assert.True(t, c.ExtensionAllowed(".TXT"))
	assert.False(t, c.ExtensionAllowed(".exe"))
}
