package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkSource(t *testing.T) {
	uuid := "0b3c2a64-9f1e-4b5d-8d4a-2f6c1e0a9b7c"

	assert.Equal(t, uuid, ChunkSource(uuid+"-1"))
	assert.Equal(t, uuid, ChunkSource(uuid+"-12"))
	assert.Equal(t, "plain", ChunkSource("plain"))
	assert.Equal(t, "-leading", ChunkSource("-leading"))
}
