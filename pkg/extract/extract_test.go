package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredBlobConcatenatedText(t *testing.T) {
	blob := StructuredBlob{
		Text: map[string]string{
			"page_2": "second page",
			"page_1": "first page",
		},
	}
	assert.Equal(t, "page_1: first page\npage_2: second page\n", blob.ConcatenatedText())
}

func TestPassthroughJSON(t *testing.T) {
	root := t.TempDir()

	blob := StructuredBlob{
		Text:     map[string]string{"page_1": "content"},
		Metadata: BlobMetadata{Title: "Report"},
	}
	data, err := json.Marshal(blob)
	require.NoError(t, err)

	upload := filepath.Join(root, "report.json")
	require.NoError(t, os.WriteFile(upload, data, 0o644))

	p := PassthroughJSON{OutputDir: filepath.Join(root, "output")}
	out, err := p.Extract(context.Background(), upload, "research")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "output", "research", "report", "json_data.json"), out)

	loaded, err := LoadBlob(out)
	require.NoError(t, err)
	assert.Equal(t, "content", loaded.Text["page_1"])
	assert.Equal(t, "Report", loaded.Metadata.Title)
	// source is backfilled from the upload path when absent
	assert.Equal(t, upload, loaded.Metadata.Source)
}

func TestLoadBlobMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadBlob(path)
	require.Error(t, err)
}
