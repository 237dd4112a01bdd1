// Package extract defines the boundary to format-specific extraction
// collaborators. Concrete PDF/DOCX extractors live outside this
// repository; the engine only consumes the structured blob they
// persist.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StructuredBlob is the JSON artifact an extraction collaborator
// produces for a page-oriented document: page keyed text, rendered
// tables, per-page image paths and provenance metadata.
type StructuredBlob struct {
	Text     map[string]string   `json:"text"`
	Tables   map[string]string   `json:"tables"`
	Images   map[string][]string `json:"images"`
	Metadata BlobMetadata        `json:"metadata"`
}

type BlobMetadata struct {
	Source       string `json:"source"`
	Title        string `json:"title"`
	Timestamp    string `json:"timestamp"`
	DocumentType string `json:"document_type"`
}

// ConcatenatedText joins page texts in page-key order, prefixed with
// the key, for summarization and classification.
func (b StructuredBlob) ConcatenatedText() string {
	keys := make([]string, 0, len(b.Text))
	for k := range b.Text {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, b.Text[k])
	}
	return sb.String()
}

// ImagePaths flattens the per-page image lists.
func (b StructuredBlob) ImagePaths() []string {
	keys := make([]string, 0, len(b.Images))
	for k := range b.Images {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var paths []string
	for _, k := range keys {
		paths = append(paths, b.Images[k]...)
	}
	return paths
}

func LoadBlob(path string) (StructuredBlob, error) {
	var blob StructuredBlob
	data, err := os.ReadFile(path)
	if err != nil {
		return blob, err
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		return blob, fmt.Errorf("malformed structured blob %s: %w", path, err)
	}
	return blob, nil
}

// Extractor turns an uploaded file into a persisted structured blob
// and hands back its path.
type Extractor interface {
	Extract(ctx context.Context, filePath, workspace string) (blobPath string, err error)
}

// PassthroughJSON accepts files that already are structured blobs and
// copies them into the output tree. It covers the .json upload path
// and stands in for external extractors in development setups.
type PassthroughJSON struct {
	OutputDir string
}

func (p PassthroughJSON) Extract(ctx context.Context, filePath, workspace string) (string, error) {
	blob, err := LoadBlob(filePath)
	if err != nil {
		return "", err
	}
	if blob.Metadata.Source == "" {
		blob.Metadata.Source = filePath
	}
	if blob.Metadata.Title == "" {
		blob.Metadata.Title = filepath.Base(filePath)
	}

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	dir := filepath.Join(p.OutputDir, workspace, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	out := filepath.Join(dir, "json_data.json")
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", err
	}
	return out, nil
}
