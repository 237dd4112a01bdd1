// Package ledger maintains the JSON metadata ledgers: a document
// ledger keyed by display name, an image ledger keyed by generated
// doc id, and a flat file list used purely for existence checks.
//
// Ledger files are shared mutable state. Every mutation takes a
// per-ledger mutex and replaces the file atomically (write to a temp
// file in the same directory, then rename) so readers never observe a
// torn write and crashed writers never corrupt the ledger.
package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/docuquery/docuquery/pkg/types"
)

const (
	docLedgerFile   = "docs_metadata.json"
	imageLedgerFile = "image_metadata.json"
	fileListFile    = "all_files_list.json"
)

// DocRecord is one document ledger entry. DocIDs holds a single id
// for unsplit documents or the full ordered chunk id list.
type DocRecord struct {
	DocIDs        types.DocIDs `json:"doc_id"`
	WorkspaceName string       `json:"workspace_name"`
	Title         string       `json:"title"`
	DocumentType  string       `json:"document_type"`
	OutputPath    string       `json:"output_path,omitempty"`
	Source        string       `json:"source,omitempty"`
	Timestamp     string       `json:"timestamp"`
}

// ImageRecord is one image ledger entry, keyed by generated doc id.
type ImageRecord struct {
	WorkspaceName   string `json:"workspace_name"`
	Title           string `json:"title"`
	UserDescription string `json:"user_description,omitempty"`
	ExtractedText   string `json:"extracted_text,omitempty"`
	OriginalPath    string `json:"original_path"`
	DocumentType    string `json:"document_type"`
	Timestamp       string `json:"timestamp"`
}

// FileEntry is one flat file-list entry.
type FileEntry struct {
	FilePath      string `json:"file_path"`
	DocType       string `json:"doc_type"`
	AddedAt       string `json:"added_at"`
	WorkspaceName string `json:"workspace_name"`
}

type Manager struct {
	dir string

	docMu   sync.Mutex
	imageMu sync.Mutex
	listMu  sync.Mutex
}

func NewManager(dir string) *Manager {
	_ = os.MkdirAll(dir, 0o755)
	return &Manager{dir: dir}
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name)
}

// readJSON loads path into out. Missing or corrupted files behave as
// empty, matching the ledgers' append-mostly usage.
func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil
	}
	return nil
}

// writeJSON replaces path atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ledger-*")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ---- document ledger ----

func (m *Manager) SetDocRecord(name string, rec DocRecord) error {
	m.docMu.Lock()
	defer m.docMu.Unlock()

	data := make(map[string]DocRecord)
	if err := readJSON(m.path(docLedgerFile), &data); err != nil {
		return err
	}
	data[name] = rec
	return writeJSON(m.path(docLedgerFile), data)
}

func (m *Manager) GetDocRecord(name string) (DocRecord, bool, error) {
	m.docMu.Lock()
	defer m.docMu.Unlock()

	data := make(map[string]DocRecord)
	if err := readJSON(m.path(docLedgerFile), &data); err != nil {
		return DocRecord{}, false, err
	}
	rec, ok := data[name]
	return rec, ok, nil
}

// DeleteDocRecord removes the entry for name when it belongs to
// workspace. The workspace is compared case-insensitively so a
// same-named document in another workspace survives.
func (m *Manager) DeleteDocRecord(name, workspace string) (bool, error) {
	m.docMu.Lock()
	defer m.docMu.Unlock()

	data := make(map[string]DocRecord)
	if err := readJSON(m.path(docLedgerFile), &data); err != nil {
		return false, err
	}
	rec, ok := data[name]
	if !ok || !strings.EqualFold(rec.WorkspaceName, workspace) {
		return false, nil
	}
	delete(data, name)
	return true, writeJSON(m.path(docLedgerFile), data)
}

// ---- image ledger ----

func (m *Manager) SetImageRecord(docID string, rec ImageRecord) error {
	m.imageMu.Lock()
	defer m.imageMu.Unlock()

	data := make(map[string]ImageRecord)
	if err := readJSON(m.path(imageLedgerFile), &data); err != nil {
		return err
	}
	data[docID] = rec
	return writeJSON(m.path(imageLedgerFile), data)
}

func (m *Manager) GetImageRecord(docID string) (ImageRecord, bool, error) {
	m.imageMu.Lock()
	defer m.imageMu.Unlock()

	data := make(map[string]ImageRecord)
	if err := readJSON(m.path(imageLedgerFile), &data); err != nil {
		return ImageRecord{}, false, err
	}
	rec, ok := data[docID]
	return rec, ok, nil
}

func (m *Manager) DeleteImageRecord(docID string) (bool, error) {
	m.imageMu.Lock()
	defer m.imageMu.Unlock()

	data := make(map[string]ImageRecord)
	if err := readJSON(m.path(imageLedgerFile), &data); err != nil {
		return false, err
	}
	if _, ok := data[docID]; !ok {
		return false, nil
	}
	delete(data, docID)
	return true, writeJSON(m.path(imageLedgerFile), data)
}

// DeleteImageRecordByName removes every image entry whose title
// matches name within workspace (case-insensitive workspace match)
// and returns the ids of the removed entries.
func (m *Manager) DeleteImageRecordByName(name, workspace string) ([]string, error) {
	m.imageMu.Lock()
	defer m.imageMu.Unlock()

	data := make(map[string]ImageRecord)
	if err := readJSON(m.path(imageLedgerFile), &data); err != nil {
		return nil, err
	}

	var removed []string
	for id, rec := range data {
		if rec.Title == name && strings.EqualFold(rec.WorkspaceName, workspace) {
			removed = append(removed, id)
			delete(data, id)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, writeJSON(m.path(imageLedgerFile), data)
}

// ---- flat file list ----

// FileExists reports whether a file with the same basename is already
// registered under workspace. Workspace comparison is
// case-insensitive.
func (m *Manager) FileExists(filePath, workspace string) (bool, error) {
	m.listMu.Lock()
	defer m.listMu.Unlock()

	var entries []FileEntry
	if err := readJSON(m.path(fileListFile), &entries); err != nil {
		return false, err
	}
	name := filepath.Base(filePath)
	for _, e := range entries {
		if filepath.Base(e.FilePath) == name && strings.EqualFold(e.WorkspaceName, workspace) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Manager) AddFileEntry(filePath, docType, workspace string) error {
	m.listMu.Lock()
	defer m.listMu.Unlock()

	var entries []FileEntry
	if err := readJSON(m.path(fileListFile), &entries); err != nil {
		return err
	}
	entries = append(entries, FileEntry{
		FilePath:      filePath,
		DocType:       docType,
		AddedAt:       time.Now().UTC().Format(time.RFC3339),
		WorkspaceName: workspace,
	})
	return writeJSON(m.path(fileListFile), entries)
}

// RemoveFileEntry drops every entry matching the basename of filePath
// under workspace. Returns false when nothing matched.
func (m *Manager) RemoveFileEntry(filePath, workspace string) (bool, error) {
	m.listMu.Lock()
	defer m.listMu.Unlock()

	var entries []FileEntry
	if err := readJSON(m.path(fileListFile), &entries); err != nil {
		return false, err
	}

	name := filepath.Base(filePath)
	kept := entries[:0]
	removed := false
	for _, e := range entries {
		if filepath.Base(e.FilePath) == name && strings.EqualFold(e.WorkspaceName, workspace) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return false, nil
	}
	return true, writeJSON(m.path(fileListFile), kept)
}
