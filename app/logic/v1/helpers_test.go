package v1

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pgvector/pgvector-go"

	"github.com/docuquery/docuquery/app/core"
	"github.com/docuquery/docuquery/app/store"
	"github.com/docuquery/docuquery/pkg/extract"
	"github.com/docuquery/docuquery/pkg/ledger"
	"github.com/docuquery/docuquery/pkg/types"
)

// memState is the shared backing of the in-memory store fakes.
// fail holds per-operation injected errors keyed by op name.
type memState struct {
	mu sync.Mutex

	nextID     int64
	workspaces []*types.Workspace
	files      []*types.WorkspaceFile
	fileDocs   []types.WorkspaceFileDoc
	documents  map[string]types.Document

	vectors     map[types.VectorCollection]map[string]types.VectorRecord
	vectorOrder map[types.VectorCollection][]string
	queryHits   map[types.VectorCollection][]types.VectorQueryResult

	fail map[string]error
}

func newMemState() *memState {
	return &memState{
		documents: make(map[string]types.Document),
		vectors: map[types.VectorCollection]map[string]types.VectorRecord{
			types.VECTOR_COLLECTION_TEXT:  {},
			types.VECTOR_COLLECTION_IMAGE: {},
		},
		vectorOrder: make(map[types.VectorCollection][]string),
		queryHits:   make(map[types.VectorCollection][]types.VectorQueryResult),
		fail:        make(map[string]error),
	}
}

func (s *memState) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *memState) failure(op string) error {
	return s.fail[op]
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// makeAllHitsVisible exposes every stored vector of the collection as
// a query hit, in insertion order.
func (s *memState) makeAllHitsVisible(collection types.VectorCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hits := make([]types.VectorQueryResult, 0, len(s.vectorOrder[collection]))
	for _, id := range s.vectorOrder[collection] {
		hits = append(hits, types.VectorQueryResult{ID: id, Cos: 0.95})
	}
	s.queryHits[collection] = hits
}

func (s *memState) vectorCount(collection types.VectorCollection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vectors[collection])
}

type memProvider struct{ state *memState }

func (p *memProvider) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (p *memProvider) DocumentStore() store.DocumentStore           { return &memDocuments{p.state} }
func (p *memProvider) WorkspaceStore() store.WorkspaceStore         { return &memWorkspaces{p.state} }
func (p *memProvider) WorkspaceFileStore() store.WorkspaceFileStore { return &memFiles{p.state} }
func (p *memProvider) WorkspaceFileDocStore() store.WorkspaceFileDocStore {
	return &memFileDocs{p.state}
}
func (p *memProvider) VectorStore() store.VectorStore { return &memVectors{p.state} }

type memDocuments struct{ state *memState }

func (s *memDocuments) Create(ctx context.Context, data types.Document) error {
	if err := s.state.failure("document.create"); err != nil {
		return err
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	data.ID = s.state.id()
	s.state.documents[data.DocID] = data
	return nil
}

func (s *memDocuments) GetByDocID(ctx context.Context, docID string) (*types.Document, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if doc, ok := s.state.documents[docID]; ok {
		return &doc, nil
	}
	return nil, nil
}

func (s *memDocuments) List(ctx context.Context, opts types.GetDocumentOptions) ([]types.Document, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	var out []types.Document
	for _, doc := range s.state.documents {
		out = append(out, doc)
	}
	return out, nil
}

func (s *memDocuments) Delete(ctx context.Context, docID string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	delete(s.state.documents, docID)
	return nil
}

type memWorkspaces struct{ state *memState }

func (s *memWorkspaces) Create(ctx context.Context, data types.Workspace) (int64, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	data.ID = s.state.id()
	s.state.workspaces = append(s.state.workspaces, &data)
	return data.ID, nil
}

func (s *memWorkspaces) GetByName(ctx context.Context, name string) (*types.Workspace, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, ws := range s.state.workspaces {
		if ws.Name == name {
			copied := *ws
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memWorkspaces) List(ctx context.Context) ([]types.Workspace, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	out := make([]types.Workspace, 0, len(s.state.workspaces))
	for _, ws := range s.state.workspaces {
		out = append(out, *ws)
	}
	return out, nil
}

func (s *memWorkspaces) UpdateTotalFiles(ctx context.Context, id int64, delta int) error {
	if err := s.state.failure("workspace.updateTotalFiles"); err != nil {
		return err
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, ws := range s.state.workspaces {
		if ws.ID == id {
			ws.TotalFiles += delta
			return nil
		}
	}
	return fmt.Errorf("workspace %d not found", id)
}

func (s *memWorkspaces) Delete(ctx context.Context, id int64) error {
	if err := s.state.failure("workspace.delete"); err != nil {
		return err
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	kept := s.state.workspaces[:0]
	for _, ws := range s.state.workspaces {
		if ws.ID != id {
			kept = append(kept, ws)
		}
	}
	s.state.workspaces = kept
	return nil
}

type memFiles struct{ state *memState }

func (s *memFiles) Create(ctx context.Context, data types.WorkspaceFile) (int64, error) {
	if err := s.state.failure("file.create"); err != nil {
		return 0, err
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	data.ID = s.state.id()
	s.state.files = append(s.state.files, &data)
	return data.ID, nil
}

func (s *memFiles) Get(ctx context.Context, workspaceID int64, fileName string) (*types.WorkspaceFile, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, f := range s.state.files {
		if f.WorkspaceID == workspaceID && f.FileName == fileName {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memFiles) List(ctx context.Context, opts types.GetWorkspaceFileOptions) ([]types.WorkspaceFile, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	var out []types.WorkspaceFile
	for _, f := range s.state.files {
		if opts.WorkspaceID != 0 && f.WorkspaceID != opts.WorkspaceID {
			continue
		}
		if opts.FileName != "" && f.FileName != opts.FileName {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

func (s *memFiles) Delete(ctx context.Context, id int64) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	kept := s.state.files[:0]
	for _, f := range s.state.files {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	s.state.files = kept
	return nil
}

type memFileDocs struct{ state *memState }

func (s *memFileDocs) BatchCreate(ctx context.Context, datas []types.WorkspaceFileDoc) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, d := range datas {
		d.ID = s.state.id()
		s.state.fileDocs = append(s.state.fileDocs, d)
	}
	return nil
}

func (s *memFileDocs) ListDocIDs(ctx context.Context, fileID int64) ([]string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := s.state.failure("filedoc.list"); err != nil {
		return nil, err
	}
	var ids []string
	for _, d := range s.state.fileDocs {
		if d.FileID == fileID {
			ids = append(ids, d.DocID)
		}
	}
	return ids, nil
}

func (s *memFileDocs) DeleteByFileID(ctx context.Context, fileID int64) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	kept := s.state.fileDocs[:0]
	for _, d := range s.state.fileDocs {
		if d.FileID != fileID {
			kept = append(kept, d)
		}
	}
	s.state.fileDocs = kept
	return nil
}

type memVectors struct{ state *memState }

func (s *memVectors) Create(ctx context.Context, collection types.VectorCollection, data types.VectorRecord) error {
	return s.BatchCreate(ctx, collection, []types.VectorRecord{data})
}

func (s *memVectors) BatchCreate(ctx context.Context, collection types.VectorCollection, datas []types.VectorRecord) error {
	if err := s.state.failure("vector.create"); err != nil {
		return err
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, d := range datas {
		if _, exists := s.state.vectors[collection][d.ID]; !exists {
			s.state.vectorOrder[collection] = append(s.state.vectorOrder[collection], d.ID)
		}
		s.state.vectors[collection][d.ID] = d
	}
	return nil
}

func (s *memVectors) Get(ctx context.Context, collection types.VectorCollection, id string) (*types.VectorRecord, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if rec, ok := s.state.vectors[collection][id]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *memVectors) List(ctx context.Context, collection types.VectorCollection, opts types.GetVectorsOptions) ([]types.VectorRecord, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	var out []types.VectorRecord
	for _, id := range s.state.vectorOrder[collection] {
		rec, ok := s.state.vectors[collection][id]
		if !ok {
			continue
		}
		if opts.WorkspaceName != "" && rec.WorkspaceName != opts.WorkspaceName {
			continue
		}
		if opts.Source != "" && rec.Source != opts.Source {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *memVectors) Delete(ctx context.Context, collection types.VectorCollection, id string) error {
	if err := s.state.failure("vector.delete"); err != nil {
		return err
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	delete(s.state.vectors[collection], id)
	return nil
}

func (s *memVectors) Query(ctx context.Context, collection types.VectorCollection, opts types.GetVectorsOptions, vector pgvector.Vector, limit uint64) ([]types.VectorQueryResult, error) {
	if err := s.state.failure("vector.query"); err != nil {
		return nil, err
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	var out []types.VectorQueryResult
	for _, hit := range s.state.queryHits[collection] {
		rec, ok := s.state.vectors[collection][hit.ID]
		if ok && opts.WorkspaceName != "" && rec.WorkspaceName != opts.WorkspaceName {
			continue
		}
		out = append(out, hit)
		if uint64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

// fakeOracle answers every call from canned values; individual
// methods can be overridden per test through the function fields.
type fakeOracle struct {
	mu sync.Mutex

	embedTextFn func(content string) ([]float32, error)
	scoreFn     func(contextText, question string) (float64, error)
	answerFn    func(contexts []types.RetrievalContext, question string) (string, error)

	scoredTexts     []string
	answerContexts  []types.RetrievalContext
	generationCalls int
}

func (o *fakeOracle) EmbedText(ctx context.Context, content string) ([]float32, error) {
	if o.embedTextFn != nil {
		return o.embedTextFn(content)
	}
	return []float32{1, 0, 0}, nil
}

func (o *fakeOracle) EmbedImage(ctx context.Context, filePath string) ([]float32, error) {
	return []float32{0, 1}, nil
}

func (o *fakeOracle) Score(ctx context.Context, contextText, question string) (float64, error) {
	o.mu.Lock()
	o.scoredTexts = append(o.scoredTexts, contextText)
	o.mu.Unlock()
	if o.scoreFn != nil {
		return o.scoreFn(contextText, question)
	}
	return 0.9, nil
}

func (o *fakeOracle) AnswerText(ctx context.Context, contexts []types.RetrievalContext, question string) (string, error) {
	return o.answer(contexts, question)
}

func (o *fakeOracle) AnswerImage(ctx context.Context, contexts []types.RetrievalContext, question string) (string, error) {
	return o.answer(contexts, question)
}

func (o *fakeOracle) answer(contexts []types.RetrievalContext, question string) (string, error) {
	o.mu.Lock()
	o.generationCalls++
	o.answerContexts = contexts
	o.mu.Unlock()
	if o.answerFn != nil {
		return o.answerFn(contexts, question)
	}
	return "generated answer", nil
}

func (o *fakeOracle) Classify(ctx context.Context, contentSample string) (string, error) {
	return "notes", nil
}

func (o *fakeOracle) Summarize(ctx context.Context, content string) (string, error) {
	return "summary: " + firstLine(content), nil
}

func (o *fakeOracle) DescribeImage(ctx context.Context, filePath string) (string, error) {
	return "a diagram of " + filepath.Base(filePath), nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

type testEnv struct {
	core   *core.Core
	state  *memState
	oracle *fakeOracle

	uploadDir string
	outputDir string
	ledgerDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	cfg := core.CoreConfig{}
	cfg.Storage.UploadDir = filepath.Join(root, "uploads")
	cfg.Storage.OutputDir = filepath.Join(root, "output")
	cfg.Storage.LedgerDir = filepath.Join(root, "ledgers")
	cfg.Ingest.ApplyDefaults()

	state := newMemState()
	oracle := &fakeOracle{}

	c := core.New(cfg, core.Dependencies{
		Store:  &memProvider{state: state},
		Oracle: oracle,
		Ledger: ledger.NewManager(cfg.Storage.LedgerDir),
		Extractors: map[string]extract.Extractor{
			".json": extract.PassthroughJSON{OutputDir: cfg.Storage.OutputDir},
		},
	})

	return &testEnv{
		core:      c,
		state:     state,
		oracle:    oracle,
		uploadDir: cfg.Storage.UploadDir,
		outputDir: cfg.Storage.OutputDir,
		ledgerDir: cfg.Storage.LedgerDir,
	}
}
