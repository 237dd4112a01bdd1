package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/docuquery/docuquery/app/core"
	"github.com/docuquery/docuquery/pkg/errors"
	"github.com/docuquery/docuquery/pkg/extract"
	"github.com/docuquery/docuquery/pkg/i18n"
	"github.com/docuquery/docuquery/pkg/ledger"
	"github.com/docuquery/docuquery/pkg/types"
)

// ingestion strategies, selected by file extension
var (
	imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}
	plainExtensions = map[string]bool{".txt": true, ".md": true}
)

// embedding blend weights for the image strategy
const (
	imageBlendTextWeight  = 0.6
	imageBlendImageWeight = 0.4
)

type IngestLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewIngestLogic(ctx context.Context, core *core.Core) *IngestLogic {
	return &IngestLogic{
		ctx:  ctx,
		core: core,
	}
}

// ingestState tracks what a strategy has written so a mid-pipeline
// failure can be reverted before the error surfaces.
type ingestState struct {
	collection types.VectorCollection
	vectorIDs  []string
	docLedger  string
	imageIDs   []string
	outputPath string
}

// Ingest validates, indexes and registers one file. Pre-flight
// rejections happen before anything is written; later failures revert
// the file-list entry, ledger entries, vector rows and partial
// filesystem output so callers never observe a half-indexed document.
func (l *IngestLogic) Ingest(filePath string, meta types.IngestMetadata, workspace string) (types.DocIDs, error) {
	fileName := filepath.Base(filePath)
	ext := strings.ToLower(filepath.Ext(fileName))

	exists, err := l.core.Ledger().FileExists(fileName, workspace)
	if err != nil {
		return nil, errors.New("IngestLogic.Ingest.Ledger.FileExists", i18n.ERROR_INTERNAL, err)
	}
	if exists {
		return nil, errors.New("IngestLogic.Ingest.AlreadyExists", i18n.ERROR_FILE_ALREADY_EXISTS, nil).
			Code(http.StatusConflict).Kind(errors.KIND_FILE_ALREADY_EXISTS)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, errors.New("IngestLogic.Ingest.Stat", i18n.ERROR_FILE_READ_FAIL, err).
			Code(http.StatusBadRequest).Kind(errors.KIND_PROCESSING_FAILED)
	}
	if info.Size() > int64(l.core.Cfg().Ingest.MaxFileSizeMB)*1024*1024 {
		return nil, errors.New("IngestLogic.Ingest.TooLarge", i18n.ERROR_FILE_TOO_LARGE, nil).
			Code(http.StatusRequestEntityTooLarge).Kind(errors.KIND_FILE_TOO_LARGE)
	}
	if !l.core.Cfg().Ingest.ExtensionAllowed(ext) {
		return nil, errors.New("IngestLogic.Ingest.UnsupportedType", i18n.ERROR_FILE_TYPE_UNSUPPORTED, nil).
			Code(http.StatusUnsupportedMediaType).Kind(errors.KIND_UNSUPPORTED_FILE_TYPE)
	}

	docType := types.DOC_TYPE_STRUCTURED
	switch {
	case imageExtensions[ext]:
		docType = types.DOC_TYPE_IMAGE
	case plainExtensions[ext]:
		docType = types.DOC_TYPE_TEXT
	}

	// registration happens only after all validations passed, so
	// pre-flight rejections never need cleanup
	if err := l.core.Ledger().AddFileEntry(filePath, docType, workspace); err != nil {
		return nil, errors.New("IngestLogic.Ingest.Ledger.AddFileEntry", i18n.ERROR_INTERNAL, err)
	}

	state := &ingestState{}
	var docIDs types.DocIDs

	switch docType {
	case types.DOC_TYPE_IMAGE:
		docIDs, err = l.ingestImage(filePath, fileName, meta, workspace, state)
	case types.DOC_TYPE_TEXT:
		docIDs, err = l.ingestPlainText(filePath, fileName, meta, workspace, state)
	default:
		docIDs, err = l.ingestStructured(filePath, fileName, ext, meta, workspace, state)
	}

	if err != nil {
		l.revert(filePath, workspace, state)
		l.core.Metrics().IngestInc(docType, "error")
		if _, ok := err.(*errors.CustomizedError); ok {
			return nil, err
		}
		return nil, errors.New("IngestLogic.Ingest."+docType, i18n.ERROR_PROCESSING_FAILED, err).Kind(errors.KIND_PROCESSING_FAILED)
	}

	l.core.Metrics().IngestInc(docType, "ok")
	return docIDs, nil
}

// revert undoes the registrations of a failed ingestion. Each step is
// best-effort and logged, the error that triggered the revert wins.
func (l *IngestLogic) revert(filePath, workspace string, state *ingestState) {
	fileName := filepath.Base(filePath)

	if _, err := l.core.Ledger().RemoveFileEntry(fileName, workspace); err != nil {
		slog.Error("ingest revert: file list entry", slog.String("file", fileName), slog.Any("error", err))
	}
	if state.docLedger != "" {
		if _, err := l.core.Ledger().DeleteDocRecord(state.docLedger, workspace); err != nil {
			slog.Error("ingest revert: doc ledger entry", slog.String("name", state.docLedger), slog.Any("error", err))
		}
	}
	for _, id := range state.imageIDs {
		if _, err := l.core.Ledger().DeleteImageRecord(id); err != nil {
			slog.Error("ingest revert: image ledger entry", slog.String("id", id), slog.Any("error", err))
		}
	}
	for _, id := range state.vectorIDs {
		if err := l.core.Store().VectorStore().Delete(l.ctx, state.collection, id); err != nil {
			slog.Error("ingest revert: vector entry", slog.String("id", id), slog.Any("error", err))
		}
	}
	if state.outputPath != "" {
		if err := os.RemoveAll(filepath.Dir(state.outputPath)); err != nil {
			slog.Error("ingest revert: output dir", slog.String("path", state.outputPath), slog.Any("error", err))
		}
	}
}

func (l *IngestLogic) ingestImage(filePath, fileName string, meta types.IngestMetadata, workspace string, state *ingestState) (types.DocIDs, error) {
	state.collection = types.VECTOR_COLLECTION_IMAGE

	description := meta.UserDescription
	if description == "" {
		generated, err := l.core.Oracle().DescribeImage(l.ctx, filePath)
		if err != nil {
			return nil, fmt.Errorf("describe image: %w", err)
		}
		description = generated
	}

	title := meta.Title
	if title == "" {
		title = fileName
	}

	textVector, err := l.core.Oracle().EmbedText(l.ctx, title+"\n"+description)
	if err != nil {
		return nil, fmt.Errorf("embed image text: %w", err)
	}
	imageVector, err := l.core.Oracle().EmbedImage(l.ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("embed image: %w", err)
	}

	docID := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	record := types.VectorRecord{
		ID:            docID,
		Embedding:     pgvector.NewVector(blendVectors(textVector, imageVector, imageBlendTextWeight, imageBlendImageWeight)),
		Document:      description,
		Source:        fileName,
		Title:         title,
		DocumentType:  types.DOC_TYPE_IMAGE,
		WorkspaceName: workspace,
		OriginalPath:  filePath,
	}
	if err := l.core.Store().VectorStore().Create(l.ctx, state.collection, record); err != nil {
		return nil, fmt.Errorf("index image vector: %w", err)
	}
	state.vectorIDs = append(state.vectorIDs, docID)

	if err := l.core.Ledger().SetImageRecord(docID, ledger.ImageRecord{
		WorkspaceName:   workspace,
		Title:           title,
		UserDescription: meta.UserDescription,
		ExtractedText:   description,
		OriginalPath:    filePath,
		DocumentType:    types.DOC_TYPE_IMAGE,
		Timestamp:       timestamp,
	}); err != nil {
		return nil, fmt.Errorf("write image ledger: %w", err)
	}
	state.imageIDs = append(state.imageIDs, docID)

	if err := l.registerFile(workspace, fileName, filePath, []string{docID}, nil); err != nil {
		return nil, err
	}

	return types.DocIDs{docID}, nil
}

func (l *IngestLogic) ingestPlainText(filePath, fileName string, meta types.IngestMetadata, workspace string, state *ingestState) (types.DocIDs, error) {
	state.collection = types.VECTOR_COLLECTION_TEXT

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	content := string(raw)

	chunks := SplitText(content, l.core.Cfg().Ingest.ChunkSize)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	docType := meta.DocumentType
	if docType == "" {
		docType, err = l.core.Oracle().Classify(l.ctx, chunks[0])
		if err != nil {
			slog.Warn("document classification failed", slog.String("file", fileName), slog.Any("error", err))
			docType = types.DOC_TYPE_TEXT
		}
	}

	title := meta.Title
	if title == "" {
		title = fileName
	}

	base := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	records := make([]types.VectorRecord, 0, len(chunks))
	ids := make(types.DocIDs, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := l.core.Oracle().EmbedText(l.ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i+1, err)
		}
		id := fmt.Sprintf("%s-%d", base, i+1)
		ids = append(ids, id)
		records = append(records, types.VectorRecord{
			ID:            id,
			Embedding:     pgvector.NewVector(embedding),
			Document:      chunk,
			Source:        base,
			Title:         title,
			DocumentType:  docType,
			WorkspaceName: workspace,
			Chunk:         i + 1,
			TotalChunks:   len(chunks),
			OriginalPath:  filePath,
		})
	}

	if err := l.core.Store().VectorStore().BatchCreate(l.ctx, state.collection, records); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}
	state.vectorIDs = append(state.vectorIDs, ids...)

	if err := l.core.Ledger().SetDocRecord(fileName, ledger.DocRecord{
		DocIDs:        ids,
		WorkspaceName: workspace,
		Title:         title,
		DocumentType:  docType,
		Source:        filePath,
		Timestamp:     timestamp,
	}); err != nil {
		return nil, fmt.Errorf("write doc ledger: %w", err)
	}
	state.docLedger = fileName

	if err := l.registerFile(workspace, fileName, filePath, ids, nil); err != nil {
		return nil, err
	}

	return ids, nil
}

func (l *IngestLogic) ingestStructured(filePath, fileName, ext string, meta types.IngestMetadata, workspace string, state *ingestState) (types.DocIDs, error) {
	state.collection = types.VECTOR_COLLECTION_TEXT

	extractor, ok := l.core.Extractor(ext)
	if !ok {
		return nil, fmt.Errorf("no extractor registered for %s", ext)
	}

	blobPath, err := extractor.Extract(l.ctx, filePath, workspace)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	state.outputPath = blobPath

	blob, err := extract.LoadBlob(blobPath)
	if err != nil {
		return nil, fmt.Errorf("load blob: %w", err)
	}
	fullText := blob.ConcatenatedText()

	summary, err := l.core.Oracle().Summarize(l.ctx, fullText)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	docType := meta.DocumentType
	if docType == "" {
		docType = blob.Metadata.DocumentType
	}
	if docType == "" {
		docType, err = l.core.Oracle().Classify(l.ctx, fullText)
		if err != nil {
			slog.Warn("document classification failed", slog.String("file", fileName), slog.Any("error", err))
			docType = types.DOC_TYPE_STRUCTURED
		}
	}

	title := meta.Title
	if title == "" {
		title = blob.Metadata.Title
	}
	if title == "" {
		title = fileName
	}

	docID := uuid.NewString()
	timestamp := blob.Metadata.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	embedding, err := l.core.Oracle().EmbedText(l.ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("embed summary: %w", err)
	}

	record := types.VectorRecord{
		ID:            docID,
		Embedding:     pgvector.NewVector(embedding),
		Document:      summary,
		Source:        fileName,
		Title:         title,
		DocumentType:  docType,
		WorkspaceName: workspace,
		OriginalPath:  filePath,
	}
	if err := l.core.Store().VectorStore().Create(l.ctx, state.collection, record); err != nil {
		return nil, fmt.Errorf("index summary vector: %w", err)
	}
	state.vectorIDs = append(state.vectorIDs, docID)

	if err := l.core.Ledger().SetDocRecord(fileName, ledger.DocRecord{
		DocIDs:        types.DocIDs{docID},
		WorkspaceName: workspace,
		Title:         title,
		DocumentType:  docType,
		OutputPath:    blobPath,
		Source:        filePath,
		Timestamp:     timestamp,
	}); err != nil {
		return nil, fmt.Errorf("write doc ledger: %w", err)
	}
	state.docLedger = fileName

	document := &types.Document{
		DocID:         docID,
		Title:         title,
		WorkspaceName: workspace,
		Timestamp:     timestamp,
		ContentPath:   blobPath,
	}
	if err := l.registerFile(workspace, fileName, filePath, []string{docID}, document); err != nil {
		return nil, err
	}

	return types.DocIDs{docID}, nil
}

// registerFile performs the relational bookkeeping of one ingested
// file in a single transaction: workspace resolution, the file row,
// its doc_id mappings, the total_files counter and, for structured
// documents, the content-path row.
func (l *IngestLogic) registerFile(workspace, fileName, filePath string, docIDs []string, document *types.Document) error {
	return l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		ws, err := l.core.Store().WorkspaceStore().GetByName(ctx, workspace)
		if err != nil {
			return fmt.Errorf("resolve workspace: %w", err)
		}

		var wsID int64
		if ws == nil {
			wsID, err = l.core.Store().WorkspaceStore().Create(ctx, types.Workspace{Name: workspace})
			if err != nil {
				return fmt.Errorf("create workspace: %w", err)
			}
		} else {
			wsID = ws.ID
		}

		fileID, err := l.core.Store().WorkspaceFileStore().Create(ctx, types.WorkspaceFile{
			WorkspaceID: wsID,
			FileName:    fileName,
			FilePath:    filePath,
		})
		if err != nil {
			return fmt.Errorf("create file row: %w", err)
		}

		mappings := make([]types.WorkspaceFileDoc, 0, len(docIDs))
		for _, id := range docIDs {
			mappings = append(mappings, types.WorkspaceFileDoc{
				WorkspaceID: wsID,
				FileID:      fileID,
				DocID:       id,
			})
		}
		if err := l.core.Store().WorkspaceFileDocStore().BatchCreate(ctx, mappings); err != nil {
			return fmt.Errorf("create doc id rows: %w", err)
		}

		if document != nil {
			if err := l.core.Store().DocumentStore().Create(ctx, *document); err != nil {
				return fmt.Errorf("create document row: %w", err)
			}
		}

		if err := l.core.Store().WorkspaceStore().UpdateTotalFiles(ctx, wsID, 1); err != nil {
			return fmt.Errorf("bump total_files: %w", err)
		}
		return nil
	})
}

// blendVectors combines two embeddings by weight, zero-padding the
// shorter one so dimensions align.
func blendVectors(a, b []float32, aWeight, bWeight float64) []float32 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var av, bv float32
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = float32(aWeight)*av + float32(bWeight)*bv
	}
	return out
}
