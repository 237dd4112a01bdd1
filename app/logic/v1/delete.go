package v1

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/docuquery/docuquery/app/core"
	"github.com/docuquery/docuquery/pkg/errors"
	"github.com/docuquery/docuquery/pkg/i18n"
	"github.com/docuquery/docuquery/pkg/types"
)

type DeleteLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewDeleteLogic(ctx context.Context, core *core.Core) *DeleteLogic {
	return &DeleteLogic{
		ctx:  ctx,
		core: core,
	}
}

// DeleteFile cascades one file's removal across the vector
// collections, the relational rows, the ledgers and the filesystem.
// Sub-steps log and continue rather than abort, so every later layer
// still gets its cleanup attempt. The boolean reports whether the
// ledger and physical layers both fully succeeded; vector and
// relational hiccups are logged but do not flip it. A physical file
// that is already gone counts as deleted.
func (l *DeleteLogic) DeleteFile(workspace, fileName string) (bool, error) {
	ws, err := l.core.Store().WorkspaceStore().GetByName(l.ctx, workspace)
	if err != nil {
		return false, errors.New("DeleteLogic.DeleteFile.WorkspaceStore.GetByName", i18n.ERROR_INTERNAL, err)
	}
	if ws == nil {
		return false, errors.New("DeleteLogic.DeleteFile.WorkspaceNotFound", i18n.ERROR_WORKSPACE_NOT_FOUND, nil).
			Code(http.StatusNotFound).Kind(errors.KIND_NOT_FOUND)
	}

	file, err := l.core.Store().WorkspaceFileStore().Get(l.ctx, ws.ID, fileName)
	if err != nil {
		return false, errors.New("DeleteLogic.DeleteFile.WorkspaceFileStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if file == nil {
		return false, errors.New("DeleteLogic.DeleteFile.FileNotFound", i18n.ERROR_DOCUMENT_NOT_FOUND, nil).
			Code(http.StatusNotFound).Kind(errors.KIND_NOT_FOUND)
	}

	docIDs, err := l.core.Store().WorkspaceFileDocStore().ListDocIDs(l.ctx, file.ID)
	if err != nil {
		slog.Error("delete file: list doc ids", slog.String("file", fileName), slog.Any("error", err))
	}

	// content class comes from the extension, the same selection
	// ingestion made; ledger state may be missing or stale and must
	// not steer the cascade
	ext := strings.ToLower(filepath.Ext(fileName))
	isImage := imageExtensions[ext]

	// the extracted-output directory is resolved before anything is
	// removed. The doc ledger is keyed by display name, so its record
	// may belong to a same-named file in another workspace; the
	// recorded path is trusted only on a workspace match, otherwise
	// the directory is derived from the output layout.
	outputDir := ""
	if !isImage && !plainExtensions[ext] {
		outputDir = filepath.Join(l.core.Cfg().Storage.OutputDir, workspace, strings.TrimSuffix(fileName, ext))
		if rec, ok, err := l.core.Ledger().GetDocRecord(fileName); err != nil {
			slog.Error("delete file: read doc ledger", slog.String("file", fileName), slog.Any("error", err))
		} else if ok && rec.OutputPath != "" && strings.EqualFold(rec.WorkspaceName, workspace) {
			outputDir = filepath.Dir(rec.OutputPath)
		}
	}

	collection := types.VECTOR_COLLECTION_TEXT
	if isImage {
		collection = types.VECTOR_COLLECTION_IMAGE
	}
	for _, id := range docIDs {
		if err := l.core.Store().VectorStore().Delete(l.ctx, collection, id); err != nil {
			slog.Error("delete file: vector entry", slog.String("id", id), slog.Any("error", err))
		}
	}

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().WorkspaceFileDocStore().DeleteByFileID(ctx, file.ID); err != nil {
			return err
		}
		if err := l.core.Store().WorkspaceFileStore().Delete(ctx, file.ID); err != nil {
			return err
		}
		for _, id := range docIDs {
			if err := l.core.Store().DocumentStore().Delete(ctx, id); err != nil {
				return err
			}
		}
		return l.core.Store().WorkspaceStore().UpdateTotalFiles(ctx, ws.ID, -1)
	})
	if err != nil {
		slog.Error("delete file: relational rows", slog.String("file", fileName), slog.Any("error", err))
	}

	ledgerOK := l.removeLedgerEntries(workspace, fileName, docIDs, isImage)
	physicalOK := l.removePhysical(file.FilePath, outputDir)

	ok := ledgerOK && physicalOK
	if ok {
		l.core.Metrics().DeleteInc("ok")
	} else {
		l.core.Metrics().DeleteInc("partial")
	}
	return ok, nil
}

func (l *DeleteLogic) removeLedgerEntries(workspace, fileName string, docIDs []string, isImage bool) bool {
	ok := true

	if isImage {
		if _, err := l.core.Ledger().DeleteImageRecordByName(fileName, workspace); err != nil {
			slog.Error("delete file: image ledger by name", slog.String("file", fileName), slog.Any("error", err))
			ok = false
		}
		for _, id := range docIDs {
			if _, err := l.core.Ledger().DeleteImageRecord(id); err != nil {
				slog.Error("delete file: image ledger by id", slog.String("id", id), slog.Any("error", err))
				ok = false
			}
		}
	} else {
		if _, err := l.core.Ledger().DeleteDocRecord(fileName, workspace); err != nil {
			slog.Error("delete file: doc ledger", slog.String("file", fileName), slog.Any("error", err))
			ok = false
		}
	}

	if _, err := l.core.Ledger().RemoveFileEntry(fileName, workspace); err != nil {
		slog.Error("delete file: file list entry", slog.String("file", fileName), slog.Any("error", err))
		ok = false
	}
	return ok
}

// removePhysical deletes the uploaded file and, for structured
// documents, the extracted-output directory. Absence is success.
func (l *DeleteLogic) removePhysical(filePath, outputDir string) bool {
	ok := true

	if outputDir != "" {
		if err := os.RemoveAll(outputDir); err != nil {
			slog.Error("delete file: output dir", slog.String("path", outputDir), slog.Any("error", err))
			ok = false
		}
	}

	if filePath != "" {
		// a read-only bit on the upload should not block deletion
		_ = os.Chmod(filePath, 0o644)
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			slog.Error("delete file: upload", slog.String("path", filePath), slog.Any("error", err))
			ok = false
		}
	}
	return ok
}

// DeleteWorkspace removes every file of a workspace sequentially and
// then the workspace row itself. Individual file failures are logged
// and skipped; the sweep keeps going so one stubborn file cannot
// strand the rest.
func (l *DeleteLogic) DeleteWorkspace(workspace string) (bool, error) {
	ws, err := l.core.Store().WorkspaceStore().GetByName(l.ctx, workspace)
	if err != nil {
		return false, errors.New("DeleteLogic.DeleteWorkspace.WorkspaceStore.GetByName", i18n.ERROR_INTERNAL, err)
	}
	if ws == nil {
		return false, errors.New("DeleteLogic.DeleteWorkspace.NotFound", i18n.ERROR_WORKSPACE_NOT_FOUND, nil).
			Code(http.StatusNotFound).Kind(errors.KIND_NOT_FOUND)
	}

	files, err := l.core.Store().WorkspaceFileStore().List(l.ctx, types.GetWorkspaceFileOptions{WorkspaceID: ws.ID})
	if err != nil {
		return false, errors.New("DeleteLogic.DeleteWorkspace.WorkspaceFileStore.List", i18n.ERROR_INTERNAL, err)
	}

	allOK := true
	for _, file := range files {
		ok, err := l.DeleteFile(workspace, file.FileName)
		if err != nil || !ok {
			slog.Warn("delete workspace: file removal incomplete",
				slog.String("workspace", workspace),
				slog.String("file", file.FileName),
				slog.Any("error", err))
			allOK = false
		}
	}

	if err := l.core.Store().WorkspaceStore().Delete(l.ctx, ws.ID); err != nil {
		slog.Error("delete workspace: workspace row", slog.String("workspace", workspace), slog.Any("error", err))
		l.core.Metrics().DeleteInc("error")
		return false, nil
	}

	for _, dir := range []string{
		filepath.Join(l.core.Cfg().Storage.UploadDir, workspace),
		filepath.Join(l.core.Cfg().Storage.OutputDir, workspace),
	} {
		if err := os.RemoveAll(dir); err != nil {
			slog.Error("delete workspace: directory", slog.String("path", dir), slog.Any("error", err))
			allOK = false
		}
	}

	if allOK {
		l.core.Metrics().DeleteInc("ok")
	} else {
		l.core.Metrics().DeleteInc("partial")
	}
	return allOK, nil
}
