package v1

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuquery/docuquery/pkg/errors"
	"github.com/docuquery/docuquery/pkg/extract"
	"github.com/docuquery/docuquery/pkg/types"
)

func TestDeleteFileCascades(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	path := writeUpload(t, env, "research", "notes.txt", "alpha\nbeta")
	ids, err := ingest.Ingest(path, types.IngestMetadata{}, "research")
	require.NoError(t, err)

	ok, err := del.DeleteFile("research", "notes.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	for _, id := range ids {
		rec, err := env.core.Store().VectorStore().Get(context.Background(), types.VECTOR_COLLECTION_TEXT, id)
		require.NoError(t, err)
		assert.Nil(t, rec)
	}

	exists, err := env.core.Ledger().FileExists("notes.txt", "research")
	require.NoError(t, err)
	assert.False(t, exists)

	_, ok2, err := env.core.Ledger().GetDocRecord("notes.txt")
	require.NoError(t, err)
	assert.False(t, ok2)

	assert.NoFileExists(t, path)

	ws, err := env.core.Store().WorkspaceStore().GetByName(context.Background(), "research")
	require.NoError(t, err)
	require.NotNil(t, ws)
	assert.Equal(t, 0, ws.TotalFiles)

	file, err := env.core.Store().WorkspaceFileStore().Get(context.Background(), ws.ID, "notes.txt")
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestDeleteFileMissingPhysicalFileIsNotAnError(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	path := writeUpload(t, env, "research", "notes.txt", "alpha")
	_, err := ingest.Ingest(path, types.IngestMetadata{}, "research")
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	ok, err := del.DeleteFile("research", "notes.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteFileVectorFailureDoesNotBlockLaterSteps(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	path := writeUpload(t, env, "research", "notes.txt", "alpha")
	_, err := ingest.Ingest(path, types.IngestMetadata{}, "research")
	require.NoError(t, err)

	env.state.failOn("vector.delete", fmt.Errorf("vector store offline"))

	// a vector sub-step failure is logged and skipped; ledger and
	// physical removal still run and decide the outcome
	ok, err := del.DeleteFile("research", "notes.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err := env.core.Ledger().FileExists("notes.txt", "research")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoFileExists(t, path)
}

func TestDeleteFileUnknownFile(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	path := writeUpload(t, env, "research", "notes.txt", "alpha")
	_, err := ingest.Ingest(path, types.IngestMetadata{}, "research")
	require.NoError(t, err)

	_, err = del.DeleteFile("research", "ghost.txt")
	require.Error(t, err)
	assert.Equal(t, errors.KIND_NOT_FOUND, errors.KindOf(err))
}

func TestDeleteImageFile(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	path := writeUpload(t, env, "research", "chart.png", "png-bytes")
	ids, err := ingest.Ingest(path, types.IngestMetadata{Title: "Chart"}, "research")
	require.NoError(t, err)

	ok, err := del.DeleteFile("research", "chart.png")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Zero(t, env.state.vectorCount(types.VECTOR_COLLECTION_IMAGE))
	_, found, err := env.core.Ledger().GetImageRecord(ids[0])
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteStructuredFileRemovesOutputDir(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	blob := extract.StructuredBlob{
		Text:     map[string]string{"page_1": "content"},
		Metadata: extract.BlobMetadata{Title: "Report"},
	}
	path := writeStructuredUpload(t, env, "research", "report.json", blob)

	ids, err := ingest.Ingest(path, types.IngestMetadata{}, "research")
	require.NoError(t, err)

	doc, err := env.core.Store().DocumentStore().GetByDocID(context.Background(), ids[0])
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.FileExists(t, doc.ContentPath)

	ok, err := del.DeleteFile("research", "report.json")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoFileExists(t, doc.ContentPath)

	gone, err := env.core.Store().DocumentStore().GetByDocID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDeleteStructuredFileLeavesOtherWorkspaceBlob(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	blob := extract.StructuredBlob{
		Text:     map[string]string{"page_1": "content"},
		Metadata: extract.BlobMetadata{Title: "Report"},
	}
	pathA := writeStructuredUpload(t, env, "research", "report.json", blob)
	idsA, err := ingest.Ingest(pathA, types.IngestMetadata{}, "research")
	require.NoError(t, err)

	pathB := writeStructuredUpload(t, env, "archive", "report.json", blob)
	idsB, err := ingest.Ingest(pathB, types.IngestMetadata{}, "archive")
	require.NoError(t, err)

	docA, err := env.core.Store().DocumentStore().GetByDocID(context.Background(), idsA[0])
	require.NoError(t, err)
	require.NotNil(t, docA)
	docB, err := env.core.Store().DocumentStore().GetByDocID(context.Background(), idsB[0])
	require.NoError(t, err)
	require.NotNil(t, docB)

	// the doc ledger is keyed by display name, so the second ingest
	// overwrote the first workspace's record; the cascade must still
	// remove only its own output directory
	ok, err := del.DeleteFile("research", "report.json")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoFileExists(t, docA.ContentPath)
	assert.FileExists(t, docB.ContentPath)

	stillThere, err := env.core.Store().DocumentStore().GetByDocID(context.Background(), idsB[0])
	require.NoError(t, err)
	assert.NotNil(t, stillThere)
}

func TestDeleteImageFileWithUnreadableDocIDs(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	path := writeUpload(t, env, "research", "chart.png", "png-bytes")
	ids, err := ingest.Ingest(path, types.IngestMetadata{}, "research")
	require.NoError(t, err)

	env.state.failOn("filedoc.list", fmt.Errorf("database offline"))

	// the file is still treated as an image, so the image ledger is
	// swept by name even with no doc ids to go on
	ok, err := del.DeleteFile("research", "chart.png")
	require.NoError(t, err)
	assert.True(t, ok)

	_, found, err := env.core.Ledger().GetImageRecord(ids[0])
	require.NoError(t, err)
	assert.False(t, found)
	exists, err := env.core.Ledger().FileExists("chart.png", "research")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteImageFileWithCorruptImageLedger(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	path := writeUpload(t, env, "research", "chart.png", "png-bytes")
	_, err := ingest.Ingest(path, types.IngestMetadata{}, "research")
	require.NoError(t, err)
	require.Equal(t, 1, env.state.vectorCount(types.VECTOR_COLLECTION_IMAGE))

	// a corrupted image ledger reads as empty; the extension still
	// routes the vector delete to the image collection
	corrupt := filepath.Join(env.ledgerDir, "image_metadata.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))

	ok, err := del.DeleteFile("research", "chart.png")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Zero(t, env.state.vectorCount(types.VECTOR_COLLECTION_IMAGE))
}

func TestDeleteWorkspace(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := writeUpload(t, env, "research", name, "content of "+name)
		_, err := ingest.Ingest(path, types.IngestMetadata{}, "research")
		require.NoError(t, err)
	}
	keep := writeUpload(t, env, "other", "keep.txt", "survives")
	_, err := ingest.Ingest(keep, types.IngestMetadata{}, "other")
	require.NoError(t, err)

	ok, err := del.DeleteWorkspace("research")
	require.NoError(t, err)
	assert.True(t, ok)

	ws, err := env.core.Store().WorkspaceStore().GetByName(context.Background(), "research")
	require.NoError(t, err)
	assert.Nil(t, ws)

	assert.NoDirExists(t, env.uploadDir+"/research")

	// the untouched workspace keeps its file
	exists, err := env.core.Ledger().FileExists("keep.txt", "other")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.FileExists(t, keep)
}

func TestDeleteWorkspaceUnknown(t *testing.T) {
	env := newTestEnv(t)
	del := NewDeleteLogic(context.Background(), env.core)

	_, err := del.DeleteWorkspace("ghost")
	require.Error(t, err)
	assert.Equal(t, errors.KIND_NOT_FOUND, errors.KindOf(err))
}

func TestDeleteWorkspaceRowFailure(t *testing.T) {
	env := newTestEnv(t)
	ingest := NewIngestLogic(context.Background(), env.core)
	del := NewDeleteLogic(context.Background(), env.core)

	path := writeUpload(t, env, "research", "notes.txt", "alpha")
	_, err := ingest.Ingest(path, types.IngestMetadata{}, "research")
	require.NoError(t, err)

	env.state.failOn("workspace.delete", fmt.Errorf("database offline"))

	ok, err := del.DeleteWorkspace("research")
	require.NoError(t, err)
	assert.False(t, ok)
}
