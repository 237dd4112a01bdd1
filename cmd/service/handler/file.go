package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	v1 "github.com/docuquery/docuquery/app/logic/v1"
	"github.com/docuquery/docuquery/app/response"
	"github.com/docuquery/docuquery/pkg/errors"
	"github.com/docuquery/docuquery/pkg/i18n"
	"github.com/docuquery/docuquery/pkg/types"
	"github.com/docuquery/docuquery/pkg/utils"
)

type ProcessFileRequest struct {
	Workspace       string `json:"workspace" form:"workspace" binding:"required"`
	Title           string `json:"title" form:"title"`
	DocumentType    string `json:"document_type" form:"document_type"`
	UserDescription string `json:"user_description" form:"user_description"`
}

type ProcessFileResponse struct {
	DocIDs types.DocIDs `json:"doc_id"`
}

// ProcessFile receives a multipart upload, stages it under the
// workspace upload directory and runs the ingestion pipeline. A
// failed ingestion removes the staged copy.
func (s *HttpSrv) ProcessFile(c *gin.Context) {
	var req ProcessFileRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	upload, err := c.FormFile("file")
	if err != nil {
		response.APIError(c, errors.New("ProcessFile.FormFile", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest))
		return
	}

	dir := filepath.Join(s.Core.Cfg().Storage.UploadDir, req.Workspace)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		response.APIError(c, errors.New("ProcessFile.MkdirAll", i18n.ERROR_INTERNAL, err))
		return
	}

	staged := filepath.Join(dir, filepath.Base(upload.Filename))
	if err = c.SaveUploadedFile(upload, staged); err != nil {
		response.APIError(c, errors.New("ProcessFile.SaveUploadedFile", i18n.ERROR_INTERNAL, err))
		return
	}

	docIDs, err := v1.NewIngestLogic(c, s.Core).Ingest(staged, types.IngestMetadata{
		Title:           req.Title,
		DocumentType:    req.DocumentType,
		UserDescription: req.UserDescription,
	}, req.Workspace)
	if err != nil {
		os.Remove(staged)
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ProcessFileResponse{
		DocIDs: docIDs,
	})
}

type DeleteFileResponse struct {
	Deleted bool `json:"deleted"`
}

func (s *HttpSrv) DeleteFile(c *gin.Context) {
	workspace := c.Param("workspace")
	fileName := c.Param("file")

	deleted, err := v1.NewDeleteLogic(c, s.Core).DeleteFile(workspace, fileName)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, DeleteFileResponse{
		Deleted: deleted,
	})
}
