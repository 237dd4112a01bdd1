package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/docuquery/docuquery/app/logic/v1"
	"github.com/docuquery/docuquery/app/response"
	"github.com/docuquery/docuquery/pkg/types"
	"github.com/docuquery/docuquery/pkg/utils"
)

type CreateWorkspaceRequest struct {
	Name   string `json:"workspace_name" binding:"required"`
	UserID string `json:"user_id"`
}

type CreateWorkspaceResponse struct {
	ID int64 `json:"id"`
}

func (s *HttpSrv) CreateWorkspace(c *gin.Context) {
	var req CreateWorkspaceRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	id, err := v1.NewWorkspaceLogic(c, s.Core).CreateWorkspace(req.Name, req.UserID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, CreateWorkspaceResponse{
		ID: id,
	})
}

type ListWorkspacesResponse struct {
	List []types.Workspace `json:"list"`
}

func (s *HttpSrv) ListWorkspaces(c *gin.Context) {
	list, err := v1.NewWorkspaceLogic(c, s.Core).ListWorkspaces()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ListWorkspacesResponse{
		List: list,
	})
}

func (s *HttpSrv) GetWorkspaceDetail(c *gin.Context) {
	detail, err := v1.NewWorkspaceLogic(c, s.Core).GetWorkspaceDetail(c.Param("workspace"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, detail)
}

type ListWorkspaceFilesResponse struct {
	List []types.WorkspaceFile `json:"list"`
}

func (s *HttpSrv) ListWorkspaceFiles(c *gin.Context) {
	files, err := v1.NewWorkspaceLogic(c, s.Core).ListFiles(c.Param("workspace"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ListWorkspaceFilesResponse{
		List: files,
	})
}

type DeleteWorkspaceResponse struct {
	Deleted bool `json:"deleted"`
}

func (s *HttpSrv) DeleteWorkspace(c *gin.Context) {
	deleted, err := v1.NewDeleteLogic(c, s.Core).DeleteWorkspace(c.Param("workspace"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, DeleteWorkspaceResponse{
		Deleted: deleted,
	})
}
