package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/docuquery/docuquery/app/logic/v1"
	"github.com/docuquery/docuquery/app/response"
	"github.com/docuquery/docuquery/pkg/types"
	"github.com/docuquery/docuquery/pkg/utils"
)

type AskRequest struct {
	Question    string `json:"question" binding:"required"`
	SearchClass string `json:"search_class" binding:"omitempty,oneof=text image"`
	Workspace   string `json:"workspace"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

func (s *HttpSrv) Ask(c *gin.Context) {
	var req AskRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	if req.SearchClass == "" {
		req.SearchClass = types.SEARCH_CLASS_TEXT
	}

	answer, err := v1.NewAnswerLogic(c, s.Core).Answer(req.Question, req.SearchClass, req.Workspace)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, AskResponse{
		Answer: answer,
	})
}
