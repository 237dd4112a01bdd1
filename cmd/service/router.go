package service

import (
	"github.com/docuquery/docuquery/app/core"
	"github.com/docuquery/docuquery/app/response"
	"github.com/docuquery/docuquery/cmd/service/handler"
	"github.com/docuquery/docuquery/cmd/service/middleware"
	"github.com/docuquery/docuquery/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.ResponseTime(s.Core))

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	{
		apiV1.POST("/files/process", s.ProcessFile)
		apiV1.POST("/chat/ask", s.Ask)

		workspaces := apiV1.Group("/workspaces")
		{
			workspaces.POST("", s.CreateWorkspace)
			workspaces.GET("", s.ListWorkspaces)
			workspaces.GET("/:workspace", s.GetWorkspaceDetail)
			workspaces.GET("/:workspace/files", s.ListWorkspaceFiles)
			workspaces.DELETE("/:workspace", s.DeleteWorkspace)
			workspaces.DELETE("/:workspace/files/:file", s.DeleteFile)
		}
	}
}
