package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/docuquery/docuquery/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
