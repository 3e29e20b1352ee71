package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) getOutput(ctx *gin.Context) {
	out, ok := m.Engine.LatestOutput()
	if !ok {
		returnErrorJsonCode(fmt.Errorf("no cycle has completed yet"), ctx, 404)
		return
	}
	ctx.JSON(200, out)
}
