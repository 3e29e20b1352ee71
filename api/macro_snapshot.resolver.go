package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) getMacroSnapshot(ctx *gin.Context) {
	snap, ok := m.Engine.LatestSnapshot()
	if !ok {
		returnErrorJsonCode(fmt.Errorf("no cycle has completed yet"), ctx, 404)
		return
	}
	ctx.JSON(200, snap)
}
