package api

import (
	"github.com/gin-gonic/gin"
)

// scan runs one full analysis cycle synchronously and returns its output.
func (m ApiHandler) scan(ctx *gin.Context) {
	out, err := m.Engine.RunCycle(ctx.Request.Context())
	if err != nil {
		returnErrorJson(err, ctx)
		return
	}
	ctx.JSON(200, out)
}
