// Package api exposes the engine over HTTP: the latest cycle output, the
// latest macro snapshot, and an on-demand scan trigger.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alphapulse/internal/domain"
)

// Engine is the cycle runner the handlers sit in front of.
type Engine interface {
	RunCycle(ctx context.Context) (domain.SystemOutput, error)
	LatestOutput() (domain.SystemOutput, bool)
	LatestSnapshot() (domain.MacroSnapshot, bool)
}

type ApiHandler struct {
	Log    *zap.SugaredLogger
	Engine Engine
}

func (m ApiHandler) StartApi(port int) error {
	return m.buildRouter().Run(fmt.Sprintf(":%d", port))
}

func (m ApiHandler) buildRouter() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddlware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to alphapulse"})
	})
	router.GET("/output", m.getOutput)
	router.GET("/macro/snapshot", m.getMacroSnapshot)
	router.POST("/scan", m.scan)

	return router
}

func returnErrorJson(err error, c *gin.Context) {
	c.AbortWithStatusJSON(500, gin.H{
		"error": err.Error(),
	})
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddlware(ctx *gin.Context) {
	requestID := uuid.New()
	ctx.Set("requestID", requestID)

	start := time.Now().UTC()
	ctx.Next()

	m.Log.Infow("api request",
		"requestID", requestID,
		"ip", ctx.ClientIP(),
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
