// Package server 编辑会话的 HTTP / WebSocket 接口
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chaos-io/maskedit/canvas"
	"github.com/chaos-io/maskedit/session"
	nhttp "github.com/chaos-io/maskedit/util/http"
)

const (
	RequestIDHeader = "X-Request-ID"

	defaultMaxUpload = 20 << 20
)

type Options struct {
	MaxUploadSize int64         // 单个上传文件的字节上限
	Fetcher       nhttp.IClient // 按 URL 导入图片时使用，默认 NewHTTPClient
}

type Server struct {
	store  *session.Store
	opts   Options
	engine *gin.Engine
}

func New(store *session.Store, opts Options) *Server {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = defaultMaxUpload
	}
	if opts.Fetcher == nil {
		opts.Fetcher = nhttp.NewHTTPClient()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger())

	s := &Server{store: store, opts: opts, engine: engine}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.store.Len()})
	})

	api := s.engine.Group("/api")
	api.GET("/presets", s.presets)
	api.POST("/sessions", s.createSession)

	sess := api.Group("/sessions/:id", s.loadSession)
	sess.GET("", s.info)
	sess.DELETE("", s.deleteSession)
	sess.POST("/image", s.uploadImage)
	sess.POST("/reset", s.reset)
	sess.PUT("/mode", s.setMode)
	sess.PUT("/brush", s.setBrush)
	sess.POST("/pointer", s.pointer)
	sess.GET("/ws", s.pointerStream)
	sess.POST("/undo", s.undo)
	sess.POST("/mask/clear", s.clearMask)
	sess.POST("/logo", s.uploadLogo)
	sess.PUT("/logo", s.placeLogo)
	sess.DELETE("/logo", s.removeLogo)
	sess.PUT("/prompt", s.setPrompt)
	sess.POST("/apply", s.apply)
	sess.GET("/preview", s.preview)
	sess.GET("/download", s.download)
	sess.GET("/download.pdf", s.downloadPDF)
}

// requestID 给每个请求分配 X-Request-ID，客户端已带的沿用
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "http request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

// statusOf 错误到 HTTP 状态码
func statusOf(err error) int {
	var serviceErr *session.ServiceError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &serviceErr):
		return http.StatusBadGateway
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, session.ErrEncoding):
		return http.StatusInternalServerError
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrInputMissing), errors.Is(err, canvas.ErrNotMounted):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Warn("request failed", "request_id", c.GetString("request_id"), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func fail(c *gin.Context, err error) {
	abortWithError(c, statusOf(err), err)
}
