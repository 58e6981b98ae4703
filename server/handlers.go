package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/maskedit/canvas"
	"github.com/chaos-io/maskedit/editsvc"
	"github.com/chaos-io/maskedit/session"
	"github.com/chaos-io/maskedit/util"
	nhttp "github.com/chaos-io/maskedit/util/http"
)

const stateKey = "session_state"

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type brushRequest struct {
	Diameter float64 `json:"diameter" binding:"required"`
}

// logoRequest 未给出的字段沿用当前位置
type logoRequest struct {
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Scale *float64 `json:"scale"`
}

type importRequest struct {
	URL string `json:"url" binding:"required"`
}

type promptRequest struct {
	Text   string `json:"text"`
	Preset string `json:"preset"`
}

// loadSession 按路径 id 取会话，不存在返回 404
func (s *Server) loadSession(c *gin.Context) {
	st, ok := s.store.Get(c.Param("id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("session %q not found", c.Param("id")))
		return
	}
	c.Set(stateKey, st)
	c.Next()
}

func state(c *gin.Context) *session.State {
	return c.MustGet(stateKey).(*session.State)
}

// readUpload 读取 multipart 文件字段，字段不存在时 found 为 false
func (s *Server) readUpload(c *gin.Context, field string) (data []byte, found bool, err error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadSize)
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *Server) presets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"colors": editsvc.Colors(), "scenes": editsvc.Scenes()})
}

// createSession 新建会话，可以同时上传 image
func (s *Server) createSession(c *gin.Context) {
	data, found, err := s.readUpload(c, "image")
	if err != nil {
		fail(c, fmt.Errorf("%w: %w", session.ErrInputMissing, err))
		return
	}

	id, st := s.store.Create()
	if found {
		if err := st.LoadImage(data); err != nil {
			s.store.Delete(id)
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "session": st.Info()})
}

func (s *Server) info(c *gin.Context) {
	c.JSON(http.StatusOK, state(c).Info())
}

func (s *Server) deleteSession(c *gin.Context) {
	s.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// uploadImage multipart 上传，或 JSON {"url": ...} 从远程导入
func (s *Server) uploadImage(c *gin.Context) {
	if c.ContentType() == gin.MIMEJSON {
		s.importImage(c)
		return
	}
	s.upload(c, "image", state(c).LoadImage)
}

func (s *Server) importImage(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	data, err := util.FetchImage(c.Request.Context(), s.opts.Fetcher, req.URL, s.opts.MaxUploadSize)
	switch {
	case errors.Is(err, nhttp.ErrResponseTooLarge):
		abortWithError(c, http.StatusRequestEntityTooLarge, err)
		return
	case errors.Is(err, util.ErrUnsupportedURL), errors.Is(err, util.ErrNotImage):
		abortWithError(c, http.StatusBadRequest, err)
		return
	case err != nil:
		abortWithError(c, http.StatusBadGateway, err)
		return
	}

	st := state(c)
	if err := st.LoadImage(data); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Info())
}

func (s *Server) uploadLogo(c *gin.Context) {
	s.upload(c, "logo", state(c).SetLogo)
}

func (s *Server) upload(c *gin.Context, field string, apply func([]byte) error) {
	data, found, err := s.readUpload(c, field)
	if err != nil {
		fail(c, fmt.Errorf("%w: %w", session.ErrInputMissing, err))
		return
	}
	if !found {
		fail(c, fmt.Errorf("%w: multipart field %q is required", session.ErrInputMissing, field))
		return
	}
	if err := apply(data); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state(c).Info())
}

func (s *Server) reset(c *gin.Context) {
	st := state(c)
	if err := st.ResetImage(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Info())
}

func (s *Server) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	st := state(c)
	if err := st.SetMode(mode); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Info())
}

func (s *Server) setBrush(c *gin.Context) {
	var req brushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diameter": state(c).SetBrush(req.Diameter)})
}

func (s *Server) pointer(c *gin.Context) {
	var msg pointerMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	reply, err := dispatchPointer(state(c), msg)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) undo(c *gin.Context) {
	s.mutate(c, state(c).Undo)
}

func (s *Server) clearMask(c *gin.Context) {
	s.mutate(c, state(c).ClearMask)
}

func (s *Server) removeLogo(c *gin.Context) {
	s.mutate(c, state(c).RemoveLogo)
}

func (s *Server) mutate(c *gin.Context, op func() error) {
	if err := op(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state(c).Info())
}

func (s *Server) placeLogo(c *gin.Context) {
	var req logoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	st := state(c)
	current := st.Info().Logo
	if current == nil {
		fail(c, fmt.Errorf("%w: no logo uploaded", session.ErrInputMissing))
		return
	}
	x, y, scale := current.X, current.Y, current.Scale
	if req.X != nil {
		x = *req.X
	}
	if req.Y != nil {
		y = *req.Y
	}
	if req.Scale != nil {
		scale = *req.Scale
	}
	if err := st.PlaceLogo(x, y, scale); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Info())
}

// setPrompt preset 优先于 text
func (s *Server) setPrompt(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	st := state(c)
	if req.Preset != "" {
		s.mutate(c, func() error { return st.SelectPreset(req.Preset) })
		return
	}
	s.mutate(c, func() error { return st.SetPrompt(req.Text) })
}

// apply 客户端断开不会取消已发出的编辑，超时由编辑服务客户端自己控制
func (s *Server) apply(c *gin.Context) {
	st := state(c)
	if err := st.Apply(context.WithoutCancel(c.Request.Context())); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Info())
}

func (s *Server) preview(c *gin.Context) {
	img, err := state(c).Preview()
	if err != nil {
		fail(c, err)
		return
	}
	data, err := canvas.EncodePNG(img)
	if err != nil {
		fail(c, fmt.Errorf("%w: %w", session.ErrEncoding, err))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) download(c *gin.Context) {
	data, name, err := state(c).Download()
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(name))
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) downloadPDF(c *gin.Context) {
	st := state(c)
	var buf bytes.Buffer
	if err := st.PDF(&buf); err != nil {
		fail(c, err)
		return
	}
	name := strings.TrimSuffix(st.FileName(), ".png") + ".pdf"
	c.Header("Content-Disposition", attachment(name))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
