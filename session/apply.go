package session

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/chaos-io/maskedit/canvas"
	"github.com/chaos-io/maskedit/editsvc"
	"github.com/chaos-io/maskedit/util"
)

type editRequest struct {
	mode    Mode
	payload canvas.Payload
	prompt  string
}

// Apply 按当前模式构造编辑请求并提交给外部服务
//
// 同一会话同时只允许一个请求；失败时图片保持不变，成功时整体替换底图，
// 蒙版、模式、提示词和 logo 复位。处理中标记无论成败都会清除。
func (s *State) Apply(ctx context.Context) error {
	req, err := s.begin()
	if err != nil {
		return err
	}
	defer s.release()

	done := util.Trace("apply edit", "mode", req.mode)
	result, err := s.editor.SubmitEdit(ctx, req.payload.Data, req.payload.MIMEType, req.prompt)
	done()
	if err != nil {
		slog.Warn("edit service failed", "mode", req.mode, "error", err)
		return &ServiceError{Err: err}
	}

	img, err := editsvc.DecodeResult(result)
	if err != nil {
		slog.Warn("edit service returned unreadable image", "mode", req.mode, "error", err)
		return &ServiceError{Err: fmt.Errorf("unreadable result: %w", err)}
	}

	s.commit(img)
	return nil
}

// begin 校验输入、编码载荷并置处理中标记
func (s *State) begin() (*editRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing {
		return nil, ErrBusy
	}
	if s.display == nil {
		return nil, ErrNoImage
	}

	req := &editRequest{mode: s.mode}
	var err error
	switch s.mode {
	case ModeErase:
		if !s.mask.HasContent() {
			return nil, fmt.Errorf("%w: draw over the area to remove first", ErrInputMissing)
		}
		req.prompt = editsvc.RemovalPrompt
		req.payload, err = canvas.EncodeMaskedPayload(s.display, s.mask.Image())
	case ModeBackground:
		if s.prompt == "" {
			return nil, fmt.Errorf("%w: describe a background or pick a preset", ErrInputMissing)
		}
		req.prompt = editsvc.BackgroundPrompt(s.prompt)
		req.payload, err = canvas.EncodePayload(s.display)
	case ModeEnhance:
		req.prompt = editsvc.EnhancePrompt
		req.payload, err = canvas.EncodePayload(s.display)
	default:
		return nil, fmt.Errorf("%w: no edit selected in mode %q", ErrInputMissing, s.mode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	s.stroke.Up()
	s.processing = true
	return req, nil
}

func (s *State) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = false
}

// commit 用服务结果替换底图
func (s *State) commit(img image.Image) {
	img = util.ResizeWithinMax(img, s.opts.MaxImageSide)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceSurface(img)
}
