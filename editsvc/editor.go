// Package editsvc 外部图片编辑服务（生成式模型）的客户端
package editsvc

import (
	"context"
	"errors"
)

// ErrNoImage 服务没有返回图片
var ErrNoImage = errors.New("no image returned")

// Editor 提交一张图片和指令，返回新图（data URL 或 base64）
type Editor interface {
	SubmitEdit(ctx context.Context, imageBase64, mimeType, prompt string) (string, error)
}

// Passthrough 原样返回输入，本地调试时用
type Passthrough struct{}

func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

func (p *Passthrough) SubmitEdit(ctx context.Context, imageBase64, mimeType, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "data:" + mimeType + ";base64," + imageBase64, nil
}
