package canvas

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
)

// ErrEncoding 合成或编码没能产出字节
var ErrEncoding = errors.New("encoding failed")

// Payload 提交给编辑服务的图片
type Payload struct {
	Data     string // base64，StdEncoding
	MIMEType string
}

// DataURL data:<mime>;base64,<data>
func (p Payload) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + p.Data
}

// EncodePNG 编码为 PNG
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: surface not ready", ErrEncoding)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}

// EncodePayload 编码为 PNG 再转 base64，MIME 类型按内容探测
func EncodePayload(img image.Image) (Payload, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return Payload{}, err
	}

	mime := mimetype.Detect(data).String()
	if mime == "application/octet-stream" {
		mime = "image/png"
	}

	return Payload{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mime,
	}, nil
}

// EncodeMaskedPayload 显示层上叠加红色蒙版后编码，用于移除物体
func EncodeMaskedPayload(display, mask image.Image) (Payload, error) {
	if display == nil || mask == nil {
		return Payload{}, fmt.Errorf("%w: surface not ready", ErrEncoding)
	}
	if display.Bounds().Size() != mask.Bounds().Size() {
		return Payload{}, fmt.Errorf("%w: mask %v does not match surface %v",
			ErrEncoding, mask.Bounds().Size(), display.Bounds().Size())
	}
	return EncodePayload(Overlay(display, mask))
}
