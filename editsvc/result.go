package editsvc

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/chaos-io/maskedit/util"
)

// DecodeResult 解析服务返回的图片，支持 data:<mime>;base64,<data> 和裸 base64
func DecodeResult(result string) (image.Image, error) {
	data := strings.TrimSpace(result)
	if data == "" {
		return nil, ErrNoImage
	}

	if strings.HasPrefix(data, "data:") {
		idx := strings.Index(data, ",")
		if idx < 0 {
			return nil, errors.New("malformed data url")
		}
		if !strings.HasSuffix(data[:idx], ";base64") {
			return nil, fmt.Errorf("unsupported data url encoding %q", data[:idx])
		}
		data = data[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		// 有的服务返回不带 padding 的 base64
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
	}

	return util.DecodeImage(raw)
}
