package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	nhttp "github.com/chaos-io/maskedit/util/http"
)

var (
	ErrUnsupportedURL = errors.New("only http and https image urls are supported")
	ErrNotImage       = errors.New("url does not point to an image")
)

// FetchImage 下载远程图片，返回原始字节。maxBytes 大于 0 时限制图片大小
func FetchImage(ctx context.Context, cli nhttp.IClient, rawURL string, maxBytes int64) ([]byte, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrUnsupportedURL
	}

	var data []byte
	err = cli.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI: u.String(),
		Method:     http.MethodGet,
		Header:     map[string]string{"Accept": "image/*"},
		Response:   &data,
		MaxBytes:   maxBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("%w: got %s", ErrNotImage, mime.String())
	}
	return data, nil
}
