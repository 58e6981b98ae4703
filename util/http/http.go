package http

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrResponseTooLarge 响应体超过 RequestParam.MaxBytes
var ErrResponseTooLarge = errors.New("response body too large")

//go:generate mockgen -destination=mocks/http.go -package=mocks . IClient
type IClient interface {
	DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error
}

// RequestParam 一次 HTTP 请求的参数
//
// Body 为 nil 时不发送请求体；io.Reader 与 []byte 原样发送；其他类型按 JSON 序列化。
// Response 为 *[]byte 时拿到原始响应体，其他非 nil 值按 JSON 反序列化。
// MaxBytes 大于 0 时限制响应体大小，超出返回 ErrResponseTooLarge。
type RequestParam struct {
	RequestURI string
	Method     string
	Header     map[string]string
	Body       interface{}
	Response   interface{}

	Timeout  time.Duration
	MaxBytes int64
}

// StatusError 服务端返回了非 2xx 状态码
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP request failed with status %d: %s", e.StatusCode, string(e.Body))
}
