package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

type HTTPClient struct {
	client *http.Client
}

func NewHTTPClient() IClient {
	return &HTTPClient{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// NewHTTPClientWithTimeout 整体超时可配置的客户端，模型推理通常比普通接口慢
func NewHTTPClientWithTimeout(timeout time.Duration) IClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error {
	if requestParam == nil {
		return errors.New("request param is nil")
	}

	if requestParam.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestParam.Timeout)
		defer cancel()
	}

	body, contentType, err := encodeBody(requestParam.Body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, requestParam.Method, requestParam.RequestURI, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range requestParam.Header {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var reader io.Reader = resp.Body
	if requestParam.MaxBytes > 0 {
		reader = io.LimitReader(resp.Body, requestParam.MaxBytes+1)
	}
	respBody, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if requestParam.MaxBytes > 0 && int64(len(respBody)) > requestParam.MaxBytes {
		return fmt.Errorf("%w: limit %d bytes", ErrResponseTooLarge, requestParam.MaxBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	slog.Debug("http response", "method", requestParam.Method, "uri", requestParam.RequestURI,
		"status", resp.StatusCode, "bytes", len(respBody))

	if raw, ok := requestParam.Response.(*[]byte); ok {
		*raw = respBody
		return nil
	}
	if requestParam.Response == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, requestParam.Response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// encodeBody 把请求体转成 io.Reader，并给出默认的 Content-Type
func encodeBody(body interface{}) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return b, "text/plain", nil
	case []byte:
		return bytes.NewReader(b), "application/octet-stream", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
