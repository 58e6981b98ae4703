package editsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	nhttp "github.com/chaos-io/maskedit/util/http"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.5-flash-image-preview"
)

// GeminiConfig 模型服务配置
type GeminiConfig struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// Gemini 通过 generateContent 接口编辑图片
type Gemini struct {
	cfg GeminiConfig
	cli nhttp.IClient
}

func NewGemini(cfg GeminiConfig) *Gemini {
	return NewGeminiWithClient(cfg, nhttp.NewHTTPClientWithTimeout(cfg.Timeout))
}

func NewGeminiWithClient(cfg GeminiConfig, cli nhttp.IClient) *Gemini {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Gemini{cfg: cfg, cli: cli}
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *Gemini) url() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.cfg.Endpoint, g.cfg.Model)
}

/*
	curl -X POST "$ENDPOINT/models/$MODEL:generateContent" \
	  -H "x-goog-api-key: $API_KEY" \
	  -H "Content-Type: application/json" \
	  -d '{"contents":[{"parts":[{"inlineData":{"mimeType":"image/png","data":"..."}},{"text":"..."}]}]}'
*/
func (g *Gemini) SubmitEdit(ctx context.Context, imageBase64, mimeType, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: imageBase64}},
				{Text: prompt},
			},
		}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE", "TEXT"}},
	}

	resp := &generateResponse{}
	reqParam := &nhttp.RequestParam{
		RequestURI: g.url(),
		Method:     http.MethodPost,
		Header: map[string]string{
			"Content-Type":   "application/json",
			"x-goog-api-key": g.cfg.APIKey,
		},
		Body:     req,
		Response: resp,
	}

	slog.Debug("submit edit", "model", g.cfg.Model, "mime", mimeType, "bytes", len(imageBase64))

	if err := g.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return "", serviceMessage(err)
	}

	return extractImage(resp)
}

// serviceMessage 尽量取出服务端 error.message，原样返回给用户
func serviceMessage(err error) error {
	var statusErr *nhttp.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	var er errorResponse
	if json.Unmarshal(statusErr.Body, &er) == nil && er.Error.Message != "" {
		return errors.New(er.Error.Message)
	}
	return err
}

func extractImage(resp *generateResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("request blocked: %s", resp.PromptFeedback.BlockReason)
	}

	var texts []string
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				mime := p.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				return "data:" + mime + ";base64," + p.InlineData.Data, nil
			}
			if t := strings.TrimSpace(p.Text); t != "" {
				texts = append(texts, t)
			}
		}
	}

	if len(texts) > 0 {
		return "", errors.New(strings.Join(texts, "\n"))
	}
	return "", ErrNoImage
}
