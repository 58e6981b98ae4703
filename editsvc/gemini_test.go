package editsvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	nhttp "github.com/chaos-io/maskedit/util/http"
	"github.com/chaos-io/maskedit/util/http/mocks"
)

func TestGemini_SubmitEdit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.Equal(t, "image/png", req.Contents[0].Parts[0].InlineData.MimeType)
		assert.Equal(t, "aW1n", req.Contents[0].Parts[0].InlineData.Data)
		assert.Equal(t, RemovalPrompt, req.Contents[0].Parts[1].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[
			{"text":"here you go"},
			{"inlineData":{"mimeType":"image/jpeg","data":"b3V0"}}
		]}}]}`))
	}))
	defer server.Close()

	g := NewGemini(GeminiConfig{Endpoint: server.URL + "/v1beta/", Model: "test-model", APIKey: "secret"})
	got, err := g.SubmitEdit(context.Background(), "aW1n", "image/png", RemovalPrompt)
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,b3V0", got)
}

func TestGemini_SubmitEdit_ServiceMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	g := NewGemini(GeminiConfig{Endpoint: server.URL})
	_, err := g.SubmitEdit(context.Background(), "aW1n", "image/png", EnhancePrompt)
	require.Error(t, err)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", err.Error())
}

func TestGemini_SubmitEdit_Responses(t *testing.T) {
	tests := []struct {
		name    string
		resp    string
		want    string
		wantErr string
	}{
		{
			name: "返回图片",
			resp: `{"candidates":[{"content":{"parts":[{"inlineData":{"data":"eHl6"}}]}}]}`,
			want: "data:image/png;base64,eHl6",
		},
		{
			name:    "只返回文字",
			resp:    `{"candidates":[{"content":{"parts":[{"text":"I can't edit this image."}]}}]}`,
			wantErr: "I can't edit this image.",
		},
		{
			name:    "请求被拦截",
			resp:    `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantErr: "request blocked: SAFETY",
		},
		{
			name:    "空响应",
			resp:    `{"candidates":[]}`,
			wantErr: ErrNoImage.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cli := mocks.NewMockIClient(ctrl)
			cli.EXPECT().DoHTTPRequest(gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, p *nhttp.RequestParam) error {
					assert.Equal(t, DefaultEndpoint+"/models/"+DefaultModel+":generateContent", p.RequestURI)
					return json.Unmarshal([]byte(tt.resp), p.Response)
				})

			g := NewGeminiWithClient(GeminiConfig{}, cli)
			got, err := g.SubmitEdit(context.Background(), "aW1n", "image/png", "prompt")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGemini_SubmitEdit_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	cli := mocks.NewMockIClient(ctrl)
	boom := errors.New("dial tcp: connection refused")
	cli.EXPECT().DoHTTPRequest(gomock.Any(), gomock.Any()).Return(boom)

	_, err := NewGeminiWithClient(GeminiConfig{}, cli).SubmitEdit(context.Background(), "", "image/png", "p")
	assert.ErrorIs(t, err, boom)
}
