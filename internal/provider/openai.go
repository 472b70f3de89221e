package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIConfig struct {
	Name           string
	APIKey         string
	BaseURL        string // e.g. https://api.openai.com/v1
	TimeoutSeconds int
}

// OpenAI 是 openai_compatible 模型的直通 Provider：
// 请求和响应两侧都是 OpenAI Chat Completions 格式，只替换 model 并转发。
type OpenAI struct {
	name   string
	client *openai.Client
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	timeout := 600 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	oaiCfg := openai.DefaultConfig(cfg.APIKey)
	oaiCfg.BaseURL = base
	oaiCfg.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	return &OpenAI{
		name:   cfg.Name,
		client: openai.NewClientWithConfig(oaiCfg),
	}
}

func (p *OpenAI) Name() string { return p.name }

// ParseChatRequest 解析客户端原始请求体并把 model 替换为上游模型名。
func ParseChatRequest(rawJSON []byte, upstreamModel string) (*openai.ChatCompletionRequest, error) {
	var req openai.ChatCompletionRequest
	if err := json.Unmarshal(rawJSON, &req); err != nil {
		return nil, fmt.Errorf("parse chat request: %w", err)
	}
	req.Model = upstreamModel
	return &req, nil
}

func (p *OpenAI) Chat(ctx context.Context, req *openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	req.Stream = false

	resp, err := p.client.CreateChatCompletion(ctx, *req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	return &resp, nil
}

func (p *OpenAI) ChatStream(ctx context.Context, req *openai.ChatCompletionRequest) (io.ReadCloser, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	req.Stream = true

	stream, err := p.client.CreateChatCompletionStream(ctx, *req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion stream: %w", err)
	}

	// 将 go-openai 的流包装成 ReadCloser，按 OpenAI SSE 规范输出 data: 行
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		defer stream.Close()

		for {
			chunk, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					_, _ = io.WriteString(pw, "data: [DONE]\n\n")
				}
				return
			}

			b, err := json.Marshal(chunk)
			if err != nil {
				return
			}
			_, _ = io.WriteString(pw, "data: "+string(b)+"\n\n")
		}
	}()

	return pr, nil
}
