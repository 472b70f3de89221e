package augment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config 创建客户端所需配置（由 handler 从模型配置与会话凭证填入）。
type Config struct {
	Name           string
	BaseURL        string // 租户地址，例如 https://d1.api.augmentcode.com/
	AccessToken    string
	TimeoutSeconds int
}

// Client 是 Augment chat-stream 接口的 HTTP 客户端。
type Client struct {
	name    string
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	timeout := 600 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &Client{
		name:    cfg.Name,
		baseURL: base,
		token:   cfg.AccessToken,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Name() string { return c.name }

// 进程级客户端缓存：按模型 ID 懒加载复用，进程存活期间不做清理。
var (
	clientsMu sync.Mutex
	clients   = make(map[string]*Client)
)

// GetClient 返回 modelID 对应的客户端；首次调用创建，之后复用。
// BaseURL 或凭证变化（如 auggie 重新登录）时重建该条目。
func GetClient(modelID string, cfg Config) *Client {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	base := strings.TrimRight(cfg.BaseURL, "/")
	if existing, ok := clients[modelID]; ok && existing.baseURL == base && existing.token == cfg.AccessToken {
		return existing
	}
	created := NewClient(cfg)
	clients[modelID] = created
	return created
}

// APIError 上游返回非 2xx 时的错误，StatusCode 供上层映射回客户端。
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("augment error (status=%d): %s", e.StatusCode, e.Message)
}

type augmentErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail string `json:"detail"`
}

func (c *Client) addHeaders(r *http.Request) {
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/x-ndjson")
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func decodeError(status int, body []byte) error {
	var er augmentErrorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		if er.Error.Message != "" {
			return &APIError{StatusCode: status, Message: er.Error.Message}
		}
		if er.Detail != "" {
			return &APIError{StatusCode: status, Message: er.Detail}
		}
	}
	trim := strings.TrimSpace(string(body))
	if trim == "" {
		trim = "<empty body>"
	}
	return &APIError{StatusCode: status, Message: trim}
}
