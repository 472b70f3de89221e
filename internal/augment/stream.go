package augment

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/craiggwilson/augment-opencode/pkg/utils"
)

// NotifyFunc 每收到一条上游通知调用一次；返回非 nil 错误时停止读取。
// 调用顺序与上游到达顺序一致，同一请求内不会并发调用。
type NotifyFunc func(Notification) error

// Stream 向 chat-stream 发起请求并逐条回调通知，直到流结束、ctx 取消或回调出错。
// 上游总是流式返回；非流式的客户端请求由上层聚合。
func (c *Client) Stream(ctx context.Context, body []byte, fn NotifyFunc) error {
	url := c.baseURL + "/chat-stream"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.addHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request augment chat-stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: "failed reading error body: " + readErr.Error()}
		}
		return decodeError(resp.StatusCode, respBody)
	}

	return scanNotifications(ctx, resp.Body, fn)
}

// scanNotifications 按行解析 NDJSON 通知并逐条回调；空行与无法解析的行跳过。
func scanNotifications(ctx context.Context, r io.Reader, fn NotifyFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 512*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var n Notification
		if err := json.Unmarshal(line, &n); err != nil {
			utils.Logger.Debugf("augment: skip unparsable line len=%d err=%v", len(line), err)
			continue
		}
		if n.Kind == "" {
			continue
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read augment stream: %w", err)
	}
	return nil
}
