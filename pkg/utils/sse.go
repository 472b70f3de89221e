package utils

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SSEHeaders 设置流式响应所需的响应头。
func SSEHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
}

// WriteSSEData 写出一条 `data: ...` 事件并立即 flush；客户端已断开时写失败由调用方忽略。
func WriteSSEData(w io.Writer, data []byte) error {
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n\n")); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// ProxySSE 将上游返回的 SSE 流原样透传给客户端（openai_compatible 直通模式使用）。
// 上层负责控制生命周期（如 context 取消、错误处理等）。
func ProxySSE(c *gin.Context, src io.ReadCloser) {
	defer src.Close()

	SSEHeaders(c)
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	buf := make([]byte, 4096)
	flusher, ok := c.Writer.(http.Flusher)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := src.Read(buf)
		if n > 0 {
			if _, writeErr := c.Writer.Write(buf[:n]); writeErr != nil {
				break
			}
			if ok {
				flusher.Flush()
			}
		}
		if err != nil {
			break
		}
	}
}
