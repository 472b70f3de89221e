package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/craiggwilson/augment-opencode/internal/model"
	"github.com/craiggwilson/augment-opencode/internal/modelstate"
	"github.com/craiggwilson/augment-opencode/pkg/utils"
)

// responseWriter 包装 gin.ResponseWriter 来捕获状态码
type responseWriter struct {
	gin.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ErrorHandler 中间件：上游导致 4xx/5xx 时临时禁用对应模型并记录错误日志。
// 模型 ID 由 handler 通过 c.Set("real_model_id", ...) 提供。
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rw := &responseWriter{ResponseWriter: c.Writer, statusCode: http.StatusOK}
		c.Writer = rw

		c.Next()

		statusCode := rw.statusCode
		if statusCode < 400 {
			return
		}

		modelID := extractModelIDFromRequest(c)
		if modelID == "" {
			return
		}
		modelstate.DisableModelTemporarily(modelID, modelstate.TemporaryModelDisableTTL)
		utils.Logger.Infof("error_handler: model_disabled model=%s status=%d", modelID, statusCode)
		_ = model.RecordErrorLog(modelID, statusCode, fmt.Sprintf("upstream error: status=%d", statusCode))
	}
}

// extractModelIDFromRequest 从请求中提取模型 ID
func extractModelIDFromRequest(c *gin.Context) string {
	if modelID, exists := c.Get("real_model_id"); exists {
		if id, ok := modelID.(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}
