package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/craiggwilson/augment-opencode/internal/augment"
	appconfig "github.com/craiggwilson/augment-opencode/internal/config"
	"github.com/craiggwilson/augment-opencode/internal/credentials"
	"github.com/craiggwilson/augment-opencode/internal/model"
	"github.com/craiggwilson/augment-opencode/internal/modelstate"
	"github.com/craiggwilson/augment-opencode/internal/provider"
	reqtrans "github.com/craiggwilson/augment-opencode/internal/translator/request"
	resptrans "github.com/craiggwilson/augment-opencode/internal/translator/response"
	"github.com/craiggwilson/augment-opencode/pkg/utils"
)

// ChatHandler 提供 OpenAI 兼容的 /v1/chat/completions 入口，供 opencode 等客户端调用。
type ChatHandler struct {
	cfg *appconfig.Config
}

func NewChatHandler(cfg *appconfig.Config) *ChatHandler {
	return &ChatHandler{cfg: cfg}
}

// RegisterRoutes 在给定路由组上注册 /v1/chat/completions。
func (h *ChatHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/v1/chat/completions", h.handleChatCompletions)
	r.OPTIONS("/v1/chat/completions", h.handleOptions)
}

func (h *ChatHandler) handleOptions(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// openaiError 按 OpenAI API 格式返回错误体：{"error":{"message","type","code"}}
func openaiError(c *gin.Context, status int, errorType, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"message": message,
			"type":    errorType,
			"code":    code,
		},
	})
}

// openaiErrorFromUpstream 根据上游状态码和消息按 OpenAI 格式返回错误。
func openaiErrorFromUpstream(c *gin.Context, statusCode int, message string) {
	if message == "" {
		message = "Upstream request failed"
	}
	errorType := "api_error"
	code := "upstream_error"
	if statusCode >= 400 && statusCode < 500 {
		errorType = "invalid_request_error"
	}
	if statusCode == 401 || statusCode == 403 {
		errorType = "authentication_error"
		code = "invalid_credentials"
	}
	if statusCode == 429 {
		errorType = "rate_limit_error"
		code = "rate_limit_exceeded"
	}
	openaiError(c, statusCode, errorType, code, message)
}

func (h *ChatHandler) handleChatCompletions(c *gin.Context) {
	ua := c.GetHeader("User-Agent")
	if len(ua) > 80 {
		ua = ua[:80] + "..."
	}
	utils.Logger.Infof("chat: request remote=%s user_agent=%s", c.ClientIP(), ua)

	raw, err := c.GetRawData()
	if err != nil {
		utils.Logger.Warnf("chat: step=read_body err=%v", err)
		openaiError(c, http.StatusBadRequest, "invalid_request_error", "invalid_body", "Failed to read body")
		return
	}
	if !gjson.ValidBytes(raw) {
		openaiError(c, http.StatusBadRequest, "invalid_request_error", "invalid_json", "Invalid JSON")
		return
	}
	root := gjson.ParseBytes(raw)

	requestedModel := strings.TrimSpace(root.Get("model").String())
	if requestedModel == "" {
		utils.Logger.Warnf("chat: step=validate missing model")
		openaiError(c, http.StatusBadRequest, "invalid_request_error", "missing_model", "Missing model")
		return
	}
	stream := root.Get("stream").Bool()

	m, err := model.GetModel(requestedModel)
	if err != nil {
		utils.Logger.Warnf("chat: step=resolve_model err=unknown_model model=%s", requestedModel)
		openaiError(c, http.StatusNotFound, "invalid_request_error", "model_not_found", "Unknown model: "+requestedModel)
		return
	}
	if !m.Enabled {
		openaiError(c, http.StatusBadRequest, "invalid_request_error", "model_disabled", "Model disabled: "+m.ID)
		return
	}
	if modelstate.IsModelTemporarilyDisabled(m.ID) {
		utils.Logger.Warnf("chat: step=resolve_model err=temporarily_disabled model=%s", m.ID)
		openaiError(c, http.StatusServiceUnavailable, "api_error", "model_temporarily_disabled",
			"Model temporarily disabled after upstream errors: "+m.ID)
		return
	}

	// 出错时 error_handler 中间件据此记录错误日志并临时禁用模型
	c.Set("real_model_id", m.ID)

	upstreamID := strings.TrimSpace(m.UpstreamID)
	if upstreamID == "" {
		upstreamID = m.ID
	}

	// 按模型配置的 QPS 限流
	waitModelQPS(c.Request.Context(), m.ID, m.MaxQPS)
	if c.Request.Context().Err() != nil {
		utils.Logger.Infof("chat: client_gone during qps wait")
		return
	}

	interfaceType := strings.TrimSpace(m.Interface)
	if interfaceType == "" {
		interfaceType = "augment"
	}
	utils.Logger.Infof("chat: step=dispatch interface=%s model=%s upstream=%s stream=%v",
		interfaceType, m.ID, upstreamID, stream)

	switch interfaceType {
	case "augment":
		h.handleAugment(c, m, upstreamID, raw, stream)
	case "openai_compatible":
		h.handleOpenAICompatible(c, m, upstreamID, raw, stream)
	default:
		openaiError(c, http.StatusBadRequest, "invalid_request_error", "unsupported_interface",
			"Unsupported interface_type: "+interfaceType)
	}
}

// handleAugment 走 Augment chat-stream 上游：请求翻译、思考片段重排、SSE 回写。
func (h *ChatHandler) handleAugment(c *gin.Context, m *model.Model, upstreamID string, raw []byte, stream bool) {
	session, err := credentials.Get(h.cfg.Augment.CredentialsPath)
	if err != nil {
		utils.Logger.Errorf("chat: step=credentials err=%v", err)
		openaiError(c, http.StatusUnauthorized, "authentication_error", "invalid_credentials", err.Error())
		return
	}

	baseURL := strings.TrimSpace(m.BaseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(h.cfg.Augment.BaseURL)
	}
	if baseURL == "" {
		baseURL = session.TenantURL
	}
	token := strings.TrimSpace(m.APIKey)
	if token == "" {
		token = session.AccessToken
	}

	client := augment.GetClient(m.ID, augment.Config{
		Name:           m.ID,
		BaseURL:        baseURL,
		AccessToken:    token,
		TimeoutSeconds: h.cfg.Augment.TimeoutSeconds,
	})

	body, err := reqtrans.BuildChatStreamRequest(upstreamID, raw, m.ForwardReasoning)
	if err != nil {
		if errors.Is(err, reqtrans.ErrNoUserMessage) {
			openaiError(c, http.StatusBadRequest, "invalid_request_error", "invalid_messages", err.Error())
			return
		}
		openaiError(c, http.StatusBadRequest, "invalid_request_error", "invalid_request", err.Error())
		return
	}

	if stream {
		h.streamAugment(c, client, m, body)
		return
	}
	h.aggregateAugment(c, client, m, body)
}

// streamAugment 流式转发：边收边写 chat.completion.chunk 帧。
// 思考片段先缓存，第一条正文到达时合并冲刷；流结束时兜底冲刷一次，
// 纯思考响应也能把推理内容发出去。
func (h *ChatHandler) streamAugment(c *gin.Context, client *augment.Client, m *model.Model, body []byte) {
	utils.SSEHeaders(c)
	c.Status(http.StatusOK)

	sink := resptrans.NewStreamSink(c.Writer, m.ID)
	buf := resptrans.NewReasoningBuffer(sink)
	defer func() { _ = buf.Flush() }()

	var usage *resptrans.Usage
	stopReason := ""
	wroteAny := false

	err := client.Stream(c.Request.Context(), body, func(n augment.Notification) error {
		switch n.Kind {
		case augment.KindThought:
			wroteAny = true
			return buf.OnThought(n.Text)
		case augment.KindMessage:
			wroteAny = true
			return buf.OnAnswer(n.Text)
		case augment.KindUsage:
			usage = &resptrans.Usage{
				PromptTokens:     int(n.InputTokens),
				CompletionTokens: int(n.OutputTokens),
				TotalTokens:      int(n.InputTokens + n.OutputTokens),
			}
			return nil
		case augment.KindDone:
			stopReason = n.StopReason
			return nil
		default:
			return nil
		}
	})
	if err != nil {
		utils.Logger.Errorf("chat: step=stream err=%v", err)
		if c.Request.Context().Err() != nil {
			return
		}
		if !wroteAny {
			// 还没写出任何帧，仍可返回结构化错误
			var apiErr *augment.APIError
			if errors.As(err, &apiErr) {
				openaiErrorFromUpstream(c, apiErr.StatusCode, apiErr.Message)
			} else {
				openaiError(c, http.StatusBadGateway, "api_error", "upstream_error", err.Error())
			}
			return
		}
		// 已经开始流式输出，只能中断
		return
	}

	if err := buf.Flush(); err != nil {
		utils.Logger.Errorf("chat: step=flush err=%v", err)
		return
	}
	if err := sink.FinishFrame(resptrans.MapStopReason(stopReason), usage); err != nil {
		return
	}
	_ = sink.Done()

	if usage != nil {
		recordUsage(m, usage)
	}
}

// aggregateAugment 非流式：聚合整条响应后一次性返回 chat.completion。
func (h *ChatHandler) aggregateAugment(c *gin.Context, client *augment.Client, m *model.Model, body []byte) {
	agg := &resptrans.Aggregator{}
	buf := resptrans.NewReasoningBuffer(agg)
	defer func() { _ = buf.Flush() }()

	var usage resptrans.Usage
	stopReason := ""

	err := client.Stream(c.Request.Context(), body, func(n augment.Notification) error {
		switch n.Kind {
		case augment.KindThought:
			return buf.OnThought(n.Text)
		case augment.KindMessage:
			return buf.OnAnswer(n.Text)
		case augment.KindUsage:
			usage = resptrans.Usage{
				PromptTokens:     int(n.InputTokens),
				CompletionTokens: int(n.OutputTokens),
				TotalTokens:      int(n.InputTokens + n.OutputTokens),
			}
			return nil
		case augment.KindDone:
			stopReason = n.StopReason
			return nil
		default:
			return nil
		}
	})
	if err != nil {
		utils.Logger.Errorf("chat: step=aggregate err=%v", err)
		if c.Request.Context().Err() != nil {
			return
		}
		var apiErr *augment.APIError
		if errors.As(err, &apiErr) {
			openaiErrorFromUpstream(c, apiErr.StatusCode, apiErr.Message)
			return
		}
		openaiError(c, http.StatusBadGateway, "api_error", "upstream_error", err.Error())
		return
	}

	if err := buf.Flush(); err != nil {
		openaiError(c, http.StatusInternalServerError, "api_error", "internal_error", err.Error())
		return
	}

	resp := agg.Completion(m.ID, time.Now().Unix(), resptrans.MapStopReason(stopReason), usage)
	c.JSON(http.StatusOK, resp)

	if usage.TotalTokens > 0 {
		recordUsage(m, &usage)
	}
}

// handleOpenAICompatible 直通模式：两侧都是 OpenAI 格式，仅替换 model 后转发。
func (h *ChatHandler) handleOpenAICompatible(c *gin.Context, m *model.Model, upstreamID string, raw []byte, stream bool) {
	req, err := provider.ParseChatRequest(raw, upstreamID)
	if err != nil {
		openaiError(c, http.StatusBadRequest, "invalid_request_error", "invalid_request", err.Error())
		return
	}

	oai := provider.NewOpenAI(provider.OpenAIConfig{
		Name:    m.ID,
		APIKey:  strings.TrimSpace(m.APIKey),
		BaseURL: strings.TrimRight(strings.TrimSpace(m.BaseURL), "/"),
	})

	if stream {
		body, err := oai.ChatStream(c.Request.Context(), req)
		if err != nil {
			utils.Logger.Errorf("chat: step=passthrough_stream err=%v", err)
			openaiError(c, http.StatusBadGateway, "api_error", "upstream_error", err.Error())
			return
		}
		utils.ProxySSE(c, body)
		return
	}

	resp, err := oai.Chat(c.Request.Context(), req)
	if err != nil {
		utils.Logger.Errorf("chat: step=passthrough err=%v", err)
		openaiError(c, http.StatusBadGateway, "api_error", "upstream_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)

	if resp.Usage.TotalTokens > 0 {
		recordUsage(m, &resptrans.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		})
	}
}

func recordUsage(m *model.Model, usage *resptrans.Usage) {
	if err := model.RecordUsage(m, int64(usage.PromptTokens), int64(usage.CompletionTokens)); err != nil {
		utils.Logger.Warnf("chat: step=record_usage model=%s err=%v", m.ID, err)
	}
}
