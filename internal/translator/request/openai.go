package request

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrNoUserMessage 请求里没有可发送的 user 消息时返回。
var ErrNoUserMessage = errors.New("no user message to send")

// BuildChatStreamRequest 将 OpenAI Chat Completions 请求体转换为 Augment chat-stream 请求体。
// 转换内容包括:
// 1. model 与 include_thoughts 设置
// 2. system 消息 → system_prompt（多条拼接）
// 3. 历史 user/assistant 轮次 → chat_history 的 request_message/response_text 对
// 4. 最后一条 user 消息 → message
// 5. 生成参数映射（max_tokens → max_output_tokens、temperature、top_p）
func BuildChatStreamRequest(upstreamModel string, inputRawJSON []byte, forwardReasoning bool) ([]byte, error) {
	out := `{"model":"","message":"","mode":"AGENT","chat_history":[]}`

	root := gjson.ParseBytes(inputRawJSON)

	out, _ = sjson.Set(out, "model", upstreamModel)
	out, _ = sjson.Set(out, "include_thoughts", forwardReasoning)

	if maxTokens := root.Get("max_tokens"); maxTokens.Exists() {
		out, _ = sjson.Set(out, "max_output_tokens", maxTokens.Int())
	}
	if temperature := root.Get("temperature"); temperature.Exists() {
		out, _ = sjson.Set(out, "temperature", temperature.Float())
	}
	if topP := root.Get("top_p"); topP.Exists() {
		out, _ = sjson.Set(out, "top_p", topP.Float())
	}

	var systemParts []string
	var pendingUser string
	var haveUser bool

	root.Get("messages").ForEach(func(_, msg gjson.Result) bool {
		role := msg.Get("role").String()
		text := extractMessageText(msg.Get("content"))

		switch role {
		case "system", "developer":
			if strings.TrimSpace(text) != "" {
				systemParts = append(systemParts, text)
			}
		case "assistant":
			// 与之前的 user 消息配成一轮历史；上一条 user 缺失时请求侧留空
			pair := `{"request_message":"","response_text":""}`
			pair, _ = sjson.Set(pair, "request_message", pendingUser)
			pair, _ = sjson.Set(pair, "response_text", text)
			out, _ = sjson.SetRaw(out, "chat_history.-1", pair)
			pendingUser = ""
			haveUser = false
		default:
			// user（以及未知 role 按 user 处理）；同角色连续多条时拼接
			if haveUser && pendingUser != "" {
				pendingUser = pendingUser + "\n" + text
			} else {
				pendingUser = text
			}
			haveUser = true
		}
		return true
	})

	if !haveUser {
		return nil, ErrNoUserMessage
	}
	out, _ = sjson.Set(out, "message", pendingUser)

	if len(systemParts) > 0 {
		out, _ = sjson.Set(out, "system_prompt", strings.Join(systemParts, "\n\n"))
	}

	return []byte(out), nil
}

// extractMessageText 取出消息正文；content 可以是字符串，也可以是 {type:"text",text} 块数组。
// 非 text 块（如图片）跳过。
func extractMessageText(content gjson.Result) string {
	if content.Type == gjson.String {
		return content.String()
	}
	if !content.IsArray() {
		return ""
	}
	var sb strings.Builder
	content.ForEach(func(_, part gjson.Result) bool {
		if t := part.Get("type").String(); t != "" && t != "text" {
			return true
		}
		if txt := part.Get("text").String(); txt != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(txt)
		}
		return true
	})
	return sb.String()
}
