package response

import (
	"fmt"

	"github.com/google/uuid"
)

// OpenAI Chat Completions 响应结构。流式和非流式共用 Usage / Choice 定义。

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Delta struct {
	Role             string `json:"role,omitempty"`
	Content          string `json:"content,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

type Chunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

type Message struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Completion struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// NewCompletionID 生成 chatcmpl- 前缀的响应 ID。
func NewCompletionID() string {
	return fmt.Sprintf("chatcmpl-%s", uuid.NewString())
}

// MapStopReason 把上游 stop_reason 映射为 OpenAI 的 finish_reason。
func MapStopReason(stopReason string) string {
	switch stopReason {
	case "max_tokens", "length":
		return "length"
	default:
		return "stop"
	}
}

// Aggregator 收集重排后的全部片段，用于非流式响应。实现 ChunkSink。
type Aggregator struct {
	Reasoning string
	Content   string
}

func (a *Aggregator) WriteReasoning(text string) error {
	a.Reasoning += text
	return nil
}

func (a *Aggregator) WriteContent(text string) error {
	a.Content += text
	return nil
}

// Completion 将聚合结果组装成非流式响应体。
func (a *Aggregator) Completion(model string, created int64, finishReason string, usage Usage) Completion {
	return Completion{
		ID:      NewCompletionID(),
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []Choice{{
			Index: 0,
			Message: Message{
				Role:             "assistant",
				Content:          a.Content,
				ReasoningContent: a.Reasoning,
			},
			FinishReason: finishReason,
		}},
		Usage: usage,
	}
}
