package response

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/craiggwilson/augment-opencode/pkg/utils"
)

// StreamSink 把重排后的片段写成 OpenAI chat.completion.chunk SSE 帧。实现 ChunkSink。
// 第一帧带 role:"assistant"，FinishFrame 写终止帧和 usage，Done 写 [DONE]。
type StreamSink struct {
	w       io.Writer
	id      string
	model   string
	created int64

	roleSent bool
}

func NewStreamSink(w io.Writer, model string) *StreamSink {
	return &StreamSink{
		w:       w,
		id:      NewCompletionID(),
		model:   model,
		created: time.Now().Unix(),
	}
}

func (s *StreamSink) WriteReasoning(text string) error {
	return s.writeDelta(Delta{ReasoningContent: text})
}

func (s *StreamSink) WriteContent(text string) error {
	return s.writeDelta(Delta{Content: text})
}

func (s *StreamSink) writeDelta(delta Delta) error {
	if !s.roleSent {
		delta.Role = "assistant"
		s.roleSent = true
	}
	chunk := Chunk{
		ID:      s.id,
		Object:  "chat.completion.chunk",
		Created: s.created,
		Model:   s.model,
		Choices: []ChunkChoice{{Index: 0, Delta: delta}},
	}
	return s.writeChunk(chunk)
}

// FinishFrame 写收尾帧：finish_reason 加可选的 usage。
func (s *StreamSink) FinishFrame(finishReason string, usage *Usage) error {
	chunk := Chunk{
		ID:      s.id,
		Object:  "chat.completion.chunk",
		Created: s.created,
		Model:   s.model,
		Choices: []ChunkChoice{{Index: 0, Delta: Delta{}, FinishReason: &finishReason}},
		Usage:   usage,
	}
	return s.writeChunk(chunk)
}

// Done 写 SSE 终止标记。
func (s *StreamSink) Done() error {
	if _, err := s.w.Write([]byte("data: [DONE]\n\n")); err != nil {
		return err
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

func (s *StreamSink) writeChunk(chunk Chunk) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	return utils.WriteSSEData(s.w, data)
}
