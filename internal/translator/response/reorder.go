package response

import (
	"strings"

	"github.com/craiggwilson/augment-opencode/pkg/utils"
)

// ChunkSink 接收重排后的输出片段。WriteReasoning 写推理内容，WriteContent 写正文内容。
type ChunkSink interface {
	WriteReasoning(text string) error
	WriteContent(text string) error
}

// ReasoningBuffer 对上游的思考/正文片段做重排序:
// 正文开始前到达的思考片段先缓存，等第一条正文片段到达时合并成
// 一整块推理内容写出，保证推理永远排在正文前面。
// 正文开始之后才到达的思考片段直接写出并记录告警。
// 非并发安全，每个响应流各自持有一个实例。
type ReasoningBuffer struct {
	sink ChunkSink

	pending          []string
	answerStarted    bool
	reasoningFlushed bool
}

func NewReasoningBuffer(sink ChunkSink) *ReasoningBuffer {
	return &ReasoningBuffer{sink: sink}
}

// OnThought 处理一条思考片段。
func (b *ReasoningBuffer) OnThought(text string) error {
	if b.answerStarted {
		// 上游乱序：正文已经开始还在发思考，只能直接透传
		utils.Logger.Warnf("thought fragment arrived after answer content started, emitting out of order")
		return b.sink.WriteReasoning(text)
	}
	b.pending = append(b.pending, text)
	return nil
}

// OnAnswer 处理一条正文片段。第一条正文到达时先冲刷缓存的思考内容，
// 即使正文本身是空串也会触发冲刷。
func (b *ReasoningBuffer) OnAnswer(text string) error {
	if !b.answerStarted {
		if err := b.Flush(); err != nil {
			return err
		}
		b.answerStarted = true
	}
	return b.sink.WriteContent(text)
}

// Flush 把缓存的思考片段按到达顺序合并成一块写出。重复调用是空操作。
// 流结束时必须调用一次，纯思考响应（没有任何正文）才能把推理内容发出去。
func (b *ReasoningBuffer) Flush() error {
	if b.reasoningFlushed {
		return nil
	}
	b.reasoningFlushed = true
	if len(b.pending) == 0 {
		return nil
	}
	combined := strings.Join(b.pending, "")
	n := len(b.pending)
	b.pending = nil
	utils.Logger.Debugf("step=reorder_flush combined %d thought fragments into one reasoning chunk", n)
	return b.sink.WriteReasoning(combined)
}
