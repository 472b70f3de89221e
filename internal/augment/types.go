package augment

// NotificationKind 上游 chat-stream 通知的类型判别字段。
type NotificationKind string

const (
	// KindThought 模型思考过程的增量片段
	KindThought NotificationKind = "thought_delta"
	// KindMessage 最终回答文本的增量片段
	KindMessage NotificationKind = "message_delta"
	// KindUsage 本次请求的 token 用量，流末尾出现一次
	KindUsage NotificationKind = "usage"
	// KindDone 流结束标记，携带 stop_reason
	KindDone NotificationKind = "done"
)

// Notification 上游流式响应的一条通知（NDJSON，每行一条）。
// 收到后不再修改，聚合时只做拷贝。
type Notification struct {
	Kind         NotificationKind `json:"type"`
	Text         string           `json:"text,omitempty"`
	InputTokens  int64            `json:"input_tokens,omitempty"`
	OutputTokens int64            `json:"output_tokens,omitempty"`
	StopReason   string           `json:"stop_reason,omitempty"`
}
