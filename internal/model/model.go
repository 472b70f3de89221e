package model

import "time"

// Model 表示一个对外暴露的模型条目，OpenAI 兼容接口按其 ID 查表路由。
type Model struct {
	ID          string `json:"id" gorm:"primaryKey"` // 对外暴露的模型 ID，例如 "augment:claude-sonnet-4"
	Name        string `json:"name"`                 // 展示名
	Interface   string `json:"interface_type"`       // 接口类型：augment（默认）或 openai_compatible（直通）
	UpstreamID  string `json:"upstream_id"`          // 上游实际的 model 名称，为空时用 ID
	BaseURL     string `json:"base_url"`             // 可选：覆盖上游地址（augment 时覆盖 tenantURL，直通时为 OpenAI 兼容地址）
	APIKey      string `json:"api_key"`              // openai_compatible 直通模式的上游 API Key；augment 模式用会话凭证，不用此字段
	Description string `json:"description"`          // 描述
	Enabled     bool   `json:"enabled"`              // 是否启用

	// ForwardReasoning 是否向上游请求思考过程；关闭时上游不产生 thought 通知
	ForwardReasoning bool `json:"forward_reasoning"`

	// 该模型最大 QPS，0 表示不限制
	MaxQPS float64 `json:"max_qps"`

	// 输入/输出 token 单价（单位：元/千 token），用于用量日志计费
	InputPrice  float64 `json:"input_price" gorm:"not null;default:0"`
	OutputPrice float64 `json:"output_price" gorm:"not null;default:0"`
}

// UsageLog 记录每次请求的 token 使用详情。
type UsageLog struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ModelID      string    `json:"model_id" gorm:"index;size:100;not null"`
	InputTokens  int64     `json:"input_tokens" gorm:"not null;default:0"`
	OutputTokens int64     `json:"output_tokens" gorm:"not null;default:0"`
	TotalCost    float64   `json:"total_cost" gorm:"not null;default:0"` // 总费用（元）
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// ErrorLog 记录上游返回错误的请求，供排查与临时禁用参考。
type ErrorLog struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ModelID    string    `json:"model_id" gorm:"index;size:100"`
	StatusCode int       `json:"status_code"`
	Message    string    `json:"message" gorm:"size:500"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
