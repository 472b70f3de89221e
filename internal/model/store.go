package model

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/craiggwilson/augment-opencode/internal/storage"
)

// ErrNotFound 在指定 ID 不存在时返回。
var ErrNotFound = errors.New("not found")

// ListModels 返回所有模型。
func ListModels() []*Model {
	var ms []*Model
	if err := storage.DB.Find(&ms).Error; err != nil {
		return []*Model{}
	}
	return ms
}

func GetModel(id string) (*Model, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	var m Model
	if err := storage.DB.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func CreateModel(m *Model) error {
	if m == nil || m.ID == "" {
		return errors.New("invalid model")
	}
	return storage.DB.Create(m).Error
}

func UpdateModel(id string, m *Model) error {
	if m == nil {
		return errors.New("invalid model")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	m.ID = id
	return storage.DB.Save(m).Error
}

func DeleteModel(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return storage.DB.Where("id = ?", id).Delete(&Model{}).Error
}

// RecordUsage 写一条用量日志，费用按模型单价（元/千 token）计算。
func RecordUsage(m *Model, inputTokens, outputTokens int64) error {
	if m == nil {
		return errors.New("invalid model")
	}
	cost := float64(inputTokens)/1000*m.InputPrice + float64(outputTokens)/1000*m.OutputPrice
	return storage.DB.Create(&UsageLog{
		ModelID:      m.ID,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalCost:    cost,
	}).Error
}

// RecordErrorLog 写一条错误日志；message 超长时截断，避免把上游整个 body 写进库。
func RecordErrorLog(modelID string, statusCode int, message string) error {
	if len(message) > 500 {
		message = message[:500]
	}
	return storage.DB.Create(&ErrorLog{
		ModelID:    strings.TrimSpace(modelID),
		StatusCode: statusCode,
		Message:    message,
	}).Error
}
