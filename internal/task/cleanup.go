package task

import (
	"time"

	"github.com/craiggwilson/augment-opencode/internal/model"
	"github.com/craiggwilson/augment-opencode/internal/storage"
	"github.com/craiggwilson/augment-opencode/pkg/utils"
)

// CleanupOldLogs 删除7天前的用量与错误日志
func CleanupOldLogs() error {
	sevenDaysAgo := time.Now().AddDate(0, 0, -7)

	result := storage.DB.Where("created_at < ?", sevenDaysAgo).Delete(&model.UsageLog{})
	if result.Error != nil {
		utils.Logger.Errorf("cleanup: delete old usage logs failed: %v", result.Error)
		return result.Error
	}
	deleted := result.RowsAffected

	result = storage.DB.Where("created_at < ?", sevenDaysAgo).Delete(&model.ErrorLog{})
	if result.Error != nil {
		utils.Logger.Errorf("cleanup: delete old error logs failed: %v", result.Error)
		return result.Error
	}

	utils.Logger.Infof("cleanup: deleted %d usage logs and %d error logs (before %s)",
		deleted, result.RowsAffected, sevenDaysAgo.Format("2006-01-02"))
	return nil
}

// StartCleanupTask 启动定时清理任务
// 项目启动时执行一次，然后每天执行一次
func StartCleanupTask() {
	if err := CleanupOldLogs(); err != nil {
		utils.Logger.Errorf("cleanup: initial cleanup failed: %v", err)
	}

	ticker := time.NewTicker(24 * time.Hour)
	go func() {
		defer ticker.Stop()
		for range ticker.C {
			if err := CleanupOldLogs(); err != nil {
				utils.Logger.Errorf("cleanup: scheduled cleanup failed: %v", err)
			}
		}
	}()

	utils.Logger.Info("cleanup: task started (runs daily)")
}
