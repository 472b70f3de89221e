package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	appconfig "github.com/craiggwilson/augment-opencode/internal/config"
	"github.com/craiggwilson/augment-opencode/internal/handler"
	"github.com/craiggwilson/augment-opencode/internal/middleware"
	"github.com/craiggwilson/augment-opencode/internal/model"
	"github.com/craiggwilson/augment-opencode/internal/storage"
	"github.com/craiggwilson/augment-opencode/internal/task"
	"github.com/craiggwilson/augment-opencode/pkg/utils"
)

func main() {
	// .env 可选，存在时覆盖环境变量（本地调试用）
	_ = godotenv.Load()

	cfg, err := appconfig.Load("configs/config.yaml")
	if err != nil {
		utils.Logger.Fatalf("failed to load config: %v", err)
	}
	utils.InitLogger(cfg.Log.Level)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := storage.Init(cfg.Database.DSN)
	if err != nil {
		utils.Logger.Fatalf("failed to init database: %v", err)
	}
	if err := db.AutoMigrate(&model.Model{}, &model.UsageLog{}, &model.ErrorLog{}); err != nil {
		utils.Logger.Fatalf("failed to migrate database: %v", err)
	}

	// 启动定时清理任务
	task.StartCleanupTask()

	router := gin.Default()

	// 不需要认证的路由
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authenticated := router.Group("")
	authenticated.Use(middleware.APIKeyAuth(cfg.Auth.APIKey))
	authenticated.Use(middleware.ErrorHandler())

	chatHandler := handler.NewChatHandler(cfg)
	chatHandler.RegisterRoutes(authenticated)

	handler.RegisterModelRoutes(authenticated)

	utils.Logger.Infof("server starting on %s", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		utils.Logger.Fatalf("failed to start server: %v", err)
	}
}
