package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craiggwilson/augment-opencode/internal/model"
	"github.com/craiggwilson/augment-opencode/internal/modelstate"
)

// RegisterModelRoutes 注册模型列表（OpenAI 兼容）和管理端 CRUD。
func RegisterModelRoutes(r gin.IRouter) {
	r.GET("/v1/models", listOpenAIModels)

	admin := r.Group("/admin")
	admin.GET("/models", listModels)
	admin.POST("/models", createModel)
	admin.GET("/models/:id", getModel)
	admin.PUT("/models/:id", updateModel)
	admin.DELETE("/models/:id", deleteModel)
	admin.POST("/models/:id/enable", enableModel)
}

// openaiModel OpenAI /v1/models 列表项。
type openaiModel struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// listOpenAIModels 按 OpenAI 格式返回启用中的模型，供 opencode 的模型选择器使用。
func listOpenAIModels(c *gin.Context) {
	ms := model.ListModels()
	now := time.Now().Unix()
	data := make([]openaiModel, 0, len(ms))
	for _, m := range ms {
		if !m.Enabled {
			continue
		}
		data = append(data, openaiModel{
			ID:      m.ID,
			Object:  "model",
			Created: now,
			OwnedBy: "augment",
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   data,
	})
}

func listModels(c *gin.Context) {
	ms := model.ListModels()
	c.JSON(http.StatusOK, ms)
}

func getModel(c *gin.Context) {
	id := c.Param("id")
	m, err := model.GetModel(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func createModel(c *gin.Context) {
	var m model.Model
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := model.CreateModel(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
}

func updateModel(c *gin.Context) {
	id := c.Param("id")
	var m model.Model
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := model.UpdateModel(id, &m); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, model.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func deleteModel(c *gin.Context) {
	id := c.Param("id")
	if err := model.DeleteModel(id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// enableModel 清除模型的临时禁用状态（上游恢复后手动解封）。
func enableModel(c *gin.Context) {
	id := c.Param("id")
	if _, err := model.GetModel(id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	modelstate.EnableModel(id)
	c.JSON(http.StatusOK, gin.H{"enabled": true})
}
