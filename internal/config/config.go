package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 定义应用的顶层配置结构，对应 configs/config.yaml。
type Config struct {
	Server struct {
		Addr  string `yaml:"addr"`
		Debug bool   `yaml:"debug"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`

	Auth struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"auth"`

	// Augment 上游 Augment 后端相关配置。
	// CredentialsPath 为空时使用 ~/.augment/session.json（auggie login 写入的会话文件）。
	Augment struct {
		BaseURL         string `yaml:"base_url"`
		CredentialsPath string `yaml:"credentials_path"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
	} `yaml:"augment"`
}

// Load 从给定路径加载 YAML 配置，并返回 Config。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:8021"
	}

	return &cfg, nil
}
