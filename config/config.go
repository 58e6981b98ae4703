// Package config 服务配置，YAML 文件 + 环境变量覆盖
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chaos-io/maskedit/session"
)

type Config struct {
	Server  Server  `yaml:"server"`
	Session Session `yaml:"session"`
	Editor  Editor  `yaml:"editor"`
	Canvas  Canvas  `yaml:"canvas"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	Addr string `yaml:"addr"`
	MDNS bool   `yaml:"mdns"`
}

type Session struct {
	TTL       time.Duration `yaml:"ttl"`
	SweepSpec string        `yaml:"sweep_spec"`
}

type Editor struct {
	Provider string        `yaml:"provider"` // gemini | passthrough
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Canvas struct {
	MaxImageSide  int    `yaml:"max_image_side"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
	Product       string `yaml:"product"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

const (
	ProviderGemini      = "gemini"
	ProviderPassthrough = "passthrough"
)

// Default 默认配置
func Default() Config {
	return Config{
		Server:  Server{Addr: ":8080"},
		Session: Session{TTL: 30 * time.Minute, SweepSpec: session.DefaultSweepSpec},
		Editor:  Editor{Provider: ProviderGemini, Timeout: 2 * time.Minute},
		Canvas:  Canvas{MaxImageSide: 4096, MaxUploadSize: 20 << 20, Product: "maskedit"},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Load 读取配置文件，path 为空时只用默认值和环境变量
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MASKEDIT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	for _, key := range []string{"MASKEDIT_API_KEY", "GEMINI_API_KEY"} {
		if v := os.Getenv(key); v != "" && c.Editor.APIKey == "" {
			c.Editor.APIKey = v
		}
	}
	if v := os.Getenv("MASKEDIT_EDITOR"); v != "" {
		c.Editor.Provider = v
	}
}

func (c *Config) Validate() error {
	switch c.Editor.Provider {
	case ProviderGemini:
		if c.Editor.APIKey == "" {
			return errors.New("editor.api_key is required for the gemini provider")
		}
	case ProviderPassthrough:
	default:
		return fmt.Errorf("unknown editor provider %q", c.Editor.Provider)
	}
	if c.Canvas.MaxImageSide < 0 {
		return errors.New("canvas.max_image_side must not be negative")
	}
	if c.Canvas.MaxUploadSize <= 0 {
		return errors.New("canvas.max_upload_size must be positive")
	}
	return nil
}

// SlogLevel 日志级别，未知值按 info 处理
func (l Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger 按配置创建 slog.Logger
func (l Log) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
