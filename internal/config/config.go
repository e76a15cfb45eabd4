package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"jroconnect/internal/logger"
	"jroconnect/pkg/types"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPollInterval   = 60 // 默认轮询间隔 1 分钟
	DefaultLogLevel       = "debug"
	DefaultAPIBaseURL     = "http://127.0.0.1:8000/api/"
	DefaultToastTimeoutMs = 3000
	DefaultServerAddr     = "127.0.0.1:8765"
	ConfigFileName        = "config.json"
	EnvPrefix             = "JRO"
)

var (
	v            = newViper()
	vMu          sync.Mutex
	globalConfig *types.Config
)

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetConfigType("json")
	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	vp.SetDefault("poll_interval", DefaultPollInterval)
	vp.SetDefault("log_level", DefaultLogLevel)
	vp.SetDefault("api.base_url", DefaultAPIBaseURL)
	vp.SetDefault("api.request_timeout", 0)
	vp.SetDefault("toast.timeout_ms", DefaultToastTimeoutMs)
	vp.SetDefault("toast.system", false)
	vp.SetDefault("server.addr", DefaultServerAddr)
	return vp
}

// Default 返回默认配置
func Default() *types.Config {
	return &types.Config{
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
		API:          types.APIConfig{BaseURL: DefaultAPIBaseURL},
		Toast:        types.ToastConfig{TimeoutMs: DefaultToastTimeoutMs},
		Server:       types.ServerConfig{Addr: DefaultServerAddr},
	}
}

// BindFlags 将命令行参数绑定到配置项，命令行参数优先级最高
func BindFlags(fs *pflag.FlagSet) error {
	vMu.Lock()
	defer vMu.Unlock()

	bindings := map[string]string{
		"api.base_url":        "base-url",
		"api.request_timeout": "timeout",
		"server.addr":         "addr",
		"log_level":           "log-level",
	}
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("绑定参数 %s 失败: %w", name, err)
		}
	}
	return nil
}

// Load 加载配置文件
func Load() (*types.Config, error) {
	// .env 文件可选，不存在时忽略
	_ = godotenv.Load()
	return LoadFrom(getConfigPath())
}

// LoadFrom 从指定路径加载配置文件，文件不存在时创建默认配置
func LoadFrom(configPath string) (*types.Config, error) {
	vMu.Lock()
	defer vMu.Unlock()

	v.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			return nil, fmt.Errorf("创建默认配置文件失败: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// Unmarshal 不会带上环境变量和命令行参数的覆盖值，逐项用 Get 读取
	cfg.PollInterval = v.GetInt("poll_interval")
	cfg.LogLevel = v.GetString("log_level")
	cfg.API.BaseURL = v.GetString("api.base_url")
	cfg.API.RequestTimeout = v.GetInt("api.request_timeout")
	cfg.Toast.TimeoutMs = v.GetInt("toast.timeout_ms")
	cfg.Toast.System = v.GetBool("toast.system")
	cfg.Server.Addr = v.GetString("server.addr")

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	globalConfig = cfg
	logger.Debugf("已加载配置文件: %s", configPath)
	return cfg, nil
}

// Save 保存配置文件
func Save(cfg *types.Config) error {
	return SaveTo(getConfigPath(), cfg)
}

// SaveTo 保存配置到指定路径
func SaveTo(configPath string, cfg *types.Config) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	vMu.Lock()
	defer vMu.Unlock()

	setAll(cfg)
	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("保存配置文件失败: %w", err)
	}

	globalConfig = cfg
	return nil
}

// Get 获取当前配置
func Get() *types.Config {
	if globalConfig == nil {
		return Default()
	}
	return globalConfig
}

// Validate 验证配置
func Validate(cfg *types.Config) error {
	if cfg.PollInterval < 10 {
		return fmt.Errorf("轮询间隔不能小于 10 秒")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("无效的日志级别: %s", cfg.LogLevel)
	}

	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("无效的 API 地址: %q", cfg.API.BaseURL)
	}

	if cfg.API.RequestTimeout < 0 {
		return fmt.Errorf("请求超时不能为负数")
	}
	if cfg.Toast.TimeoutMs < 0 {
		return fmt.Errorf("提示显示时长不能为负数")
	}

	return nil
}

func setAll(cfg *types.Config) {
	v.Set("poll_interval", cfg.PollInterval)
	v.Set("log_level", cfg.LogLevel)
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.request_timeout", cfg.API.RequestTimeout)
	v.Set("toast.timeout_ms", cfg.Toast.TimeoutMs)
	v.Set("toast.system", cfg.Toast.System)
	v.Set("server.addr", cfg.Server.Addr)
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用当前目录
	configPath := filepath.Join(".", ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	// 当前目录没有配置文件时使用用户配置目录
	configDir := logger.AppDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return configPath
	}
	return filepath.Join(configDir, ConfigFileName)
}

// createDefaultConfig 创建默认配置文件
func createDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	// 只写入文件中的值，不覆盖环境变量和命令行参数
	file := viper.New()
	file.SetConfigType("json")
	def := Default()
	file.Set("poll_interval", def.PollInterval)
	file.Set("log_level", def.LogLevel)
	file.Set("api.base_url", def.API.BaseURL)
	file.Set("api.request_timeout", def.API.RequestTimeout)
	file.Set("toast.timeout_ms", def.Toast.TimeoutMs)
	file.Set("toast.system", def.Toast.System)
	file.Set("server.addr", def.Server.Addr)

	return file.WriteConfigAs(configPath)
}
