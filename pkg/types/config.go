package types

// APIConfig 表示后端 REST API 配置
type APIConfig struct {
	BaseURL        string `json:"base_url" mapstructure:"base_url"`               // API 基础地址，endpoint 直接拼接在其后
	RequestTimeout int    `json:"request_timeout" mapstructure:"request_timeout"` // 请求超时（秒），0 表示不设置超时
}

// ToastConfig 表示提示消息配置
type ToastConfig struct {
	TimeoutMs int  `json:"timeout_ms" mapstructure:"timeout_ms"` // 默认显示时长（毫秒），默认 3000
	System    bool `json:"system" mapstructure:"system"`         // 是否同时推送系统通知
}

// ServerConfig 表示本地代理服务配置
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr"` // 监听地址，为空时不启动
}

// Config 表示应用配置
type Config struct {
	PollInterval int    `json:"poll_interval" mapstructure:"poll_interval"` // 轮询间隔（秒），默认 60
	LogLevel     string `json:"log_level" mapstructure:"log_level"`         // 日志级别：debug, info, warn, error

	API    APIConfig    `json:"api" mapstructure:"api"`
	Toast  ToastConfig  `json:"toast" mapstructure:"toast"`
	Server ServerConfig `json:"server" mapstructure:"server"`
}
