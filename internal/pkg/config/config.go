package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	App      AppConfig      `mapstructure:"app"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Trade    TradeConfig    `mapstructure:"trade"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

// GatewayConfig 外部支付网关配置
type GatewayConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	SecretKey      string `mapstructure:"secret_key"`      // Basic 认证密钥
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // confirm/cancel 调用超时
}

// TradeConfig 交易流程配置
type TradeConfig struct {
	OrderTTLMinutes      int `mapstructure:"order_ttl_minutes"`      // PENDING 订单有效期
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"` // 过期订单回收间隔
}

// OrderTTL PENDING 订单有效期
func (t TradeConfig) OrderTTL() time.Duration {
	return time.Duration(t.OrderTTLMinutes) * time.Minute
}

// SweepInterval 回收扫描间隔
func (t TradeConfig) SweepInterval() time.Duration {
	return time.Duration(t.SweepIntervalSeconds) * time.Second
}

// Timeout 网关调用超时
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.Gateway.BaseURL == "" || c.Gateway.SecretKey == "" {
		return errors.New("payment gateway configuration is incomplete")
	}

	if c.Trade.OrderTTLMinutes <= 0 {
		return errors.New("trade order TTL must be positive")
	}

	return nil
}

// LoadConfig 加载配置
func LoadConfig() {
	// 获取环境变量，默认为dev
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 根据环境选择配置文件
	configName := "config"
	if env != "" && env != "dev" {
		configName = "config." + env
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("gateway.timeout_seconds", 10)
	viper.SetDefault("trade.order_ttl_minutes", 10)
	viper.SetDefault("trade.sweep_interval_seconds", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// 绑定环境变量
	viper.AutomaticEnv()

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// 手动覆盖，以防 viper 无法正确解析复杂结构或环境变量
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if secret := os.Getenv("GATEWAY_SECRET_KEY"); secret != "" {
		GlobalConfig.Gateway.SecretKey = secret
	}

	// 验证配置
	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
