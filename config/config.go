// Package config 提供了统一的配置加载与管理能力.
// 配置文件为 TOML, 支持 APP_ 前缀的环境变量覆盖与文件变更热更新.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/wyfcoding/prodplan/logging"
)

// Config 全局顶级配置结构.
type Config struct {
	Version string        `mapstructure:"version" toml:"version"`
	Log     LogConfig     `mapstructure:"log"     toml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" toml:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" toml:"tracing"`
	Solver  SolverConfig  `mapstructure:"solver"  toml:"solver"`
}

// LogConfig 定义日志输出、级别与切割策略.
type LogConfig struct {
	Level      string `mapstructure:"level"       toml:"level"       validate:"omitempty,oneof=debug info warn error"`
	File       string `mapstructure:"file"        toml:"file"`                               // 日志文件路径。
	MaxSize    int    `mapstructure:"max_size"    toml:"max_size"    validate:"gte=0"`       // 单个文件最大大小 (MB)。
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups" validate:"gte=0"`       // 最大备份数。
	MaxAge     int    `mapstructure:"max_age"     toml:"max_age"     validate:"gte=0"`       // 最大保留天数。
	Compress   bool   `mapstructure:"compress"    toml:"compress"`                           // 是否启用压缩。
}

// MetricsConfig 普罗米修斯监控指标配置.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" toml:"namespace"`
	Enabled   bool   `mapstructure:"enabled"   toml:"enabled"`
}

// TracingConfig 分布式链路追踪（OpenTelemetry）配置.
type TracingConfig struct {
	ServiceName  string  `mapstructure:"service_name"  toml:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" toml:"otlp_endpoint" validate:"required_if=Enabled true"`
	SamplerRatio float64 `mapstructure:"sampler_ratio" toml:"sampler_ratio" validate:"gte=0,lte=1"`
	Enabled      bool    `mapstructure:"enabled"       toml:"enabled"`
}

// SolverConfig 线性规划求解与结果展示参数.
type SolverConfig struct {
	// Precision 产量与利润展示时保留的小数位数.
	Precision int32 `mapstructure:"precision" toml:"precision" validate:"gte=0,lte=6"`
	// Tolerance 传递给单纯形法的数值容差.
	Tolerance float64 `mapstructure:"tolerance" toml:"tolerance" validate:"gt=0,lt=0.001"`
	// BindingTolerance 松弛量不超过该值时认为资源约束为紧约束.
	BindingTolerance float64 `mapstructure:"binding_tolerance" toml:"binding_tolerance" validate:"gte=0"`
}

// Default 返回未提供配置文件时使用的默认配置.
func Default() *Config {
	return &Config{
		Version: "dev",
		Log:     LogConfig{Level: "info", MaxSize: 100, MaxBackups: 3, MaxAge: 7},
		Metrics: MetricsConfig{Namespace: "prodplan"},
		Tracing: TracingConfig{ServiceName: "prodplan", SamplerRatio: 1},
		Solver:  SolverConfig{Precision: 2, Tolerance: 1e-10, BindingTolerance: 1e-6},
	}
}

var (
	vInstance = viper.New()
	validate  = validator.New(validator.WithRequiredStructEnabled())

	mu       sync.Mutex
	onReload []func(*Config)
)

// RegisterReloadHook 注册配置热更新回调。
func RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	onReload = append(onReload, hook)
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("version", d.Version)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.sampler_ratio", d.Tracing.SamplerRatio)
	v.SetDefault("solver.precision", d.Solver.Precision)
	v.SetDefault("solver.tolerance", d.Solver.Tolerance)
	v.SetDefault("solver.binding_tolerance", d.Solver.BindingTolerance)
}

// Read 读取并校验配置文件, 不启动文件监听.
func Read(path string) (*Config, error) {
	v := viper.New()
	conf := &Config{}
	if err := readInto(v, path, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

func readInto(v *viper.Viper, path string, conf *Config) error {
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config error: %w", err)
	}
	if err := v.Unmarshal(conf); err != nil {
		return fmt.Errorf("unmarshal config error: %w", err)
	}
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Load 读取配置并开启热更新: 文件变化时重新解析、校验, 更新日志级别并触发回调.
// 校验失败的新配置会被丢弃, conf 保持旧值.
func Load(path string, conf *Config) error {
	if err := readInto(vInstance, path, conf); err != nil {
		return err
	}

	vInstance.WatchConfig()
	vInstance.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name)
		const debounceTimeout = 500 * time.Millisecond
		time.Sleep(debounceTimeout)

		next := &Config{}
		if err := vInstance.Unmarshal(next); err != nil {
			slog.Error("reload config unmarshal failed", "error", err)
			return
		}
		if err := validate.Struct(next); err != nil {
			slog.Error("reload config validation failed", "error", err)
			return
		}

		mu.Lock()
		*conf = *next
		hooks := append([]func(*Config){}, onReload...)
		mu.Unlock()

		logging.SetLevel(next.Log.Level)
		slog.Info("config hot-reloaded and validated successfully")
		for _, hook := range hooks {
			hook(next)
		}
	})

	return nil
}

// PrintWithMask 以 debug 级别脱敏打印当前配置, logger 为 nil 时使用 slog 默认实例.
func PrintWithMask(logger *slog.Logger, conf any) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := json.Marshal(conf)
	if err != nil {
		logger.Error("failed to marshal config for printing", "error", err)
		return
	}

	var configMap map[string]any
	if err := json.Unmarshal(data, &configMap); err != nil {
		logger.Error("failed to unmarshal config for masking", "error", err)
		return
	}

	mask(configMap)

	maskedJSON, err := json.Marshal(configMap)
	if err != nil {
		logger.Error("failed to marshal masked config", "error", err)
		return
	}

	logger.Debug("current effective configuration", "config", string(maskedJSON))
}

func mask(configMap map[string]any) {
	sensitiveKeys := []string{"password", "secret", "token", "endpoint"}

	for key, val := range configMap {
		if subMap, ok := val.(map[string]any); ok {
			mask(subMap)
			continue
		}
		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(strings.ToLower(key), sensitiveKey) {
				configMap[key] = "******"
				break
			}
		}
	}
}
