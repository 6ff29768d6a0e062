// Package bootstrap 负责宿主程序的通用基础设施初始化: 配置、日志、指标、追踪与 Planner.
package bootstrap

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"

	"github.com/wyfcoding/prodplan/config"
	"github.com/wyfcoding/prodplan/logging"
	"github.com/wyfcoding/prodplan/metrics"
	"github.com/wyfcoding/prodplan/planning"
	"github.com/wyfcoding/prodplan/tracing"
)

// Bootstrapper 持有初始化后的基础设施.
type Bootstrapper struct {
	ServiceName string
	Version     string
	// Watch 为 true 时配置文件变更会被热加载, 之后创建的 Planner 使用新配置.
	Watch bool
	// LogOutput 覆盖日志的 stdout 输出目标, 命令行程序把日志写到 stderr 以免混入结果.
	LogOutput io.Writer
	Logger    *logging.Logger
	Metrics   *metrics.Metrics
	Solver    *metrics.SolverMetrics

	current  atomic.Pointer[config.Config]
	shutdown []func(context.Context) error
}

// New 创建一个新的引导器实例
func New(serviceName, version string) *Bootstrapper {
	return &Bootstrapper{
		ServiceName: serviceName,
		Version:     version,
	}
}

// Initialize 加载配置并初始化日志与指标. configPath 为空时使用 config.Default().
func (b *Bootstrapper) Initialize(configPath string) error {
	cfg, err := b.loadConfig(configPath)
	if err != nil {
		// 配置加载失败时先用临时日志器记录
		logging.NewFromConfig(logging.Config{Service: b.ServiceName, Module: "bootstrap", Level: "info", Output: b.LogOutput}).
			Error("failed to load config", "path", configPath, "error", err)
		return err
	}
	if b.Version != "" {
		cfg.Version = b.Version
	}
	b.current.Store(cfg)

	b.Logger = logging.NewFromConfig(logging.Config{
		Service:    b.ServiceName,
		Module:     "bootstrap",
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Output:     b.LogOutput,
	})
	logging.SetDefault(b.Logger)
	config.PrintWithMask(b.Logger.Logger, cfg)

	if cfg.Metrics.Enabled {
		b.Metrics = metrics.NewMetrics(cfg.Metrics.Namespace)
		b.Metrics.RegisterBuildInfo(cfg.Version)
		b.Solver = b.Metrics.NewSolverMetrics()
	}

	logging.Debug(context.Background(), "bootstrap initialized", "version", cfg.Version, "metrics", cfg.Metrics.Enabled, "watch", b.Watch)
	return nil
}

func (b *Bootstrapper) loadConfig(path string) (*config.Config, error) {
	switch {
	case path == "":
		return config.Default(), nil
	case !b.Watch:
		return config.Read(path)
	}

	cfg := &config.Config{}
	if err := config.Load(path, cfg); err != nil {
		return nil, err
	}
	config.RegisterReloadHook(func(next *config.Config) {
		c := *next
		if b.Version != "" {
			c.Version = b.Version
		}
		b.current.Store(&c)
		b.Logger.Info("solver config reloaded", "precision", c.Solver.Precision, "tolerance", c.Solver.Tolerance)
	})
	// Load 返回后 cfg 由配置包在热加载时原地改写, 这里保存一份快照.
	snapshot := *cfg
	return &snapshot, nil
}

// Config 返回当前生效的配置快照.
func (b *Bootstrapper) Config() *config.Config {
	return b.current.Load()
}

// SetupTracing 初始化 OpenTelemetry 追踪器, 失败时记录日志并继续运行.
func (b *Bootstrapper) SetupTracing(ctx context.Context) {
	shutdown, err := tracing.InitTracer(ctx, b.Config().Tracing)
	if err != nil {
		b.Logger.Error("failed to init tracer", "error", err)
		return
	}
	b.shutdown = append(b.shutdown, shutdown)
}

// ServeMetrics 在 addr 上暴露 /metrics, 服务随 Shutdown 关闭. 未启用指标时返回错误.
func (b *Bootstrapper) ServeMetrics(addr string) (net.Addr, error) {
	if b.Metrics == nil {
		return nil, errors.New("bootstrap: metrics are disabled in the config")
	}
	bound, shutdown, err := b.Metrics.Expose(addr)
	if err != nil {
		return nil, err
	}
	b.shutdown = append(b.shutdown, shutdown)
	b.Logger.Info("metrics endpoint listening", "addr", bound.String())
	return bound, nil
}

// Planner 按当前 solver 配置创建 Planner, 并挂载日志与指标.
func (b *Bootstrapper) Planner() (*planning.Planner, error) {
	return planning.NewPlannerFromConfig(b.Config().Solver,
		planning.WithLogger(b.Logger.Named("planning")),
		planning.WithMetrics(b.Solver),
	)
}

// Shutdown 以相反的顺序释放已初始化的组件.
func (b *Bootstrapper) Shutdown(ctx context.Context) {
	for i := len(b.shutdown) - 1; i >= 0; i-- {
		if err := b.shutdown[i](ctx); err != nil {
			b.Logger.Error("failed to shutdown component", "error", err)
		}
	}
	b.shutdown = nil
}
