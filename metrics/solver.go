package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SolverMetrics 记录规划求解的结果分布、耗时与问题规模。
type SolverMetrics struct {
	SolvesTotal   *prometheus.CounterVec   // 求解次数 (维度: status)
	SolveDuration *prometheus.HistogramVec // 求解耗时 (维度: status)
	ProblemSize   *prometheus.GaugeVec     // 最近一次求解的规模 (维度: dimension)
}

// NewSolverMetrics 在 m 的注册表中创建求解指标。
func (m *Metrics) NewSolverMetrics() *SolverMetrics {
	return &SolverMetrics{
		SolvesTotal: m.NewCounterVec(prometheus.CounterOpts{
			Name: "solves_total",
			Help: "Total number of production plan solves by outcome status",
		}, []string{"status"}),
		SolveDuration: m.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "solve_duration_seconds",
			Help:    "Production plan solve latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"status"}),
		ProblemSize: m.NewGaugeVec(prometheus.GaugeOpts{
			Name: "problem_size",
			Help: "Number of products and constraints of the last solved problem",
		}, []string{"dimension"}),
	}
}

// Observe 记录一次求解。nil 接收者什么都不做, 方便未启用指标时直接调用。
func (s *SolverMetrics) Observe(status string, elapsed time.Duration, products, constraints int) {
	if s == nil {
		return
	}
	s.SolvesTotal.WithLabelValues(status).Inc()
	s.SolveDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	s.ProblemSize.WithLabelValues("products").Set(float64(products))
	s.ProblemSize.WithLabelValues("constraints").Set(float64(constraints))
}
