package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegisterBuildInfo 注册构建信息指标, 重复调用无副作用。
func (m *Metrics) RegisterBuildInfo(version string) {
	if m == nil || m.BuildInfo != nil {
		return
	}
	if version == "" {
		version = "unknown"
	}

	m.BuildInfo = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build information of the planner",
	}, []string{"version"})

	m.BuildInfo.WithLabelValues(version).Set(1)
}
