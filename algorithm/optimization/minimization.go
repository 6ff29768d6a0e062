package optimization

// ToMinimizationForm 将最大化目标系数转换为求解器使用的最小化系数 (逐项取负).
// 返回新切片, 不修改入参.
func ToMinimizationForm(maximize []float64) []float64 {
	c := make([]float64, len(maximize))
	for i, v := range maximize {
		c[i] = -v
	}
	return c
}

// FromMinimizationForm 将最小化问题的最优值还原为最大化目标值.
// 与 ToMinimizationForm 成对使用, 每次求解只能调用一次.
func FromMinimizationForm(objective float64) float64 {
	z := -objective
	if z == 0 {
		// 避免 -0 出现在报表与 JSON 中
		return 0
	}
	return z
}
