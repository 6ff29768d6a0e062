package planning

import (
	"github.com/wyfcoding/prodplan/algorithm/optimization"
)

// BuildModel 将已校验的问题转换为最小化形式的线性规划.
// 变量顺序与 problem.Products 一致, 约束行顺序与 problem.Constraints 一致, 缺失的消耗系数记为 0.
func BuildModel(problem *Problem) *optimization.LinearProgram {
	n, m := len(problem.Products), len(problem.Constraints)

	profits := make([]float64, n)
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i, p := range problem.Products {
		profits[i] = p.ProfitPerUnit
		lower[i] = problem.LowerBound(i)
		upper[i] = problem.UpperBound(i)
	}

	rows := make([][]float64, m)
	rhs := make([]float64, m)
	for r, c := range problem.Constraints {
		row := make([]float64, n)
		for i, p := range problem.Products {
			row[i] = p.Coefficients[c.ResourceName]
		}
		rows[r] = row
		rhs[r] = c.Capacity
	}

	return &optimization.LinearProgram{
		Objective:   optimization.ToMinimizationForm(profits),
		Constraints: rows,
		RHS:         rhs,
		Lower:       lower,
		Upper:       upper,
	}
}
