package planning

import (
	"sync/atomic"

	"github.com/wyfcoding/prodplan/algorithm/optimization"
)

func ptr(v float64) *float64 { return &v }

// countingSolver 记录被调用的次数, 用于确认求解器是否被跳过.
type countingSolver struct {
	inner optimization.Solver
	calls atomic.Int32
}

func newCountingSolver() *countingSolver {
	return &countingSolver{inner: optimization.NewSimplexSolver(0)}
}

func (c *countingSolver) Solve(prob *optimization.LinearProgram) (*optimization.Solution, error) {
	c.calls.Add(1)
	return c.inner.Solve(prob)
}

type stubSolver func(prob *optimization.LinearProgram) (*optimization.Solution, error)

func (f stubSolver) Solve(prob *optimization.LinearProgram) (*optimization.Solution, error) {
	return f(prob)
}

// laborProblem: X 利润 20 耗 4 工时, Y 利润 30 耗 3 工时, 共 120 工时.
func laborProblem() *Problem {
	return &Problem{
		Products: []Product{
			{Name: "X", ProfitPerUnit: 20, Coefficients: map[string]float64{"labor": 4}},
			{Name: "Y", ProfitPerUnit: 30, Coefficients: map[string]float64{"labor": 3}},
		},
		Constraints: []ResourceConstraint{{ResourceName: "labor", Capacity: 120}},
	}
}

// threeResourceProblem 是一个三产品三资源的常见教材算例.
func threeResourceProblem() *Problem {
	return &Problem{
		Products: []Product{
			{Name: "chair", ProfitPerUnit: 45, Coefficients: map[string]float64{"labor": 2, "machine": 1, "operators": 1}},
			{Name: "table", ProfitPerUnit: 80, Coefficients: map[string]float64{"labor": 4, "machine": 3}},
			{Name: "desk", ProfitPerUnit: 60, Coefficients: map[string]float64{"labor": 3, "machine": 2, "operators": 1}},
		},
		Constraints: []ResourceConstraint{
			{ResourceName: "labor", Capacity: 240},
			{ResourceName: "machine", Capacity: 150},
			{ResourceName: "operators", Capacity: 40},
		},
	}
}
