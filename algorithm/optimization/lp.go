package optimization

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidModel 线性规划模型本身不合法 (维度、非有限值、上下界冲突).
	ErrInvalidModel = errors.New("optimization: invalid linear program")
	// ErrInfeasible 可行域为空.
	ErrInfeasible = errors.New("optimization: infeasible")
	// ErrUnbounded 目标函数在可行域内无下界.
	ErrUnbounded = errors.New("optimization: unbounded")
	// ErrNumerical 求解器数值失败 (奇异基、Bland 规则失败、线性求解失败等).
	ErrNumerical = errors.New("optimization: numerical failure")
)

// LinearProgram 描述一个最小化形式的线性规划:
//
//	minimize   c·x
//	subject to A·x <= b
//	           lower <= x <= upper
//
// Upper 中的 +Inf 表示该变量无上界.
type LinearProgram struct {
	Objective   []float64
	Constraints [][]float64
	RHS         []float64
	Lower       []float64
	Upper       []float64
}

// Solution 是最小化问题的最优解, X 位于原始变量坐标系中.
type Solution struct {
	X         []float64
	Objective float64
}

// Solver 求解最小化形式的线性规划.
type Solver interface {
	Solve(prob *LinearProgram) (*Solution, error)
}

// Dims 返回约束行数与变量个数.
func (lp *LinearProgram) Dims() (rows, cols int) {
	return len(lp.Constraints), len(lp.Objective)
}

// Validate 检查模型维度与数值.
func (lp *LinearProgram) Validate() error {
	m, n := lp.Dims()
	if n == 0 {
		return fmt.Errorf("%w: no variables", ErrInvalidModel)
	}
	if len(lp.RHS) != m {
		return fmt.Errorf("%w: %d constraint rows but %d right-hand sides", ErrInvalidModel, m, len(lp.RHS))
	}
	if len(lp.Lower) != n || len(lp.Upper) != n {
		return fmt.Errorf("%w: bounds must have %d entries", ErrInvalidModel, n)
	}
	for j, c := range lp.Objective {
		if !isFinite(c) {
			return fmt.Errorf("%w: objective coefficient %d is not finite", ErrInvalidModel, j)
		}
	}
	for i, row := range lp.Constraints {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d coefficients, want %d", ErrInvalidModel, i, len(row), n)
		}
		for j, a := range row {
			if !isFinite(a) {
				return fmt.Errorf("%w: coefficient (%d,%d) is not finite", ErrInvalidModel, i, j)
			}
		}
		if !isFinite(lp.RHS[i]) {
			return fmt.Errorf("%w: right-hand side %d is not finite", ErrInvalidModel, i)
		}
	}
	for j := 0; j < n; j++ {
		lo, hi := lp.Lower[j], lp.Upper[j]
		if !isFinite(lo) {
			return fmt.Errorf("%w: lower bound %d is not finite", ErrInvalidModel, j)
		}
		if math.IsNaN(hi) || math.IsInf(hi, -1) {
			return fmt.Errorf("%w: upper bound %d is invalid", ErrInvalidModel, j)
		}
		if hi < lo {
			return fmt.Errorf("%w: upper bound %d is below lower bound", ErrInvalidModel, j)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
