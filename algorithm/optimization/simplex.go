package optimization

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// DefaultTolerance 是 SimplexSolver 的默认数值容差.
const DefaultTolerance = 1e-10

// SimplexSolver 基于 gonum 的单纯形法实现 Solver.
// gonum 只接受标准型 (A·x = b, x >= 0), 因此求解前会做平移、加松弛变量等变换.
type SimplexSolver struct {
	Tolerance float64
}

// NewSimplexSolver 创建求解器, tol <= 0 时使用 DefaultTolerance.
func NewSimplexSolver(tol float64) *SimplexSolver {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return &SimplexSolver{Tolerance: tol}
}

func (s *SimplexSolver) tolerance() float64 {
	if s == nil || s.Tolerance <= 0 {
		return DefaultTolerance
	}
	return s.Tolerance
}

// Solve 实现 Solver 接口.
func (s *SimplexSolver) Solve(prob *LinearProgram) (*Solution, error) {
	if prob == nil {
		return nil, fmt.Errorf("%w: nil program", ErrInvalidModel)
	}
	if err := prob.Validate(); err != nil {
		return nil, err
	}
	tol := s.tolerance()

	sf, err := toStandardForm(prob)
	if err != nil {
		return nil, err
	}

	y := make([]float64, len(sf.cols))
	switch {
	case len(sf.cols) > 0:
		opt, err := runSimplex(sf, tol)
		if err != nil {
			return nil, err
		}
		copy(y, opt[:len(sf.cols)])
	default:
		// 所有变量都被固定在下界, 只需检查剩余约束是否满足.
		for i, r := range sf.rhs {
			if r < -tol {
				return nil, fmt.Errorf("%w: row %d violated at the lower bounds", ErrInfeasible, i)
			}
		}
	}

	x := make([]float64, len(prob.Objective))
	copy(x, prob.Lower)
	for k, j := range sf.cols {
		v := y[k]
		if v < 0 {
			v = 0
		}
		x[j] = prob.Lower[j] + v
		if hi := prob.Upper[j]; x[j] > hi && x[j]-hi <= tol*math.Max(1, math.Abs(hi)) {
			x[j] = hi
		}
	}

	return &Solution{X: x, Objective: floats.Dot(prob.Objective, x)}, nil
}

// standardForm 是 gonum 需要的等式标准型.
// 结构列 k 对应原变量 cols[k] 的平移量 y = x - lower, 其余列为松弛变量.
type standardForm struct {
	c       []float64
	a       *mat.Dense
	b       []float64
	rhs     []float64 // 平移后、符号归一化前的约束右端 (仅原始约束行)
	cols    []int
	basic   []int
	negated bool
}

func toStandardForm(prob *LinearProgram) (*standardForm, error) {
	m, n := prob.Dims()

	shifted := make([]float64, m)
	for i, row := range prob.Constraints {
		shifted[i] = prob.RHS[i] - floats.Dot(row, prob.Lower)
	}

	sf := &standardForm{rhs: shifted}
	var bounded []int
	for j := 0; j < n; j++ {
		hasUpper := !math.IsInf(prob.Upper[j], 1)
		used := hasUpper
		for i := 0; i < m && !used; i++ {
			used = prob.Constraints[i][j] != 0
		}
		if !used {
			if prob.Objective[j] < 0 {
				return nil, fmt.Errorf("%w: variable %d improves the objective and is not constrained", ErrUnbounded, j)
			}
			continue
		}
		sf.cols = append(sf.cols, j)
		if hasUpper {
			bounded = append(bounded, len(sf.cols)-1)
		}
	}

	k := len(sf.cols)
	if k == 0 {
		return sf, nil
	}

	rows := m + len(bounded)
	width := k + rows
	data := make([]float64, rows*width)
	sf.b = make([]float64, rows)
	sf.c = make([]float64, width)
	for col, j := range sf.cols {
		sf.c[col] = prob.Objective[j]
	}

	for i := 0; i < m; i++ {
		for col, j := range sf.cols {
			data[i*width+col] = prob.Constraints[i][j]
		}
		data[i*width+k+i] = 1
		sf.b[i] = shifted[i]
	}
	for t, col := range bounded {
		i := m + t
		j := sf.cols[col]
		data[i*width+col] = 1
		data[i*width+k+i] = 1
		sf.b[i] = prob.Upper[j] - prob.Lower[j]
	}

	// gonum 对 b 无符号要求, 但右端非负时松弛列本身就是可行基, 可以跳过第一阶段.
	for i := 0; i < rows; i++ {
		if sf.b[i] >= 0 {
			continue
		}
		sf.negated = true
		sf.b[i] = -sf.b[i]
		for c := 0; c < width; c++ {
			data[i*width+c] = -data[i*width+c]
		}
	}
	if !sf.negated {
		sf.basic = make([]int, rows)
		for i := range sf.basic {
			sf.basic[i] = k + i
		}
	}

	sf.a = mat.NewDense(rows, width, data)
	return sf, nil
}

func runSimplex(sf *standardForm, tol float64) (x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			x = nil
			err = fmt.Errorf("%w: solver panic: %v", ErrNumerical, r)
		}
	}()

	_, x, err = lp.Simplex(sf.c, sf.a, sf.b, tol, sf.basic)
	switch {
	case err == nil:
		return x, nil
	case errors.Is(err, lp.ErrInfeasible):
		return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
	case errors.Is(err, lp.ErrUnbounded):
		return nil, fmt.Errorf("%w: %v", ErrUnbounded, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrNumerical, err)
	}
}
