package optimization

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-7

func unbounded(n int) []float64 {
	u := make([]float64, n)
	for i := range u {
		u[i] = math.Inf(1)
	}
	return u
}

func TestMinimizationFormSignConvention(t *testing.T) {
	profits := []float64{20, 30, -5, 0}
	c := ToMinimizationForm(profits)

	assert.Equal(t, []float64{-20, -30, 5, 0}, c)
	assert.Equal(t, []float64{20, 30, -5, 0}, profits, "input must not be modified")
	assert.Equal(t, 1200.0, FromMinimizationForm(-1200))
	assert.Equal(t, -15.0, FromMinimizationForm(15))

	z := FromMinimizationForm(0)
	assert.False(t, math.Signbit(z), "zero must not be reported as -0")
}

func TestSimplexSolver(t *testing.T) {
	tests := []struct {
		name    string
		prob    *LinearProgram
		wantX   []float64
		wantObj float64
	}{
		{
			name: "single resource prefers best ratio",
			prob: &LinearProgram{
				Objective:   []float64{-20, -30},
				Constraints: [][]float64{{4, 3}},
				RHS:         []float64{120},
				Lower:       []float64{0, 0},
				Upper:       unbounded(2),
			},
			wantX:   []float64{0, 40},
			wantObj: -1200,
		},
		{
			name: "independent rows",
			prob: &LinearProgram{
				Objective:   []float64{-10, -10},
				Constraints: [][]float64{{1, 0}, {0, 1}},
				RHS:         []float64{5, 5},
				Lower:       []float64{0, 0},
				Upper:       unbounded(2),
			},
			wantX:   []float64{5, 5},
			wantObj: -100,
		},
		{
			name: "upper bound caps the best product",
			prob: &LinearProgram{
				Objective:   []float64{-3, -2},
				Constraints: [][]float64{{1, 1}},
				RHS:         []float64{10},
				Lower:       []float64{0, 0},
				Upper:       []float64{4, math.Inf(1)},
			},
			wantX:   []float64{4, 6},
			wantObj: -24,
		},
		{
			name: "lower bound forces production",
			prob: &LinearProgram{
				Objective:   []float64{-20, -30},
				Constraints: [][]float64{{4, 3}},
				RHS:         []float64{120},
				Lower:       []float64{15, 0},
				Upper:       unbounded(2),
			},
			wantX:   []float64{15, 20},
			wantObj: -900,
		},
		{
			name: "negative right-hand side needs phase one",
			prob: &LinearProgram{
				Objective:   []float64{1, 1},
				Constraints: [][]float64{{1, -1}},
				RHS:         []float64{-2},
				Lower:       []float64{0, 0},
				Upper:       unbounded(2),
			},
			wantX:   []float64{0, 2},
			wantObj: 2,
		},
		{
			name: "bounds only",
			prob: &LinearProgram{
				Objective: []float64{-7},
				RHS:       []float64{},
				Lower:     []float64{1},
				Upper:     []float64{9},
			},
			wantX:   []float64{9},
			wantObj: -63,
		},
		{
			name: "unconstrained variable with positive cost stays at lower bound",
			prob: &LinearProgram{
				Objective:   []float64{-5, 2},
				Constraints: [][]float64{{1, 0}},
				RHS:         []float64{3},
				Lower:       []float64{0, 1.5},
				Upper:       unbounded(2),
			},
			wantX:   []float64{3, 1.5},
			wantObj: -12,
		},
	}

	solver := NewSimplexSolver(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := solver.Solve(tt.prob)
			require.NoError(t, err)
			require.Len(t, sol.X, len(tt.wantX))
			for j := range tt.wantX {
				assert.InDelta(t, tt.wantX[j], sol.X[j], eps, "x[%d]", j)
			}
			assert.InDelta(t, tt.wantObj, sol.Objective, eps)
		})
	}
}

func TestSimplexSolverFailures(t *testing.T) {
	tests := []struct {
		name string
		prob *LinearProgram
		want error
	}{
		{
			name: "lower bounds exceed capacity",
			prob: &LinearProgram{
				Objective:   []float64{-20, -30},
				Constraints: [][]float64{{4, 3}},
				RHS:         []float64{120},
				Lower:       []float64{20, 20},
				Upper:       unbounded(2),
			},
			want: ErrInfeasible,
		},
		{
			name: "no constraints and no upper bound",
			prob: &LinearProgram{
				Objective: []float64{-1},
				Lower:     []float64{0},
				Upper:     unbounded(1),
			},
			want: ErrUnbounded,
		},
		{
			name: "negative coefficient opens the region",
			prob: &LinearProgram{
				Objective:   []float64{-1, -1},
				Constraints: [][]float64{{1, -1}},
				RHS:         []float64{4},
				Lower:       []float64{0, 0},
				Upper:       unbounded(2),
			},
			want: ErrUnbounded,
		},
		{
			name: "row length mismatch",
			prob: &LinearProgram{
				Objective:   []float64{-1, -1},
				Constraints: [][]float64{{1}},
				RHS:         []float64{4},
				Lower:       []float64{0, 0},
				Upper:       unbounded(2),
			},
			want: ErrInvalidModel,
		},
		{
			name: "non-finite objective",
			prob: &LinearProgram{
				Objective: []float64{math.NaN()},
				Lower:     []float64{0},
				Upper:     []float64{1},
			},
			want: ErrInvalidModel,
		},
		{
			name: "upper below lower",
			prob: &LinearProgram{
				Objective: []float64{-1},
				Lower:     []float64{2},
				Upper:     []float64{1},
			},
			want: ErrInvalidModel,
		},
	}

	solver := NewSimplexSolver(DefaultTolerance)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := solver.Solve(tt.prob)
			assert.Nil(t, sol)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSimplexSolverIsDeterministic(t *testing.T) {
	prob := &LinearProgram{
		Objective:   []float64{-3, -5, -4},
		Constraints: [][]float64{{2, 3, 1}, {4, 1, 2}, {3, 4, 2}},
		RHS:         []float64{5, 11, 8},
		Lower:       []float64{0, 0, 0},
		Upper:       unbounded(3),
	}
	solver := NewSimplexSolver(0)

	first, err := solver.Solve(prob)
	require.NoError(t, err)
	second, err := solver.Solve(prob)
	require.NoError(t, err)

	assert.Equal(t, first.X, second.X)
	assert.Equal(t, first.Objective, second.Objective)
	for i, row := range prob.Constraints {
		var used float64
		for j, a := range row {
			used += a * first.X[j]
		}
		assert.LessOrEqual(t, used, prob.RHS[i]+eps, "row %d", i)
	}
}
