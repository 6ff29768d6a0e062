package planning

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/prodplan/xerrors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Problem)
		code    int
		context string
	}{
		{"valid", func(*Problem) {}, 0, ""},
		{"blank product name", func(p *Problem) { p.Products[0].Name = "  " }, xerrors.CodeInvalidProblem, ""},
		{"missing product name", func(p *Problem) { p.Products[0].Name = "" }, xerrors.CodeInvalidProblem, ""},
		{"infinite coefficient", func(p *Problem) { p.Products[1].Coefficients["labor"] = math.Inf(1) }, xerrors.CodeInvalidProblem, ""},
		{"negative min", func(p *Problem) { p.Products[0].MinQty = ptr(-1) }, xerrors.CodeInvalidProblem, ""},
		{"max below min", func(p *Problem) {
			p.Products[0].MinQty = ptr(5)
			p.Products[0].MaxQty = ptr(4)
		}, xerrors.CodeInvalidProblem, "product"},
		{"duplicate resource", func(p *Problem) {
			p.Constraints = append(p.Constraints, ResourceConstraint{ResourceName: "labor", Capacity: 1})
		}, xerrors.CodeInvalidProblem, "resource"},
		{"undeclared resource", func(p *Problem) { p.Products[1].Coefficients["paint"] = 2 }, xerrors.CodeInvalidProblem, "resource"},
		{"negative coefficient is allowed", func(p *Problem) { p.Products[1].Coefficients["labor"] = -1 }, 0, ""},
		{"zero capacity is allowed", func(p *Problem) { p.Constraints[0].Capacity = 0 }, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := laborProblem()
			tt.mutate(p)

			err := Validate(p)
			if tt.code == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			e, ok := xerrors.FromError(err)
			require.True(t, ok)
			assert.Equal(t, xerrors.ErrInvalidArg, e.Type)
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Detail)
			if tt.context != "" {
				assert.Contains(t, e.Context, tt.context)
			}
		})
	}
}

func TestValidateDetailNamesTheField(t *testing.T) {
	p := laborProblem()
	p.Constraints[0].Capacity = -3

	err := Validate(p)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraints[0].capacity must be >= 0")
}

func TestNewProblemFromMatrix(t *testing.T) {
	problem, err := NewProblemFromMatrix(
		[]string{"A", "B"},
		[]float64{10, 10},
		[]string{"r1", "r2"},
		[][]float64{{1, 0}, {0, 1}},
		[]float64{5, 5},
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"r1": 1}, problem.Products[0].Coefficients)
	assert.Equal(t, map[string]float64{"r2": 1}, problem.Products[1].Coefficients)

	plan, err := NewPlanner().Solve(context.Background(), problem)
	require.NoError(t, err)
	assert.InDelta(t, 100, plan.TotalProfit, eps)
}

func TestNewProblemFromMatrixDimensionMismatch(t *testing.T) {
	tests := []struct {
		name       string
		profits    []float64
		matrix     [][]float64
		capacities []float64
	}{
		{"short row", []float64{1, 2}, [][]float64{{1}}, []float64{5}},
		{"long row", []float64{1, 2}, [][]float64{{1, 2, 3}}, []float64{5}},
		{"profit count", []float64{1}, [][]float64{{1, 2}}, []float64{5}},
		{"capacity count", []float64{1, 2}, [][]float64{{1, 2}}, []float64{5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProblemFromMatrix([]string{"A", "B"}, tt.profits, []string{"r"}, tt.matrix, tt.capacities)

			require.Error(t, err)
			assert.ErrorIs(t, err, xerrors.ErrDimMismatch)
			assert.Equal(t, StatusInvalid, StatusOf(err))
		})
	}
}

func TestWithCapacityLeavesOriginalUntouched(t *testing.T) {
	p := laborProblem()

	variant, err := p.WithCapacity("labor", 60)
	require.NoError(t, err)

	assert.Equal(t, 60.0, variant.Constraints[0].Capacity)
	assert.Equal(t, 120.0, p.Constraints[0].Capacity)

	variant.Products[0].Coefficients["labor"] = 99
	assert.Equal(t, 4.0, p.Products[0].Coefficients["labor"])

	_, err = p.WithCapacity("steel", 1)
	assert.True(t, xerrors.IsValidation(err))
}
