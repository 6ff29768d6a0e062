package planning

import (
	"strings"

	"github.com/wyfcoding/prodplan/validator"
	"github.com/wyfcoding/prodplan/xerrors"
)

// Validate 在调用求解器之前检查问题是否合法, 失败时返回 InvalidArg 类型的 *xerrors.Error.
func Validate(problem *Problem) error {
	if problem == nil {
		return xerrors.Validation(xerrors.CodeInvalidProblem, "problem is nil")
	}
	if len(problem.Products) == 0 {
		return xerrors.Validation(xerrors.CodeEmptyProducts, "at least one product is required")
	}
	if err := validator.Struct(problem); err != nil {
		return xerrors.Validation(xerrors.CodeInvalidProblem, "%s", err.Error())
	}

	resources := make(map[string]struct{}, len(problem.Constraints))
	for _, c := range problem.Constraints {
		if validator.IsEmpty(c.ResourceName) {
			return xerrors.Validation(xerrors.CodeInvalidProblem, "resource name must not be blank")
		}
		if _, dup := resources[c.ResourceName]; dup {
			return xerrors.Validation(xerrors.CodeInvalidProblem, "duplicate resource %q", c.ResourceName).
				WithContext("resource", c.ResourceName)
		}
		resources[c.ResourceName] = struct{}{}
	}

	names := make(map[string]struct{}, len(problem.Products))
	for i, p := range problem.Products {
		if validator.IsEmpty(p.Name) {
			return xerrors.Validation(xerrors.CodeInvalidProblem, "products[%d].name must not be blank", i)
		}
		if _, dup := names[p.Name]; dup {
			return xerrors.Validation(xerrors.CodeInvalidProblem, "duplicate product %q", p.Name).
				WithContext("product", p.Name)
		}
		names[p.Name] = struct{}{}

		for res := range p.Coefficients {
			if _, ok := resources[res]; !ok {
				return xerrors.Validation(xerrors.CodeInvalidProblem,
					"product %q consumes undeclared resource %q", p.Name, res).
					WithContext("product", p.Name).
					WithContext("resource", res)
			}
		}
		if lo, hi := problem.LowerBound(i), problem.UpperBound(i); hi < lo {
			return xerrors.Validation(xerrors.CodeInvalidProblem,
				"product %q has max_qty %v below min_qty %v", p.Name, hi, lo).
				WithContext("product", p.Name)
		}
	}
	return nil
}

// NewProblemFromMatrix 由行优先的矩阵数据构造问题: matrix[r][i] 为产品 i 对资源 r 的单位消耗.
// 行长度与产品数不一致时返回 CodeDimMismatch.
func NewProblemFromMatrix(names []string, profits []float64, resources []string, matrix [][]float64, capacities []float64) (*Problem, error) {
	n := len(names)
	if len(profits) != n {
		return nil, xerrors.Validation(xerrors.CodeDimMismatch,
			"%d product names but %d profits", n, len(profits))
	}
	if len(matrix) != len(resources) || len(capacities) != len(resources) {
		return nil, xerrors.Validation(xerrors.CodeDimMismatch,
			"%d resources, %d matrix rows and %d capacities", len(resources), len(matrix), len(capacities))
	}

	problem := &Problem{
		Products:    make([]Product, n),
		Constraints: make([]ResourceConstraint, len(resources)),
	}
	for i, name := range names {
		problem.Products[i] = Product{
			Name:          strings.TrimSpace(name),
			ProfitPerUnit: profits[i],
			Coefficients:  make(map[string]float64, len(resources)),
		}
	}
	for r, row := range matrix {
		if len(row) != n {
			return nil, xerrors.Validation(xerrors.CodeDimMismatch,
				"row %d (%s) has %d coefficients, want %d", r, resources[r], len(row), n).
				WithContext("resource", resources[r])
		}
		problem.Constraints[r] = ResourceConstraint{ResourceName: resources[r], Capacity: capacities[r]}
		for i, v := range row {
			if v != 0 {
				problem.Products[i].Coefficients[resources[r]] = v
			}
		}
	}

	if err := Validate(problem); err != nil {
		return nil, err
	}
	return problem, nil
}
