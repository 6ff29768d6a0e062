// Package planning 将多产品生产规划问题转换为线性规划, 调用求解器并把结果解释为生产计划.
//
// 一个 Problem 由若干 Product 与若干 ResourceConstraint 组成:
//
//	maximize   Σ profit_i · x_i
//	subject to Σ coefficient_ri · x_i <= capacity_r   (每个资源 r)
//	           min_i <= x_i <= max_i
//
// Planner.Solve 是纯函数式的: 相同输入得到相同计划, 不保留任何求解状态.
package planning

import (
	"math"

	"github.com/wyfcoding/prodplan/money"
	"github.com/wyfcoding/prodplan/xerrors"
)

// Product 描述一种产品及其单位利润与单位资源消耗.
type Product struct {
	Name          string             `json:"name"                   yaml:"name"            validate:"required"`
	ProfitPerUnit float64            `json:"profit_per_unit"        yaml:"profit_per_unit" validate:"finite"`
	Coefficients  map[string]float64 `json:"coefficients,omitempty" yaml:"coefficients"    validate:"omitempty,dive,finite"`
	// MinQty 最低需求, nil 表示 0.
	MinQty *float64 `json:"min_qty,omitempty" yaml:"min_qty" validate:"omitempty,finite,gte=0"`
	// MaxQty 产量上限, nil 表示无上限.
	MaxQty *float64 `json:"max_qty,omitempty" yaml:"max_qty" validate:"omitempty,finite,gte=0"`
}

// ResourceConstraint 是一条资源约束: Σ 消耗系数 × 产量 <= Capacity.
type ResourceConstraint struct {
	ResourceName string  `json:"resource_name" yaml:"resource_name" validate:"required"`
	Capacity     float64 `json:"capacity"      yaml:"capacity"      validate:"finite,gte=0"`
}

// Problem 是一次求解的完整输入. 求解过程不会修改它.
type Problem struct {
	Products    []Product            `json:"products"    yaml:"products"    validate:"required,min=1,dive"`
	Constraints []ResourceConstraint `json:"constraints" yaml:"constraints" validate:"omitempty,dive"`
}

// LowerBound 返回第 i 个产品的产量下界.
func (p *Problem) LowerBound(i int) float64 {
	if q := p.Products[i].MinQty; q != nil {
		return *q
	}
	return 0
}

// UpperBound 返回第 i 个产品的产量上界, 无上限时为 +Inf.
func (p *Problem) UpperBound(i int) float64 {
	if q := p.Products[i].MaxQty; q != nil {
		return *q
	}
	return math.Inf(1)
}

// Clone 深拷贝问题, 用于在不影响原输入的情况下构造变体.
func (p *Problem) Clone() *Problem {
	if p == nil {
		return nil
	}
	out := &Problem{
		Products:    make([]Product, len(p.Products)),
		Constraints: append([]ResourceConstraint(nil), p.Constraints...),
	}
	for i, prod := range p.Products {
		cp := prod
		if prod.Coefficients != nil {
			cp.Coefficients = make(map[string]float64, len(prod.Coefficients))
			for k, v := range prod.Coefficients {
				cp.Coefficients[k] = v
			}
		}
		if prod.MinQty != nil {
			v := *prod.MinQty
			cp.MinQty = &v
		}
		if prod.MaxQty != nil {
			v := *prod.MaxQty
			cp.MaxQty = &v
		}
		out.Products[i] = cp
	}
	return out
}

// WithCapacity 返回一个指定资源容量被替换后的副本.
func (p *Problem) WithCapacity(resource string, capacity float64) (*Problem, error) {
	out := p.Clone()
	for i := range out.Constraints {
		if out.Constraints[i].ResourceName == resource {
			out.Constraints[i].Capacity = capacity
			return out, nil
		}
	}
	return nil, xerrors.Validation(xerrors.CodeInvalidProblem, "unknown resource %q", resource).
		WithContext("resource", resource)
}

// Status 是求解结果的判别标签, 与输出契约中的 status 字段一致.
type Status string

const (
	StatusOptimal     Status = "optimal"
	StatusInfeasible  Status = "infeasible"
	StatusUnbounded   Status = "unbounded"
	StatusInvalid     Status = "invalid"
	StatusSolverError Status = "solver_error"
)

// StatusOf 将求解返回的错误映射为状态标签, nil 为 optimal.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOptimal
	}
	switch xerrors.TypeOf(err) {
	case xerrors.ErrInvalidArg:
		return StatusInvalid
	case xerrors.ErrInfeasible:
		return StatusInfeasible
	case xerrors.ErrUnbounded:
		return StatusUnbounded
	default:
		return StatusSolverError
	}
}

// ProductQuantity 是计划中单个产品的产量.
type ProductQuantity struct {
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`     // 按 Plan.Precision 舍入
	RawQuantity float64 `json:"raw_quantity"` // 求解器原值
	// ProfitPerUnit 与 Profit 用于逐产品利润明细, Profit = ProfitPerUnit × Quantity (舍入后).
	ProfitPerUnit float64 `json:"profit_per_unit"`
	Profit        float64 `json:"profit"`
}

// ResourceUsage 描述最优解下某资源的占用情况.
type ResourceUsage struct {
	ResourceName string  `json:"resource_name"`
	Used         float64 `json:"used"`
	Capacity     float64 `json:"capacity"`
	Slack        float64 `json:"slack"`
	Binding      bool    `json:"binding"`
}

// Plan 是一次成功求解得到的生产计划, 生成后不再修改.
type Plan struct {
	Status     Status            `json:"status"`
	Quantities []ProductQuantity `json:"quantities"`
	// TotalProfit 是权威的最大利润: 求解器未舍入的目标值经符号还原后按 Precision 舍入.
	TotalProfit    float64         `json:"total_profit"`
	RawTotalProfit float64         `json:"raw_total_profit"`
	Usage          []ResourceUsage `json:"usage,omitempty"`
	Precision      int32           `json:"precision"`
}

// Quantity 按产品名查找舍入后的产量.
func (p *Plan) Quantity(name string) (float64, bool) {
	for _, q := range p.Quantities {
		if q.ProductName == name {
			return q.Quantity, true
		}
	}
	return 0, false
}

// BreakdownTotal 返回逐产品利润明细之和. 由于按舍入后产量计算, 可能与 TotalProfit 有舍入差.
func (p *Plan) BreakdownTotal() float64 {
	lines := make([]float64, len(p.Quantities))
	for i, q := range p.Quantities {
		lines[i] = q.Profit
	}
	return money.Sum(lines...)
}
