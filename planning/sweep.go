package planning

import (
	"context"

	"github.com/sourcegraph/conc/iter"

	"github.com/wyfcoding/prodplan/xerrors"
)

// SweepPoint 是容量扫描中的一次求解结果, Plan 与 Err 恰有一个非空.
type SweepPoint struct {
	Capacity float64
	Plan     *Plan
	Err      error
}

// SweepCapacity 依次将 resource 的容量替换为 capacities 中的每个值并独立求解.
// 各点并发求解, 互不共享状态; 单点失败只记录在该点的 Err 中.
// 返回结果与 capacities 顺序一致.
func (p *Planner) SweepCapacity(ctx context.Context, problem *Problem, resource string, capacities []float64) ([]SweepPoint, error) {
	if err := Validate(problem); err != nil {
		return nil, err
	}
	if !problem.hasResource(resource) {
		return nil, xerrors.Validation(xerrors.CodeInvalidProblem, "unknown resource %q", resource).
			WithContext("resource", resource)
	}

	base := problem.Clone()
	points := iter.Map(capacities, func(capacity *float64) SweepPoint {
		point := SweepPoint{Capacity: *capacity}
		variant, err := base.WithCapacity(resource, *capacity)
		if err != nil {
			point.Err = err
			return point
		}
		point.Plan, point.Err = p.Solve(ctx, variant)
		return point
	})
	return points, nil
}

func (p *Problem) hasResource(name string) bool {
	for _, c := range p.Constraints {
		if c.ResourceName == name {
			return true
		}
	}
	return false
}
