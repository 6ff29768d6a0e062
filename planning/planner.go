package planning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/wyfcoding/prodplan/algorithm/optimization"
	"github.com/wyfcoding/prodplan/config"
	"github.com/wyfcoding/prodplan/logging"
	"github.com/wyfcoding/prodplan/metrics"
	"github.com/wyfcoding/prodplan/money"
	"github.com/wyfcoding/prodplan/tracing"
	"github.com/wyfcoding/prodplan/validator"
	"github.com/wyfcoding/prodplan/xerrors"
)

const (
	// MaxPrecision 展示精度允许的最大小数位数.
	MaxPrecision int32 = 6
	// DefaultBindingTolerance 判定紧约束的默认松弛量阈值.
	DefaultBindingTolerance = 1e-6
)

// Planner 求解生产规划问题. 它只持有配置, 可在多个 goroutine 间共享.
type Planner struct {
	solver     optimization.Solver
	precision  int32
	bindingTol float64
	logger     *logging.Logger
	metrics    *metrics.SolverMetrics
}

// Option 定义 Planner 的可选配置.
type Option func(*Planner)

// WithSolver 替换底层线性规划求解器.
func WithSolver(s optimization.Solver) Option {
	return func(p *Planner) {
		if s != nil {
			p.solver = s
		}
	}
}

// WithPrecision 设置展示精度, 超出 [0, MaxPrecision] 时取边界值.
func WithPrecision(places int32) Option {
	return func(p *Planner) {
		p.precision = min(max(places, 0), MaxPrecision)
	}
}

// WithBindingTolerance 设置紧约束判定阈值.
func WithBindingTolerance(tol float64) Option {
	return func(p *Planner) {
		if validator.IsNonNegative(tol) {
			p.bindingTol = tol
		}
	}
}

// WithLogger 设置日志记录器.
func WithLogger(l *logging.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics 挂载求解指标.
func WithMetrics(m *metrics.SolverMetrics) Option {
	return func(p *Planner) {
		p.metrics = m
	}
}

// NewPlanner 创建 Planner, 默认使用 gonum 单纯形法、2 位小数精度.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{
		solver:     optimization.NewSimplexSolver(optimization.DefaultTolerance),
		precision:  money.DefaultPlaces,
		bindingTol: DefaultBindingTolerance,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.Default().Named("planning")
	}
	return p
}

// NewPlannerFromConfig 按 solver 配置段创建 Planner. opts 在配置之后应用.
func NewPlannerFromConfig(cfg config.SolverConfig, opts ...Option) (*Planner, error) {
	if cfg.Precision < 0 || cfg.Precision > MaxPrecision {
		return nil, xerrors.New(xerrors.ErrSolver, xerrors.CodeInvalidSolverCfg, "invalid solver config",
			fmt.Sprintf("precision %d outside [0, %d]", cfg.Precision, MaxPrecision), nil)
	}
	if !(cfg.Tolerance > 0) || cfg.BindingTolerance < 0 {
		return nil, xerrors.New(xerrors.ErrSolver, xerrors.CodeInvalidSolverCfg, "invalid solver config",
			fmt.Sprintf("tolerance %g, binding tolerance %g", cfg.Tolerance, cfg.BindingTolerance), nil)
	}
	base := []Option{
		WithSolver(optimization.NewSimplexSolver(cfg.Tolerance)),
		WithPrecision(cfg.Precision),
		WithBindingTolerance(cfg.BindingTolerance),
	}
	return NewPlanner(append(base, opts...)...), nil
}

// Precision 返回展示精度.
func (p *Planner) Precision() int32 { return p.precision }

// Solve 求解问题并返回最优计划. 失败时返回 *xerrors.Error, 不会返回部分或全零的计划.
// problem 不会被修改.
func (p *Planner) Solve(ctx context.Context, problem *Problem) (*Plan, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "planning.Solve")
	defer span.End()

	var n, m int
	if problem != nil {
		n, m = len(problem.Products), len(problem.Constraints)
	}
	tracing.AddTag(ctx, "plan.products", n)
	tracing.AddTag(ctx, "plan.constraints", m)

	plan, err := p.solve(ctx, problem)
	status := StatusOf(err)
	elapsed := time.Since(start)
	p.metrics.Observe(string(status), elapsed, n, m)
	tracing.AddTag(ctx, "plan.status", string(status))

	if err != nil {
		tracing.SetError(ctx, err)
		if id := tracing.GetTraceID(ctx); id != "" {
			if e, ok := xerrors.FromError(err); ok {
				e.WithContext("trace_id", id)
			}
		}
		p.logger.WarnContext(ctx, "production plan solve failed",
			"status", status, "products", n, "constraints", m, "error", err, "duration", elapsed)
		return nil, err
	}

	tracing.AddTag(ctx, "plan.total_profit", plan.TotalProfit)
	p.logger.DebugContext(ctx, "production plan solved",
		"products", n, "constraints", m, "total_profit", plan.TotalProfit, "duration", elapsed)
	return plan, nil
}

func (p *Planner) solve(ctx context.Context, problem *Problem) (*Plan, error) {
	if err := Validate(problem); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Solver(xerrors.CodeSolverCancelled, err)
	}

	model := BuildModel(problem)
	sol, err := p.invoke(model)
	if err != nil {
		return nil, classify(err)
	}
	if sol == nil || len(sol.X) != len(problem.Products) {
		return nil, xerrors.Solver(xerrors.CodeSolverFailure,
			errors.New("solver returned a solution of the wrong dimension"))
	}
	for i, v := range sol.X {
		if !isFinite(v) {
			return nil, xerrors.Solver(xerrors.CodeSolverFailure,
				fmt.Errorf("solver returned a non-finite value for %q", problem.Products[i].Name))
		}
	}
	if !isFinite(sol.Objective) {
		return nil, xerrors.Solver(xerrors.CodeSolverFailure, errors.New("solver returned a non-finite objective"))
	}

	return p.interpret(problem, model, sol), nil
}

// invoke 调用求解器, 外部实现的 panic 被转换为数值错误.
func (p *Planner) invoke(model *optimization.LinearProgram) (sol *optimization.Solution, err error) {
	defer func() {
		if r := recover(); r != nil {
			sol = nil
			err = fmt.Errorf("%w: solver panic: %v", optimization.ErrNumerical, r)
		}
	}()
	return p.solver.Solve(model)
}

func classify(err error) error {
	// 求解器返回的 *xerrors.Error 可能是共享的哨兵, 复制一份再返回.
	if e, ok := xerrors.FromError(err); ok {
		return xerrors.New(e.Type, e.Code, e.Message, e.Detail, err)
	}
	switch {
	case errors.Is(err, optimization.ErrInfeasible):
		return xerrors.Infeasible(err)
	case errors.Is(err, optimization.ErrUnbounded):
		return xerrors.Unbounded(err)
	default:
		// 校验通过后模型仍被判定非法, 属于求解器一侧的问题.
		return xerrors.Solver(xerrors.CodeSolverFailure, err)
	}
}

// interpret 将最小化问题的解还原为生产计划. 只在这里做舍入.
func (p *Planner) interpret(problem *Problem, model *optimization.LinearProgram, sol *optimization.Solution) *Plan {
	raw := optimization.FromMinimizationForm(sol.Objective)
	plan := &Plan{
		Status:         StatusOptimal,
		Quantities:     make([]ProductQuantity, len(problem.Products)),
		TotalProfit:    money.Round(raw, p.precision),
		RawTotalProfit: raw,
		Precision:      p.precision,
	}

	for i, prod := range problem.Products {
		qty := money.Round(sol.X[i], p.precision)
		plan.Quantities[i] = ProductQuantity{
			ProductName:   prod.Name,
			Quantity:      qty,
			RawQuantity:   sol.X[i],
			ProfitPerUnit: prod.ProfitPerUnit,
			Profit:        money.LineTotal(prod.ProfitPerUnit, qty, p.precision),
		}
	}

	if len(problem.Constraints) > 0 {
		plan.Usage = make([]ResourceUsage, len(problem.Constraints))
	}
	for r, c := range problem.Constraints {
		used := floats.Dot(model.Constraints[r], sol.X)
		slack := c.Capacity - used
		plan.Usage[r] = ResourceUsage{
			ResourceName: c.ResourceName,
			Used:         money.Round(used, p.precision),
			Capacity:     c.Capacity,
			Slack:        money.Round(slack, p.precision),
			Binding:      math.Abs(slack) <= p.bindingTol*math.Max(1, math.Abs(c.Capacity)),
		}
	}
	return plan
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
