package xerrors

// 错误码分段：4001xx 输入校验，4221xx 数学上无解，5001xx 求解器故障。
const (
	CodeInvalidProblem   = 400101
	CodeEmptyProducts    = 400102
	CodeDimMismatch      = 400103
	CodeInfeasible       = 422101
	CodeUnbounded        = 422102
	CodeSolverFailure    = 500101
	CodeSolverCancelled  = 500102
	CodeInvalidSolverCfg = 500103
)

var (
	// ErrInvalidProblem 规划问题输入不合法。
	ErrInvalidProblem = New(ErrInvalidArg, CodeInvalidProblem, "invalid problem", "check products, constraints and bounds", nil)
	// ErrEmptyProducts 产品列表为空。
	ErrEmptyProducts = New(ErrInvalidArg, CodeEmptyProducts, "empty products", "a problem needs at least one product", nil)
	// ErrDimMismatch 约束矩阵维度与产品数不一致。
	ErrDimMismatch = New(ErrInvalidArg, CodeDimMismatch, "dimension mismatch", "constraint rows must have one coefficient per product", nil)
	// ErrInfeasibleProblem 不存在同时满足所有约束与上下界的解。
	ErrInfeasibleProblem = New(ErrInfeasible, CodeInfeasible, "infeasible problem", "no production plan satisfies every constraint and bound", nil)
	// ErrUnboundedProblem 目标函数可无限增大。
	ErrUnboundedProblem = New(ErrUnbounded, CodeUnbounded, "unbounded problem", "profit can grow without limit; add a constraint or an upper bound", nil)
	// ErrSolverFailure 底层求解器异常。
	ErrSolverFailure = New(ErrSolver, CodeSolverFailure, "solver failure", "the linear programming solver failed", nil)
	// ErrSolverCancelled 求解前上下文已取消。
	ErrSolverCancelled = New(ErrSolver, CodeSolverCancelled, "solve cancelled", "context was done before solving", nil)
	// ErrInvalidSolverConfig 求解器参数不合法。
	ErrInvalidSolverConfig = New(ErrSolver, CodeInvalidSolverCfg, "invalid solver config", "precision or tolerance out of range", nil)
)

// Validation 构造一个输入校验错误。
func Validation(code int, format string, args ...any) *Error {
	return New(ErrInvalidArg, code, "invalid problem", "", nil).WithDetail(format, args...)
}

// Infeasible 构造一个无可行解错误。
func Infeasible(cause error) *Error {
	return New(ErrInfeasible, CodeInfeasible, "infeasible problem",
		"no production plan satisfies every constraint and bound", cause)
}

// Unbounded 构造一个无界错误。
func Unbounded(cause error) *Error {
	return New(ErrUnbounded, CodeUnbounded, "unbounded problem",
		"profit can grow without limit; add a constraint or an upper bound", cause)
}

// Solver 构造一个求解器故障错误。
func Solver(code int, cause error) *Error {
	msg := "solver failure"
	if code == CodeSolverCancelled {
		msg = "solve cancelled"
	}
	return New(ErrSolver, code, msg, "", cause)
}

// IsValidation 判断错误是否为输入校验错误。
func IsValidation(err error) bool { return TypeOf(err) == ErrInvalidArg }

// IsInfeasible 判断错误是否为无可行解。
func IsInfeasible(err error) bool { return TypeOf(err) == ErrInfeasible }

// IsUnbounded 判断错误是否为无界。
func IsUnbounded(err error) bool { return TypeOf(err) == ErrUnbounded }

// IsSolver 判断错误是否为求解器故障。
func IsSolver(err error) bool { return TypeOf(err) == ErrSolver }
