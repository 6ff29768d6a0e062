// Command prodplan 读取生产规划问题文件, 求解并以 JSON 输出最优计划.
//
//	prodplan --problem plan.yaml [--config prodplan.toml] [--csv out.csv] [--formulation]
//	prodplan --problem plan.yaml --sweep-resource labor --sweep 60,90,120
//	prodplan --problem plan.yaml --watch [--metrics-addr :9090]
//
// 标准输出只承载结果 JSON, 日志写到标准错误.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"

	"github.com/wyfcoding/prodplan/bootstrap"
	"github.com/wyfcoding/prodplan/logging"
	"github.com/wyfcoding/prodplan/planning"
	"github.com/wyfcoding/prodplan/xerrors"
)

// version 由构建时 -ldflags "-X main.version=..." 注入.
var version = "dev"

const (
	exitOK         = 0
	exitSetup      = 1
	exitNotOptimal = 2
	exitUsage      = 64
)

type options struct {
	config        string
	problem       string
	csv           string
	formulation   bool
	sweepResource string
	sweep         []float64
	watch         bool
	metricsAddr   string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := pflag.NewFlagSet("prodplan", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.config, "config", "c", "", "TOML config file (defaults are used when empty)")
	fs.StringVarP(&opts.problem, "problem", "p", "", "problem file in YAML or JSON")
	fs.StringVar(&opts.csv, "csv", "", "write the plan as CSV to this file, '-' for stdout")
	fs.BoolVar(&opts.formulation, "formulation", false, "print the linear program before solving")
	fs.StringVar(&opts.sweepResource, "sweep-resource", "", "resource whose capacity is swept")
	fs.Float64SliceVar(&opts.sweep, "sweep", nil, "capacities to solve for, e.g. 60,90,120")
	fs.BoolVarP(&opts.watch, "watch", "w", false, "re-solve when the problem file changes and hot-reload the config")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address in --watch mode")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.problem == "" {
		fmt.Fprintln(stderr, "prodplan: --problem is required")
		fs.PrintDefaults()
		return exitUsage
	}
	if (opts.sweepResource == "") != (len(opts.sweep) == 0) {
		fmt.Fprintln(stderr, "prodplan: --sweep-resource and --sweep must be used together")
		return exitUsage
	}
	if opts.metricsAddr != "" && !opts.watch {
		fmt.Fprintln(stderr, "prodplan: --metrics-addr requires --watch")
		return exitUsage
	}

	b := bootstrap.New("prodplan", version)
	b.Watch = opts.watch
	b.LogOutput = stderr
	if err := b.Initialize(opts.config); err != nil {
		fmt.Fprintf(stderr, "prodplan: %v\n", err)
		return exitSetup
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	b.SetupTracing(ctx)
	defer b.Shutdown(context.Background())

	code := solveOnce(ctx, b, opts, stdout)
	if !opts.watch {
		return code
	}
	if opts.metricsAddr != "" {
		if _, err := b.ServeMetrics(opts.metricsAddr); err != nil {
			fmt.Fprintf(stderr, "prodplan: %v\n", err)
			return exitSetup
		}
	}
	if err := watchProblem(ctx, opts.problem, func() { solveOnce(ctx, b, opts, stdout) }); err != nil {
		fmt.Fprintf(stderr, "prodplan: %v\n", err)
		return exitSetup
	}
	return exitOK
}

func solveOnce(ctx context.Context, b *bootstrap.Bootstrapper, opts options, stdout io.Writer) int {
	problem, err := planning.LoadProblem(opts.problem)
	if err != nil {
		return emit(stdout, planning.NewOutcome(nil, err))
	}
	if opts.formulation {
		fmt.Fprint(stdout, problem.Formulation())
	}

	planner, err := b.Planner()
	if err != nil {
		return emit(stdout, planning.NewOutcome(nil, err))
	}

	if len(opts.sweep) > 0 {
		return sweep(ctx, planner, problem, opts, stdout)
	}

	plan, err := planner.Solve(ctx, problem)
	code := emit(stdout, planning.NewOutcome(plan, err))
	if err != nil || opts.csv == "" {
		return code
	}
	if err := exportCSV(opts.csv, plan, stdout); err != nil {
		logging.Error(ctx, "csv export failed", "path", opts.csv, "error", err)
		return exitSetup
	}
	return code
}

type sweepLine struct {
	Capacity float64          `json:"capacity"`
	Outcome  planning.Outcome `json:"outcome"`
}

func sweep(ctx context.Context, planner *planning.Planner, problem *planning.Problem, opts options, stdout io.Writer) int {
	defer logging.LogDuration(ctx, "capacity sweep", "resource", opts.sweepResource, "points", len(opts.sweep))()
	points, err := planner.SweepCapacity(ctx, problem, opts.sweepResource, opts.sweep)
	if err != nil {
		return emit(stdout, planning.NewOutcome(nil, err))
	}
	enc := json.NewEncoder(stdout)
	for _, pt := range points {
		if err := enc.Encode(sweepLine{Capacity: pt.Capacity, Outcome: planning.NewOutcome(pt.Plan, pt.Err)}); err != nil {
			return exitSetup
		}
	}
	return exitOK
}

func emit(stdout io.Writer, out planning.Outcome) int {
	data, err := out.JSON()
	if err != nil {
		return exitSetup
	}
	fmt.Fprintln(stdout, string(data))
	if out.Status != planning.StatusOptimal {
		return exitNotOptimal
	}
	return exitOK
}

func exportCSV(path string, plan *planning.Plan, stdout io.Writer) error {
	if path == "-" {
		return planning.WriteCSV(stdout, plan)
	}
	f, err := os.Create(path)
	if err != nil {
		return xerrors.WrapInternal(err, "export csv")
	}
	if err := planning.WriteCSV(f, plan); err != nil {
		_ = f.Close()
		return xerrors.WrapInternal(err, "export csv")
	}
	if err := f.Close(); err != nil {
		return xerrors.WrapInternal(err, "export csv")
	}
	return nil
}

// watchProblem 在问题文件被写入或替换时重新求解, 直到 ctx 结束.
// 监听所在目录, 编辑器常以先写临时文件再重命名的方式保存.
func watchProblem(ctx context.Context, path string, resolve func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logging.Info(ctx, "watching problem file", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			logging.Info(ctx, "problem file changed", "op", ev.Op.String())
			resolve()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn(ctx, "problem watcher error", "error", err)
		}
	}
}
