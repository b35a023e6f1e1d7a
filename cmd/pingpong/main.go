package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"pingpong/pkg/exchange"
	"pingpong/pkg/xcommon"
	"pingpong/pkg/xenv"
	"pingpong/pkg/xlog"

	"go.uber.org/zap"
)

const (
	modeSingle   = "1" // 单进程, 两个协程
	modeSeparate = "2" // 双进程, 网络连接
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitBadArgs = 2
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <1|2>\n  1: single process\n  2: separate processes\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	conf, err := xenv.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(exitBadArgs)
	}
	lvl, err := xlog.ParseLevel(conf.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(exitBadArgs)
	}
	xlog.Setup(xlog.Options{Level: lvl, JSON: conf.LogJSON, Output: os.Stdout})

	ctx, stop := xcommon.SignalContext(context.Background())
	code := run(ctx, conf, flag.Args())
	stop()
	_ = xlog.Get(ctx).Sync()
	os.Exit(code)
}

func run(ctx context.Context, conf xenv.Config, args []string) int {
	defer xcommon.Recover(ctx)

	if len(args) == 0 {
		xlog.Get(ctx).Warn("Missing mode. Please enter 1 or 2.")
		return exitBadArgs
	}

	c, err := exchange.New(conf)
	if err != nil {
		xlog.Get(ctx).Error("Create coordinator failed.", zap.Error(err))
		return exitBadArgs
	}

	switch args[0] {
	case modeSingle:
		if _, err := c.RunSingle(ctx); err != nil {
			xlog.Get(ctx).Error("Single process session failed.", zap.Error(err))
			return exitFailed
		}
	case modeSeparate:
		if _, err := c.RunSeparate(ctx); err != nil {
			xlog.Get(ctx).Error("Separate process session failed.", zap.Error(err))
			return exitFailed
		}
	default:
		xlog.Get(ctx).Warn("Invalid input. Please enter 1 or 2.", zap.String("input", args[0]))
		return exitBadArgs
	}
	return exitOK
}
