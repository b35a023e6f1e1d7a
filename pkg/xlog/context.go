package xlog

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKeyType int

const loggerKey loggerKeyType = iota

// 生成一个新的子logger，绑定到新的context中
func NewContext(ctx context.Context, fields ...zapcore.Field) context.Context {
	return context.WithValue(ctx, loggerKey, newLogger(Get(ctx).Raw().With(fields...)))
}

// 子logger附加当前进程pid
func WithPid(ctx context.Context) context.Context {
	return NewContext(ctx, zap.Int(FieldPid, os.Getpid()))
}

// context获取logger
func Get(ctx context.Context) Logger {
	if ctx == nil {
		return global()
	}
	if ctxLogger, ok := ctx.Value(loggerKey).(Logger); ok {
		return ctxLogger
	}
	return global()
}
