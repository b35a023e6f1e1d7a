package xlog

import (
	"io"
	"os"
	"sync"

	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 字段名
const (
	FieldTimestamp = "@timestamp"
	FieldPid       = "pid"
)

var (
	mu      sync.RWMutex
	gLogger Logger
)

func init() {
	gLogger = initLogger(Options{Level: zapcore.DebugLevel, Output: os.Stdout})
}

// 日志初始化参数
type Options struct {
	Level  zapcore.Level
	JSON   bool      // prod: json格式输出
	Output io.Writer // 默认os.Stdout, nil时关闭输出
}

// Setup 重建全局logger, 进程启动时调用一次
func Setup(opts Options) {
	l := initLogger(opts)
	mu.Lock()
	gLogger = l
	mu.Unlock()
}

func global() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return gLogger
}

func getEncoder(isProd bool) zapcore.Encoder {
	// 使用ECS兼容的encoder格式
	config := ecsCompatibleEncoder(!isProd)
	config.TimeKey = FieldTimestamp
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	if isProd {
		return zapcore.NewJSONEncoder(config)
	}
	// dev: 使用带颜色的终端格式
	return zapcore.NewConsoleEncoder(config)
}

// Elastic Common Schema (ECS) 兼容的encoder格式, 便于日志被ELK归档
func ecsCompatibleEncoder(withColor bool) zapcore.EncoderConfig {
	return ecszap.EncoderConfig{
		EnableName:       true,
		EncodeName:       zapcore.FullNameEncoder,
		EnableStackTrace: true,
		EnableCaller:     true,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      customLevelEncoder(withColor),
		EncodeDuration:   zapcore.StringDurationEncoder,
	}.ToZapCoreEncoderConfig()
}

func defaultOptions() []zap.Option {
	return []zap.Option{
		zap.WithCaller(true),
		// DPanic时自动增加Stacktrace
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.DPanicLevel)),
	}
}

func initLogger(opts Options) Logger {
	sinker := zapcore.Lock(zapcore.NewMultiWriteSyncer())
	if opts.Output != nil {
		sinker = zapcore.Lock(zapcore.AddSync(opts.Output))
	}
	core := zapcore.NewCore(getEncoder(opts.JSON), sinker, zap.NewAtomicLevelAt(opts.Level))
	return newLogger(zap.New(core, defaultOptions()...))
}
