package xlog

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// 终端颜色, 参考zap/internal/color
type termColor uint8

const (
	colorRed     termColor = 31
	colorYellow  termColor = 33
	colorBlue    termColor = 34
	colorMagenta termColor = 35
)

func (c termColor) Add(s string) string {
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", uint8(c), s)
}

func encodeLevel(l zapcore.Level) (string, termColor) {
	// 文本和颜色大部分从zap中沿用而来
	switch l {
	case zapcore.DebugLevel:
		return "DEBUG", colorMagenta
	case zapcore.InfoLevel:
		return "INFO", colorBlue
	case zapcore.WarnLevel:
		return "WARN", colorYellow
	case zapcore.ErrorLevel:
		return "ERROR", colorRed
	default:
		return fmt.Sprintf("LEVEL(%d)", l), colorRed
	}
}

// 自定义LevelEncoder
func customLevelEncoder(withColor bool) func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		lvlName, color := encodeLevel(l)
		if withColor {
			lvlName = color.Add(lvlName)
		}
		enc.AppendString(lvlName)
	}
}

// ParseLevel 解析日志等级(debug/info/warn/error), 大小写不敏感
func ParseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return zapcore.DebugLevel, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}
