package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var l = zap.NewNop()

// Init 初始化全局 logger；mode 为 release 时输出 JSON，否则输出彩色 console。
func Init(mode, level string) error {
	var cfg zap.Config
	if mode == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if level != "" {
		lv, err := zapcore.ParseLevel(level)
		if err != nil {
			return err
		}
		cfg.Level = zap.NewAtomicLevelAt(lv)
	}
	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	l = built
	return nil
}

// L 返回底层 *zap.Logger（给需要自行派生字段的调用方）。
func L() *zap.Logger { return l }

func Debug(msg string, fields ...zap.Field) { l.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { l.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { l.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { l.Error(msg, fields...) }

func Sync() { _ = l.Sync() }
