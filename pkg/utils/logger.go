package utils

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger.go - настройка структурированного логирования (uber-go/zap)
//
// Назначение:
// Единая точка инициализации logger'а для всего приложения.
// Формат и уровень задаются конфигурацией (LOG_LEVEL, LOG_FORMAT).
//
// Использование:
//
//	logger := utils.InitLogger(utils.LogConfig{Level: "info", Format: "json"})
//	defer logger.Sync()
//	logger.Infow("sync finished", "provider", "simplefin", "accounts", 3)

// LogConfig - конфигурация logger'а
type LogConfig struct {
	// Level: debug, info, warn, error (default: info)
	Level string

	// Format: json или text (default: json)
	Format string
}

// Logger оборачивает zap.Logger и его sugared вариант
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

// InitLogger создаёт и настраивает logger
//
// Неизвестный уровень или формат заменяются значениями по умолчанию,
// инициализация никогда не падает.
func InitLogger(cfg LogConfig) *Logger {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), level)
	zl := zap.New(core, zap.AddCaller())

	return &Logger{
		Logger: zl,
		sugar:  zl.Sugar(),
	}
}

// parseLevel преобразует строку уровня в zapcore.Level
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Infow логирует сообщение уровня info с парами ключ-значение
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warnw логирует сообщение уровня warn с парами ключ-значение
func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Errorw логирует сообщение уровня error с парами ключ-значение
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Debugw логирует сообщение уровня debug с парами ключ-значение
func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Fatalw логирует сообщение и завершает процесс
func (l *Logger) Fatalw(msg string, keysAndValues ...interface{}) {
	l.sugar.Fatalw(msg, keysAndValues...)
}

// Sync сбрасывает буферизованные записи
// Вызывается при graceful shutdown
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
