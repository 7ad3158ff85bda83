package utils

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"
)

var (
	logger    = zerolog.New(os.Stderr).With().Timestamp().Logger()
	devMode   bool
	loggerMux sync.RWMutex
)

// InitLogger 初始化全局日志，开发模式使用 console 输出
func InitLogger(level string, development bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		if lvl > zerolog.DebugLevel {
			lvl = zerolog.DebugLevel
		}
	}

	loggerMux.Lock()
	defer loggerMux.Unlock()
	logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	devMode = development
}

// SetLogger 替换全局日志（测试使用）
func SetLogger(l zerolog.Logger) {
	loggerMux.Lock()
	defer loggerMux.Unlock()
	logger = l
}

// Logger 返回全局日志
func Logger() *zerolog.Logger {
	loggerMux.RLock()
	defer loggerMux.RUnlock()
	l := logger
	return &l
}

// LogIfDev 仅开发模式输出
func LogIfDev(msg string) {
	if !isDev() {
		return
	}
	Logger().Debug().Msg(SanitizeLogMessage(msg))
}

// LogIfDevf 仅开发模式输出（格式化）
func LogIfDevf(format string, args ...interface{}) {
	if !isDev() {
		return
	}
	Logger().Debug().Msgf(format, args...)
}

func isDev() bool {
	loggerMux.RLock()
	defer loggerMux.RUnlock()
	return devMode
}

func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == 10 || r == 9 {
			sb.WriteRune(r)
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func SanitizeLogUsername(username string) string {
	if len(username) > 50 {
		username = username[:50] + "..."
	}
	return SanitizeLogMessage(username)
}
