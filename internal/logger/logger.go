// Package logger expõe um zerolog global com o mesmo formato de chamada em todo o serviço:
// logger.Info().Str("campo", v).Msg("mensagem").
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"FundChain/config"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

func Init(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.App.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	SetOutput(out, level, cfg.App.Name)
}

// SetOutput troca o destino dos logs. Usado também pelos testes.
func SetOutput(w io.Writer, level zerolog.Level, service string) {
	l := zerolog.New(w).Level(level).With().Timestamp()
	if service != "" {
		l = l.Str("service", service)
	}

	mu.Lock()
	log = l.Logger()
	mu.Unlock()
}

func get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug() *zerolog.Event {
	return get().Debug()
}

func Info() *zerolog.Event {
	return get().Info()
}

func Warn() *zerolog.Event {
	return get().Warn()
}

func Error() *zerolog.Event {
	return get().Error()
}

func Fatal() *zerolog.Event {
	return get().Fatal()
}
