// Package logger configura el logging estructurado de la aplicación sobre zerolog.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones del logger raíz.
type Config struct {
	Env   string // development, staging, production
	Level string // trace, debug, info, warn, error; vacío usa el default del entorno
}

// Logger expone la API de zerolog ya configurada para la aplicación.
type Logger struct {
	zerolog.Logger
}

// New construye el logger raíz. En development escribe consola legible;
// en cualquier otro entorno escribe JSON una línea por evento.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	zl := zerolog.New(w).
		Level(level(cfg)).
		With().
		Timestamp().
		Logger()

	// Librerías que escriben por el logger global de zerolog van al mismo destino
	log.Logger = zl

	return &Logger{Logger: zl}
}

// WithComponent devuelve un sublogger con el campo component fijo, para
// distinguir en los logs qué parte de la aplicación emitió cada evento.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("component", name).Logger()}
}

// level resuelve el nivel: el explícito de Config si viene, si no el default
// del entorno (debug en development, info en el resto).
func level(cfg Config) zerolog.Level {
	switch strings.ToLower(cfg.Level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	if cfg.Env == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
