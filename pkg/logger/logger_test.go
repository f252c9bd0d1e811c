package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-control/pkg/logger"
)

func TestNew_NivelExplicito(t *testing.T) {
	l := logger.New(logger.Config{Env: "production", Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
}

func TestNew_NivelPorDefectoSegunEntorno(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.New(logger.Config{Env: "development"}).GetLevel(),
		"development sin nivel explícito loguea en debug")
	assert.Equal(t, zerolog.InfoLevel, logger.New(logger.Config{Env: "production"}).GetLevel(),
		"production sin nivel explícito loguea en info")
	assert.Equal(t, zerolog.InfoLevel, logger.New(logger.Config{Level: "no-es-un-nivel"}).GetLevel(),
		"nivel desconocido cae al default")
}

func TestWithComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	l := &logger.Logger{Logger: zerolog.New(&buf)}

	l.WithComponent("inventory").Info().Msg("movimiento registrado")

	require.NotEmpty(t, buf.Bytes())
	assert.Contains(t, buf.String(), `"component":"inventory"`)
	assert.Contains(t, buf.String(), "movimiento registrado")
}
