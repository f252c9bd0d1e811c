// Package backoff calcula intervalos de espera exponenciales con jitter
// para reintentos de transacciones en conflicto.
package backoff

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter coeficiente de jitter estándar (50%).
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration devuelve d con jitter aplicado, en el rango [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	jitter := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(jitter)
}

// Exponential calcula el backoff exponencial con jitter para el intento dado.
// base es la espera inicial, max el tope, attempt el número de reintento
// (numeración desde cero) y jitterFactor el coeficiente de aleatoriedad.
func Exponential(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	wait := base
	for i := 0; i < attempt; i++ {
		wait *= 2
		if wait > max {
			wait = max
			break
		}
	}
	return Duration(wait, jitterFactor)
}
