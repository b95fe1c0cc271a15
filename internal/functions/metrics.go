package functions

import (
	"time"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() interfaces.FunctionMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveCallDuration(string, time.Duration) {}

func (noopMetrics) IncrementCallError(string) {}

func (noopMetrics) IncrementCacheHit(string) {}
