package parsing

import (
	"time"

	"go.uber.org/zap"
)

// Observer is notified around the model call. It can only watch: its methods
// return nothing and cannot change the outcome of the extraction.
type Observer interface {
	OnStart(model string, promptChars int)
	OnEnd(model string, elapsed time.Duration, outputChars int)
	OnError(model string, elapsed time.Duration, err error)
}

// NopObserver ignores every notification
type NopObserver struct{}

func (NopObserver) OnStart(string, int) {}
func (NopObserver) OnEnd(string, time.Duration, int) {}
func (NopObserver) OnError(string, time.Duration, error) {}

// LogObserver writes model call events to a zap logger
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver returns an observer logging to logger
func NewLogObserver(logger *zap.Logger) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnStart(model string, promptChars int) {
	o.logger.Info("model call started",
		zap.String("model", model),
		zap.Int("prompt_chars", promptChars))
}

func (o *LogObserver) OnEnd(model string, elapsed time.Duration, outputChars int) {
	o.logger.Info("model call completed",
		zap.String("model", model),
		zap.Duration("elapsed", elapsed),
		zap.Int("output_chars", outputChars))
}

func (o *LogObserver) OnError(model string, elapsed time.Duration, err error) {
	o.logger.Error("model call failed",
		zap.String("model", model),
		zap.Duration("elapsed", elapsed),
		zap.Error(err))
}
