package worker

import (
	"fmt"
	"log/slog"
)

// AsynqSlogAdapter routes asynq's internal logging through slog.
type AsynqSlogAdapter struct {
	logger *slog.Logger
}

// NewAsynqSlogAdapter builds the adapter.
func NewAsynqSlogAdapter(logger *slog.Logger) *AsynqSlogAdapter {
	return &AsynqSlogAdapter{logger: logger}
}

func (a *AsynqSlogAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *AsynqSlogAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *AsynqSlogAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *AsynqSlogAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *AsynqSlogAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}
