package logger

import "go.uber.org/zap"

// Zap adapts a zap logger to the Info/Error shape used by workers.
type Zap struct {
	s *zap.SugaredLogger
}

func NewZap(l *zap.Logger) *Zap {
	return &Zap{s: l.Sugar()}
}

func (z *Zap) Info(msg string, fields ...interface{}) {
	z.s.Infow(msg, fields...)
}

func (z *Zap) Warn(msg string, fields ...interface{}) {
	z.s.Warnw(msg, fields...)
}

func (z *Zap) Error(err error, msg string, fields ...interface{}) {
	z.s.Errorw(msg, append(fields, "error", err)...)
}
