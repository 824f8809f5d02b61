package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestGetLoggerLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := &zapLogger{cfg: &ZapConfig{Level: tt.level}}
			assert.Equal(t, tt.want, l.getLoggerLevel())
		})
	}
}

func TestWithStoresChildLogger(t *testing.T) {
	logger := Init(ZapConfig{Level: LevelDebug, Mode: ModeDevelopment, Encoding: EncodingConsole})
	impl := logger.(*zapLogger)

	base := context.Background()
	ctx := logger.With(base, "page_id", "abc")

	assert.Same(t, impl.sugarLogger, impl.ctx(base))
	assert.NotSame(t, impl.sugarLogger, impl.ctx(ctx))
}

func TestNilContextPanics(t *testing.T) {
	logger := NewNop()
	assert.Panics(t, func() {
		//nolint:staticcheck
		logger.Info(nil, "boom")
	})
}
