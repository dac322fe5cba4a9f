package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestMapGormLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"info":   gormlogger.Info,
		"debug":  gormlogger.Info,
		"":       gormlogger.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapGormLogLevel(in), in)
	}
}

func TestGormLogger_Trace(t *testing.T) {
	fc := func() (string, int64) { return "SELECT value FROM state_entries", 1 }

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		wantMsg string
	}{
		{name: "error logged", level: gormlogger.Warn, begin: time.Now(), err: errors.New("disk full"), wantMsg: "SQL error"},
		{name: "not found ignored", level: gormlogger.Warn, begin: time.Now(), err: gormlogger.ErrRecordNotFound},
		{name: "slow query", level: gormlogger.Warn, begin: time.Now().Add(-time.Second), wantMsg: "Slow SQL"},
		{name: "info logs every query", level: gormlogger.Info, begin: time.Now(), wantMsg: "SQL query"},
		{name: "silent logs nothing", level: gormlogger.Silent, begin: time.Now(), err: errors.New("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level)

			gl.Trace(context.Background(), tt.begin, fc, tt.err)

			if tt.wantMsg == "" {
				assert.Equal(t, 0, recorded.Len())
				return
			}
			entries := recorded.FilterMessage(tt.wantMsg).All()
			require.Len(t, entries, 1)
			assert.Equal(t, "SELECT value FROM state_entries", entries[0].ContextMap()["sql"])
			assert.Equal(t, "gorm", entries[0].LoggerName)
		})
	}
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn, WithSlowThreshold(0))
	quiet := gl.LogMode(gormlogger.Silent).(*GormLogger)

	assert.Equal(t, gormlogger.Silent, quiet.logLevel)
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
	assert.Zero(t, quiet.slowThreshold)
}

func TestGormLogger_Messages(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)
	ctx := context.Background()

	gl.Info(ctx, "info %d", 1)
	gl.Warn(ctx, "warn %d", 2)
	gl.Error(ctx, "error %d", 3)

	require.Equal(t, 2, recorded.Len())
	assert.Equal(t, "warn 2", recorded.All()[0].Message)
	assert.Equal(t, "error 3", recorded.All()[1].Message)
}
