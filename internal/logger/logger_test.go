package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, gormlogger.Info, l.GormLogLevel())

	l, err = New("warn", "console")
	require.NoError(t, err)
	assert.Equal(t, gormlogger.Warn, l.GormLogLevel())

	_, err = New("loud", "json")
	require.Error(t, err)
}

func TestNewNop(t *testing.T) {
	l := NewNop().WithComponent("test")
	assert.Equal(t, gormlogger.Silent, l.GormLogLevel())
	l.Infow("discarded", "k", "v")
}
