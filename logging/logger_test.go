package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStdLogger_FiltersBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	l := &stdLogger{min: LevelWarn, out: log.New(&buf, "", 0)}

	l.Debugf("should not appear")
	l.Infof("should not appear either")
	l.Warnf("warn %d", 1)
	l.Errorf("error %d", 2)

	out := buf.String()
	require.False(t, strings.Contains(out, "should not appear"))
	require.True(t, strings.Contains(out, "[WARN] warn 1"))
	require.True(t, strings.Contains(out, "[ERROR] error 2"))
}

func TestDiscard_NeverPanics(t *testing.T) {
	Discard.Debugf("x")
	Discard.Infof("x")
	Discard.Warnf("x")
	Discard.Errorf("x")
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "INFO", LevelInfo.String())
	require.Equal(t, "WARN", LevelWarn.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(99).String())
}
