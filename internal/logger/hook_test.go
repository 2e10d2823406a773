package logger

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHookedLogger(buf *bytes.Buffer) (*logrus.Logger, *AsyncHook) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	hook := NewAsyncHookWithWriters([]io.Writer{buf}, 16)
	l.AddHook(hook)
	return l, hook
}

func TestAsyncHook_CloseFlushesBuffer(t *testing.T) {
	var buf bytes.Buffer
	l, hook := newHookedLogger(&buf)

	l.WithField("mou", "MOU-001").Warn("đang tắt server")
	l.Info("đóng kết nối")
	require.NoError(t, hook.Close())

	out := buf.String()
	assert.Contains(t, out, `level=warning msg="đang tắt server" mou=MOU-001`)
	assert.Contains(t, out, "đóng kết nối")
}

func TestAsyncHook_WritesDirectlyAfterClose(t *testing.T) {
	var buf bytes.Buffer
	l, hook := newHookedLogger(&buf)
	require.NoError(t, hook.Close())
	require.NoError(t, hook.Close(), "đóng lần hai không lỗi")

	l.Error("sau khi đóng")
	assert.Contains(t, buf.String(), `level=error msg="sau khi đóng"`)
}
