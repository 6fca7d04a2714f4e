package places

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogRecorder_CountsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(slog.New(slog.NewTextHandler(&buf, nil)))

	rec.RecordUnrecognized("cidade x")
	rec.RecordUnrecognized("cidade y")
	rec.RecordUnrecognized("cidade x")
	rec.RecordUnrecognized("")

	require.Equal(t, []MissCount{{Text: "cidade x", Count: 2}, {Text: "cidade y", Count: 1}}, rec.Top(0))
	require.Equal(t, []MissCount{{Text: "cidade x", Count: 2}}, rec.Top(1))
	require.Contains(t, buf.String(), "unrecognized place")
	require.Contains(t, buf.String(), `text="cidade x"`)
}
