package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "text")
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=dbg", "a=1",
		"level=INFO", "msg=inf", "b=2",
		"level=WARN", "msg=wrn", "c=3",
		"level=ERROR", "msg=err", "d=4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestNew_LevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "text")
	ctx := context.Background()

	log.Debug(ctx, "hidden-debug")
	log.Info(ctx, "hidden-info")
	log.Warn(ctx, "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden-debug")
	assert.NotContains(t, out, "hidden-info")
	assert.Contains(t, out, "shown")
}

func TestNew_JSONWithAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json").With("request_id", "abc")

	log.Info(context.Background(), "hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "abc", line["request_id"])
	assert.Equal(t, "v", line["k"])
}

func TestDiscard_DoesNotPanic(t *testing.T) {
	log := Discard()
	ctx := context.TODO()
	log.Info(ctx, "ok")
	log.With("x", 1).Error(ctx, "ok")
}
