package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genstudio/internal/lifecycle"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line   string
		action lifecycle.Action
		args   []string
	}{
		{"generate a red fox in snow", lifecycle.ActionGenerate, []string{"a red fox in snow"}},
		{"generate", lifecycle.ActionGenerate, nil},
		{"prompt  castle on a hill ", lifecycle.ActionPrompt, []string{"castle on a hill"}},
		{"batch a cat | a dog |  ", lifecycle.ActionBatch, []string{"a cat ", " a dog ", "  "}},
		{"mode video", lifecycle.ActionMode, []string{"video"}},
		{"LOAD image 4", lifecycle.ActionLoad, []string{"image", "4"}},
		{"set fps 30", lifecycle.ActionSet, []string{"fps", "30"}},
		{"theme", lifecycle.ActionTheme, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			action, args, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
			if len(tt.args) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestParse_Control(t *testing.T) {
	_, _, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmptyLine)
	_, _, err = Parse("exit")
	assert.ErrorIs(t, err, ErrQuit)
}

type call struct {
	action lifecycle.Action
	args   []string
}

type recordingDispatcher struct {
	calls []call
	err   error
}

func (r *recordingDispatcher) Dispatch(_ context.Context, action lifecycle.Action, args []string) error {
	r.calls = append(r.calls, call{action, args})
	return r.err
}

func TestRun(t *testing.T) {
	d := &recordingDispatcher{}
	in := strings.NewReader("help\n\nprompt a quiet harbor\ngenerate\nquit\ntheme\n")
	var out bytes.Buffer

	require.NoError(t, New(d, in, &out).Run(context.Background()))

	require.Len(t, d.calls, 2)
	assert.Equal(t, lifecycle.ActionPrompt, d.calls[0].action)
	assert.Equal(t, []string{"a quiet harbor"}, d.calls[0].args)
	assert.Equal(t, lifecycle.ActionGenerate, d.calls[1].action)
	assert.Contains(t, out.String(), "commands:")
}

func TestRun_ReportsUsageErrors(t *testing.T) {
	ctrl := lifecycle.NewController(lifecycle.Options{})
	var out bytes.Buffer

	err := New(ctrl, strings.NewReader("mode\nfly away\n"), &out).Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "usage: mode image|video")
	assert.Contains(t, out.String(), `unknown action: "fly"`)
}

func TestRun_ReportsRejectedCommands(t *testing.T) {
	ctrl := lifecycle.NewController(lifecycle.Options{})
	var out bytes.Buffer

	in := "set colour red\nmode audio\nload 99\nset fps 30\n"
	err := New(ctrl, strings.NewReader(in), &out).Run(context.Background())
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, `error: unknown option "colour"`)
	assert.Contains(t, got, `error: unknown content mode: "audio"`)
	assert.Contains(t, got, "error: history item not found")
	assert.Contains(t, got, "error: option does not apply to this mode: fps applies to videos")
}

func TestRun_DoesNotRepeatNotifiedErrors(t *testing.T) {
	ctrl := lifecycle.NewController(lifecycle.Options{})
	var out bytes.Buffer

	// an empty prompt is reported through the notifier
	err := New(ctrl, strings.NewReader("generate\n"), &out).Run(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, out.String(), "error:")
}
