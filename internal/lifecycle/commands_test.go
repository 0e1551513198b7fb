package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genstudio/internal/request"
	"genstudio/types"
)

func TestCommands_CoverEveryAction(t *testing.T) {
	cmds := NewController(Options{}).Commands()
	for _, a := range []Action{ActionGenerate, ActionBatch, ActionMode, ActionHistory, ActionLoad, ActionDownload, ActionTheme, ActionPrompt, ActionSet} {
		assert.Contains(t, cmds, a)
	}
}

func TestDispatch(t *testing.T) {
	h := newHarness(t, &fakeBackend{imageResp: types.GenerationResponse{Status: "success", ImageURL: "x.png"}})
	h.history.images = []types.HistoryItem{{ID: 4, Prompt: "lighthouse", Style: "artistic", Resolution: "768x768", ImageURL: "l.png"}}
	ctx := context.Background()

	require.NoError(t, h.ctrl.Dispatch(ctx, ActionGenerate, []string{"a", "red", "fox"}))
	h.ctrl.Wait()
	require.Len(t, h.backend.imageCalls, 1)
	assert.Equal(t, "a red fox", h.backend.imageCalls[0].Prompt)

	require.NoError(t, h.ctrl.Dispatch(ctx, ActionSet, []string{"resolution", "1024x1024"}))
	assert.Equal(t, "1024x1024", h.ctrl.Form().Image.Resolution)

	require.NoError(t, h.ctrl.Dispatch(ctx, ActionHistory, nil))
	require.NoError(t, h.ctrl.Dispatch(ctx, ActionLoad, []string{"4"}))
	assert.Equal(t, "lighthouse", h.ctrl.Form().Prompt)

	require.NoError(t, h.ctrl.Dispatch(ctx, ActionMode, []string{"video"}))
	assert.Equal(t, request.ModeVideo, h.ctrl.State().ContentMode)
}

func TestDispatch_Errors(t *testing.T) {
	ctrl := NewController(Options{})
	ctx := context.Background()

	assert.ErrorIs(t, ctrl.Dispatch(ctx, "dance", nil), ErrUnknownAction)
	assert.True(t, IsUsageError(ctrl.Dispatch(ctx, ActionMode, nil)))
	assert.True(t, IsUsageError(ctrl.Dispatch(ctx, ActionLoad, []string{"image", "abc"})))
	assert.True(t, IsUsageError(ctrl.Dispatch(ctx, ActionSet, []string{"style"})))
	assert.False(t, IsUsageError(ctrl.Dispatch(ctx, ActionMode, []string{"gif"})))
	assert.ErrorIs(t, ctrl.Dispatch(ctx, ActionMode, []string{"gif"}), request.ErrUnknownMode)
}
