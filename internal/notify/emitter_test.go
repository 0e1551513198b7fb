package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu        sync.Mutex
	shown     []Notification
	dismissed []Notification
}

func (s *recordingSink) Show(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, n)
}

func (s *recordingSink) Dismiss(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed = append(s.dismissed, n)
}

func (s *recordingSink) dismissedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dismissed)
}

func TestEmitter_ReplacePolicyKeepsOneVisible(t *testing.T) {
	sink := &recordingSink{}
	e := NewEmitter(sink, PolicyReplace)
	defer e.Close()

	first := e.Notify("Generation already in progress", Info, time.Minute)
	second := e.Notify("Image generated successfully!", Success, time.Minute)

	active := e.visible()
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	require.Len(t, sink.dismissed, 1)
	assert.Equal(t, first.ID, sink.dismissed[0].ID)
	assert.Len(t, sink.shown, 2)
}

func TestEmitter_StackPolicyKeepsAll(t *testing.T) {
	sink := &recordingSink{}
	e := NewEmitter(sink, PolicyStack)
	defer e.Close()

	e.Notify("one", Info, time.Minute)
	e.Notify("two", Warning, time.Minute)
	e.Notify("three", Error, time.Minute)

	active := e.visible()
	require.Len(t, active, 3)
	assert.Equal(t, "one", active[0].Message)
	assert.Equal(t, "three", active[2].Message)
	assert.Empty(t, sink.dismissed)
}

func TestEmitter_AutoDismiss(t *testing.T) {
	sink := &recordingSink{}
	e := NewEmitter(sink, PolicyStack)
	defer e.Close()

	e.Notify("short lived", Info, 20*time.Millisecond)

	assert.Eventually(t, func() bool { return sink.dismissedCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, e.visible())
}

func TestEmitter_DefaultDuration(t *testing.T) {
	e := NewEmitter(nil, PolicyReplace)
	defer e.Close()

	n := e.Notify("no sink attached", Info, 0)
	assert.Equal(t, DefaultDuration, n.Duration)
	assert.Len(t, e.visible(), 1)
}
