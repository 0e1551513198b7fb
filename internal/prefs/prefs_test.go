package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_DefaultsToDark(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing", "prefs.yaml"))

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, p.Theme)
}

func TestStore_ToggleThemePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genstudio", "prefs.yaml")
	s := NewStore(path)

	theme, err := s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	p, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, p.Theme)

	theme, err = s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)
}

func TestStore_UnknownThemeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: neon\n"), 0o644))

	p, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, p.Theme)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [unclosed"), 0o644))

	p, err := NewStore(path).Load()
	assert.Error(t, err)
	assert.Equal(t, ThemeDark, p.Theme)
}
