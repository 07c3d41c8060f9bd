package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutWritesFileAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8080/files/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "audios/ab12_track.mp3", strings.NewReader("mp3-bytes"), "audio/mpeg")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/files/audios/ab12_track.mp3", url)

	data, err := os.ReadFile(filepath.Join(root, "audios", "ab12_track.mp3"))
	require.NoError(t, err)
	require.Equal(t, "mp3-bytes", string(data))
}

func TestLocalStore_PutConfinesKeysToRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8080/files")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "../../etc/escape.mp3", strings.NewReader("x"), "audio/mpeg")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/files/etc/escape.mp3", url)

	_, err = os.Stat(filepath.Join(root, "etc", "escape.mp3"))
	require.NoError(t, err)
}

func TestLocalStore_PutRejectsEmptyKey(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "", strings.NewReader("x"), "audio/mpeg")
	require.Error(t, err)
}
