package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(KindImage, "signature.PNG"))
	assert.True(t, Allowed(KindAudio, "visit.m4a"))
	assert.True(t, Allowed(KindDocument, "report.docx"))
	assert.False(t, Allowed(KindImage, "visit.mp3"))
	assert.False(t, Allowed(KindAudio, "noext"))
}

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(Config{Dir: dir, BaseURL: "/uploads/"})
	require.NoError(t, err)
	s.(*diskStore).now = func() time.Time { return time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC) }

	url, err := s.Save(context.Background(), KindImage, "photo.JPG", strings.NewReader("jpegdata"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/image/202603/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
}

func TestDiskStoreRejects(t *testing.T) {
	s, err := NewDiskStore(Config{Dir: t.TempDir(), MaxBytes: 4})
	require.NoError(t, err)

	_, err = s.Save(context.Background(), KindAudio, "visit.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrExtensionNotAllowed)

	_, err = s.Save(context.Background(), KindAudio, "visit.wav", strings.NewReader("too large"))
	assert.ErrorIs(t, err, ErrTooLarge)
}
