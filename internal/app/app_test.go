package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"plantid/internal/ai"
	"plantid/internal/model"
	"plantid/internal/repository"
	"plantid/internal/repository/memory"
	"plantid/internal/storage"
)

type fakeInference struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []ai.Task
}

func (f *fakeInference) Analyze(_ context.Context, task ai.Task, image []byte, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, task)
	return f.reply, f.err
}

func (f *fakeInference) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingIdentifications struct {
	repository.Identifications
}

func (failingIdentifications) Create(context.Context, *model.PlantIdentification) error {
	return errors.New("database is gone")
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []model.ContactMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg model.ContactMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func testPNG(t *testing.T, w, h int, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newLocalStore(t *testing.T) (*storage.LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads")
	require.NoError(t, err)
	return store, dir
}

func newMemoryStore() (repository.Store, *memory.DB) {
	return memory.NewStore()
}
