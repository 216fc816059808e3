package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantid/internal/model"
)

type captureNotifier struct {
	got []model.ContactMessage
	err error
}

func (n *captureNotifier) Notify(_ context.Context, msg model.ContactMessage) error {
	n.got = append(n.got, msg)
	return n.err
}

func TestHandleDecodesAndNotifies(t *testing.T) {
	n := &captureNotifier{}
	w := NewContactNotifyWorker(nil, n, "contact")

	err := w.handle(context.Background(), []byte(`{"id":4,"name":"Ann","email":"ann@x.com","subject":"Hi","message":"Hello"}`))
	require.NoError(t, err)
	require.Len(t, n.got, 1)
	assert.Equal(t, uint(4), n.got[0].ID)
	assert.Equal(t, "Hi", n.got[0].Subject)
}

func TestHandleRejectsGarbage(t *testing.T) {
	n := &captureNotifier{}
	w := NewContactNotifyWorker(nil, n, "contact")

	err := w.handle(context.Background(), []byte("{not json"))
	assert.ErrorIs(t, err, errUndecodable)
	assert.Empty(t, n.got)
}

func TestHandleSurfacesNotifierError(t *testing.T) {
	boom := errors.New("smtp down")
	w := NewContactNotifyWorker(nil, &captureNotifier{err: boom}, "contact")

	err := w.handle(context.Background(), []byte(`{"id":1}`))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, errUndecodable)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, LogNotifier{}.Notify(context.Background(), model.ContactMessage{ID: 1}))
}
