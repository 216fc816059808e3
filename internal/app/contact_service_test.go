package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactSubmitStoresAndPublishes(t *testing.T) {
	store, db := newMemoryStore()
	pub := &recordingPublisher{}
	svc := NewContactService(store.ContactMessages, pub)

	msg, err := svc.Submit(context.Background(), ContactInput{Name: "Ann", Email: "ann@x.com", Subject: "Hi", Message: "Great app"})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, 1, db.Count("contact_messages"))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, msg.ID, pub.msgs[0].ID)
}

func TestContactPublishFailureIsNotFatal(t *testing.T) {
	store, db := newMemoryStore()
	svc := NewContactService(store.ContactMessages, &recordingPublisher{err: errors.New("broker down")})

	_, err := svc.Submit(context.Background(), ContactInput{Name: "Ann", Email: "ann@x.com", Subject: "Hi", Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, 1, db.Count("contact_messages"))
}

func TestContactValidation(t *testing.T) {
	store, db := newMemoryStore()
	svc := NewContactService(store.ContactMessages, nil)

	_, err := svc.Submit(context.Background(), ContactInput{Name: "Ann", Email: "ann@x.com", Subject: " ", Message: "Hello"})
	assert.ErrorIs(t, err, ErrContactFieldsRequired)

	_, err = svc.Submit(context.Background(), ContactInput{Name: "Ann", Email: "\t", Subject: "Hi", Message: "Hello"})
	assert.ErrorIs(t, err, ErrContactFieldsRequired)

	assert.Zero(t, db.Count("contact_messages"))
}
