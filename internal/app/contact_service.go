package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"plantid/internal/model"
	"plantid/internal/repository"
)

var ErrContactFieldsRequired = errors.New("name, email, subject, and message are required")

// ContactPublisher hands a stored contact message to the notification queue.
type ContactPublisher interface {
	Publish(ctx context.Context, msg model.ContactMessage) error
}

type ContactService struct {
	messages  repository.ContactMessages
	publisher ContactPublisher
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// NewContactService builds the service. publisher may be nil, in which case
// messages are only stored.
func NewContactService(messages repository.ContactMessages, publisher ContactPublisher) *ContactService {
	return &ContactService{messages: messages, publisher: publisher}
}

func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return nil, ErrContactFieldsRequired
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		// The row is already stored; a queue outage must not fail the request.
		if err := s.publisher.Publish(ctx, *msg); err != nil {
			log.Ctx(ctx).Error().Err(err).Uint("contact_id", msg.ID).Msg("publish contact notification failed")
		}
	}
	return msg, nil
}
