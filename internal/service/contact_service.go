package service

import (
	"context"
	"fmt"
	"strings"

	"jobboard/internal/authz"
	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/notifications"
	"jobboard/internal/repository"
	"jobboard/internal/validation"
)

type ContactService struct {
	messages repository.ContactRepository
	notifier NotificationSender
	inbox    string
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func NewContactService(messages repository.ContactRepository, notifier NotificationSender, inbox string) *ContactService {
	return &ContactService{messages: messages, notifier: notifier, inbox: inbox}
}

// Submit stores a contact form message and forwards it to the inbox.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	if err := validation.Required("name", in.Name, "email", in.Email, "message", in.Message); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	msg := &models.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.notifier != nil && s.inbox != "" {
		subject := in.Subject
		if subject == "" {
			subject = "New contact message"
		}
		s.notifier.Dispatch(ctx, notifications.Message{
			Recipient: s.inbox,
			Subject:   "[Contact] " + subject,
			Body:      fmt.Sprintf("From: %s <%s>\n\n%s\n", in.Name, in.Email, in.Message),
			Kind:      "contact_message",
		})
	}
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, scope authz.Scope, unreadOnly bool, page int) (*listing.Result[models.ContactMessage], error) {
	if err := RequireAdmin(scope); err != nil {
		return nil, err
	}
	return s.messages.List(ctx, listing.ContactMessageQuery(unreadOnly, page))
}

func (s *ContactService) MarkRead(ctx context.Context, scope authz.Scope, id uint) error {
	if err := RequireAdmin(scope); err != nil {
		return err
	}
	return s.messages.MarkRead(ctx, id)
}
