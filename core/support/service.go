package support

import (
	"context"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
)

// Service files and tracks support tickets.
type Service struct {
	client record.Client
	mail   core.EmailService
	conf   *core.Config
	logger core.Logger
}

func NewService(client record.Client, mail core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{client: client, mail: mail, conf: conf, logger: logger}
}

// NewTicket contains information needed to file a support ticket.
// Status is not caller-controlled: new tickets always open as "open".
type NewTicket struct {
	Subject  string `json:"subject" validate:"required"`
	Message  string `json:"message" validate:"required"`
	Priority string `json:"priority" validate:"required,oneof=low medium high urgent"`
}

func (nt *NewTicket) Validate(validate *validator.Validate) error {
	nt.Subject = core.CleanString(nt.Subject)
	nt.Message = core.CleanString(nt.Message)
	nt.Priority = core.CleanLowerString(nt.Priority)
	return validate.Struct(nt)
}

// CreateTicket files a ticket for usr and sends them an acknowledgment email.
func (s *Service) CreateTicket(ctx context.Context, usr record.User, data NewTicket) (record.SupportTicket, error) {
	body := map[string]interface{}{
		"subject":  data.Subject,
		"message":  data.Message,
		"priority": data.Priority,
		"status":   record.TicketStatusOpen,
		"user":     usr.ID,
	}
	var ticket record.SupportTicket
	if err := s.client.CreateRecord(ctx, record.CollectionSupportTickets, body, &ticket); err != nil {
		return record.SupportTicket{}, errors.Wrap(err, "creating support ticket")
	}

	s.sendAcknowledgment(usr, ticket)
	return ticket, nil
}

// ListUserTickets returns a user's tickets, newest first.
func (s *Service) ListUserTickets(ctx context.Context, userID string) ([]record.SupportTicket, error) {
	var tickets []record.SupportTicket
	q := record.Query{
		Filter:  record.Equal("user", userID),
		Sort:    "-created",
		Expand:  "user",
		PerPage: 50,
	}
	if err := s.client.ListRecords(ctx, record.CollectionSupportTickets, q, &tickets); err != nil {
		s.logger.Error("support: listing tickets", err)
		return nil, errors.Wrap(err, "listing tickets")
	}
	return tickets, nil
}

// UpdateStatus moves a ticket through its lifecycle.
type UpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanLowerString(us.Status)
	return validate.Struct(us)
}

func (s *Service) SetStatus(ctx context.Context, ticketID, status string) (record.SupportTicket, error) {
	var ticket record.SupportTicket
	body := map[string]interface{}{"status": status}
	if err := s.client.UpdateRecord(ctx, record.CollectionSupportTickets, ticketID, body, &ticket); err != nil {
		return record.SupportTicket{}, errors.Wrap(err, "updating ticket status")
	}
	return ticket, nil
}

func (s *Service) sendAcknowledgment(usr record.User, ticket record.SupportTicket) {
	if s.mail == nil || usr.Email == "" {
		return
	}
	s.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "We received your support request: " + ticket.Subject,
		Body: "Hi " + usr.Name + ",\n\n" +
			"Your support request has been filed and our team will get back to you shortly.\n\n" +
			"Subject: " + ticket.Subject + "\n" +
			"Priority: " + ticket.Priority + "\n",
	})
}
