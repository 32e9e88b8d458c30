package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/port"
)

var leadTracer = otel.Tracer("service/leads")

// LeadService serves the lead detail page: offers, status and AI messages.
type LeadService struct {
	leads  port.LeadAPI
	logger *zap.Logger
}

// NewLeadService creates a new lead service.
func NewLeadService(leads port.LeadAPI, logger *zap.Logger) *LeadService {
	return &LeadService{leads: leads, logger: logger}
}

// Get fetches one lead.
func (s *LeadService) Get(ctx context.Context, token string, id int64) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("lead.id", id))
	return s.leads.GetLead(ctx, token, id)
}

// UpdateOffer parses the custom offer field and records it.
func (s *LeadService) UpdateOffer(ctx context.Context, token string, id int64, raw string) (float64, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.UpdateOffer")
	defer span.End()
	span.SetAttributes(attribute.Int64("lead.id", id))

	amount, err := domain.ParseOffer(raw)
	if err != nil {
		return 0, err
	}
	if _, err := s.leads.UpdateOffer(ctx, token, id, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// UpdateStatus validates and applies a pipeline status.
func (s *LeadService) UpdateStatus(ctx context.Context, token string, id int64, raw string) (domain.LeadStatus, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.UpdateStatus")
	defer span.End()

	status, err := domain.ParseLeadStatus(raw)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.Int64("lead.id", id), attribute.String("lead.status", string(status)))
	if _, err := s.leads.UpdateStatus(ctx, token, id, status); err != nil {
		return "", err
	}
	return status, nil
}

// Generate asks the API for a message draft of the given type.
func (s *LeadService) Generate(ctx context.Context, token string, id int64, messageType string) (*domain.GeneratedMessage, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Generate")
	defer span.End()
	span.SetAttributes(attribute.Int64("lead.id", id), attribute.String("message.type", messageType))

	if err := domain.ValidateMessageType(messageType); err != nil {
		return nil, err
	}
	msg, err := s.leads.GenerateMessage(ctx, token, id, messageType)
	if err != nil {
		return nil, err
	}
	s.logger.Info("message generated",
		zap.Int64("lead_id", id),
		zap.Int64("message_id", msg.MessageID),
		zap.Bool("ai", msg.GeneratedByAI),
	)
	return msg, nil
}

// Send sends the dealer's text for draft. The submitted body is what goes
// out: it is passed as updated_body whenever it differs from the draft.
func (s *LeadService) Send(ctx context.Context, token string, id int64, draft domain.GeneratedMessage, msg domain.SendMessage) (*domain.SendResult, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Send")
	defer span.End()
	span.SetAttributes(attribute.Int64("lead.id", id), attribute.Int64("message.id", msg.MessageID))

	if msg.MessageID != draft.MessageID {
		return nil, &domain.ErrValidation{Field: "message_id", Message: "This message draft is no longer available, generate a new one"}
	}
	if strings.TrimSpace(msg.Body) == "" {
		return nil, &domain.ErrValidation{Field: "body", Message: "Message body must not be empty"}
	}

	updated, _ := msg.UpdatedBody(draft.Body)
	res, err := s.leads.SendMessage(ctx, token, id, msg.MessageID, updated)
	if err != nil {
		return nil, err
	}
	s.logger.Info("message sent",
		zap.Int64("lead_id", id),
		zap.Int64("message_id", msg.MessageID),
		zap.Bool("edited", updated != ""),
	)
	return res, nil
}
