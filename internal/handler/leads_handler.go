package handler

import (
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/service"
	"github.com/boddenberg/revomotors-web/internal/session"
	"github.com/boddenberg/revomotors-web/internal/web"
)

type leadData struct {
	Lead         *domain.Lead
	Draft        *domain.GeneratedMessage
	Statuses     []domain.LeadStatus
	MessageTypes []string
	OfferDefault string
}

func leadPath(id int64) string {
	return "/dealer/leads/" + strconv.FormatInt(id, 10)
}

// messageTypes offers follow-ups only once the lead has history.
func messageTypes(l *domain.Lead) []string {
	if l.HasHistory() {
		return domain.MessageTypes
	}
	return []string{domain.MessageInitialContact, domain.MessageRequestMoreInfo}
}

// ============================================================
// Lead detail: GET /dealer/leads/{id}
// ============================================================

func leadPageHandler(svc *service.LeadService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dealer/leads/{id}")
		defer span.End()

		id, ok := idParam(r, "id")
		if !ok {
			k.notFound(w, r)
			return
		}
		span.SetAttributes(attribute.Int64("lead.id", id))

		s := session.FromContext(ctx)
		data := &leadData{Statuses: domain.LeadStatuses}
		v := &web.View{Title: "Lead", Data: data}
		if d, ok := s.Draft(id); ok {
			data.Draft = &d
		}

		lead, err := svc.Get(ctx, s.Token, id)
		if err != nil {
			k.handleServiceError(w, r, web.PageLead, v, err)
			return
		}
		data.Lead = lead
		data.MessageTypes = messageTypes(lead)
		data.OfferDefault = lead.FairOffer()
		if lead.DealerOffer != nil {
			data.OfferDefault = strconv.FormatFloat(*lead.DealerOffer, 'f', -1, 64)
		}
		v.Title = lead.Listing.Vehicle()
		k.render(w, r, http.StatusOK, web.PageLead, v)
	}
}

// ============================================================
// Offer and status: POST /dealer/leads/{id}/{offer,status}
// ============================================================

func leadOfferHandler(svc *service.LeadService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/leads/{id}/offer")
		defer span.End()

		id, ok := idParam(r, "id")
		if !ok {
			k.notFound(w, r)
			return
		}
		back := leadPath(id)
		amount, err := svc.UpdateOffer(ctx, session.FromContext(ctx).Token, id, r.PostFormValue("offer_amount"))
		if err != nil {
			k.failAction(w, r, err, back)
			return
		}
		k.flashRedirect(w, r, session.FlashSuccess, "Offer updated to "+web.Money(amount), back)
	}
}

func leadStatusHandler(svc *service.LeadService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/leads/{id}/status")
		defer span.End()

		id, ok := idParam(r, "id")
		if !ok {
			k.notFound(w, r)
			return
		}
		back := returnTo(r, leadPath(id))
		status, err := svc.UpdateStatus(ctx, session.FromContext(ctx).Token, id, r.PostFormValue("status"))
		if err != nil {
			k.failAction(w, r, err, back)
			return
		}
		k.flashRedirect(w, r, session.FlashSuccess, "Status updated to "+web.Label(status), back)
	}
}

// ============================================================
// AI messages: POST /dealer/leads/{id}/messages/{generate,send,discard}
// ============================================================

func generateMessageHandler(svc *service.LeadService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/leads/{id}/messages/generate")
		defer span.End()

		id, ok := idParam(r, "id")
		if !ok {
			k.notFound(w, r)
			return
		}
		back := returnTo(r, leadPath(id))
		messageType := r.PostFormValue("message_type")
		if messageType == "" {
			messageType = domain.MessageInitialContact
		}

		s := session.FromContext(ctx)
		msg, err := svc.Generate(ctx, s.Token, id, messageType)
		if err != nil {
			k.failAction(w, r, err, back)
			return
		}
		s.SetDraft(id, *msg)
		k.flashRedirect(w, r, session.FlashInfo, "Message generated. Review it before sending.", back)
	}
}

func sendMessageHandler(svc *service.LeadService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/leads/{id}/messages/send")
		defer span.End()

		id, ok := idParam(r, "id")
		if !ok {
			k.notFound(w, r)
			return
		}
		back := returnTo(r, leadPath(id))

		s := session.FromContext(ctx)
		draft, ok := s.Draft(id)
		if !ok {
			k.flashRedirect(w, r, session.FlashError, "No message draft for this lead. Generate one first.", back)
			return
		}
		if r.PostFormValue("confirm") != "yes" {
			k.flashRedirect(w, r, session.FlashInfo, "Message not sent. Confirm to send it.", back)
			return
		}
		messageID, err := strconv.ParseInt(r.PostFormValue("message_id"), 10, 64)
		if err != nil {
			k.flashRedirect(w, r, session.FlashError, "Invalid message", back)
			return
		}

		// the dashboard posts no body and sends the draft as generated
		body := draft.Body
		if _, edited := r.PostForm["body"]; edited {
			body = r.PostFormValue("body")
		}
		_, err = svc.Send(ctx, s.Token, id, draft, domain.SendMessage{MessageID: messageID, Body: body})
		if err != nil {
			k.failAction(w, r, err, back)
			return
		}
		s.ClearDraft(id)
		k.flashRedirect(w, r, session.FlashSuccess, "Message sent successfully", back)
	}
}

func discardMessageHandler(k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			k.notFound(w, r)
			return
		}
		session.FromContext(r.Context()).ClearDraft(id)
		k.redirect(w, r, returnTo(r, leadPath(id)))
	}
}
