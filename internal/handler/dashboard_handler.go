package handler

import (
	"net/http"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/service"
	"github.com/boddenberg/revomotors-web/internal/session"
	"github.com/boddenberg/revomotors-web/internal/web"
)

type dashboardData struct {
	Dashboard *domain.Dashboard
	Query     domain.LeadQuery
	Drafts    map[int64]domain.GeneratedMessage
	Statuses  []domain.LeadStatus
}

// ============================================================
// Dashboard: GET /dealer/dashboard?source=&status=
// ============================================================

func dashboardHandler(svc *service.DealerService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dealer/dashboard")
		defer span.End()

		s := session.FromContext(ctx)
		q := domain.LeadQuery{
			Source: r.URL.Query().Get("source"),
			Status: r.URL.Query().Get("status"),
		}
		data := dashboardData{Query: q, Drafts: s.Drafts, Statuses: domain.LeadStatuses}
		v := &web.View{Title: "Dashboard", Data: &data}

		dash, err := svc.Dashboard(ctx, s.Token, q)
		if err != nil {
			k.handleServiceError(w, r, web.PageDashboard, v, err)
			return
		}
		data.Dashboard = dash
		k.render(w, r, http.StatusOK, web.PageDashboard, v)
	}
}
