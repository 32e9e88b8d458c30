package handler

import (
	"net/http"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/service"
	"github.com/boddenberg/revomotors-web/internal/session"
	"github.com/boddenberg/revomotors-web/internal/web"
)

const (
	sectionProfile       = "profile"
	sectionCommunication = "communication"
	sectionDocuments     = "documents"
)

type settingsData struct {
	Section string
	Profile *domain.DealerProfile
}

// ============================================================
// Settings: GET /dealer/settings?section=profile|communication|documents
// ============================================================

func settingsPageHandler(svc *service.DealerService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dealer/settings")
		defer span.End()

		section := r.URL.Query().Get("section")
		switch section {
		case sectionCommunication, sectionDocuments:
		default:
			section = sectionProfile
		}
		data := &settingsData{Section: section}
		v := &web.View{Title: "Settings", Data: data}

		profile, err := svc.Profile(ctx, session.FromContext(ctx).Token)
		if err != nil {
			k.handleServiceError(w, r, web.PageSettings, v, err)
			return
		}
		data.Profile = profile
		k.render(w, r, http.StatusOK, web.PageSettings, v)
	}
}

func updateProfileHandler(svc *service.DealerService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/settings/profile")
		defer span.End()

		back := "/dealer/settings?section=" + sectionProfile
		upd := &domain.ProfileUpdate{
			CompanyName:    trimmed(r, "company_name"),
			DealershipName: trimmed(r, "dealership_name"),
			LicenseNumber:  trimmed(r, "license_number"),
			Phone:          trimmed(r, "phone"),
			Address:        trimmed(r, "address"),
			City:           trimmed(r, "city"),
			State:          trimmed(r, "state"),
			ZipCode:        trimmed(r, "zip_code"),
			Website:        trimmed(r, "website"),
		}
		if err := svc.UpdateProfile(ctx, session.FromContext(ctx).Token, upd); err != nil {
			k.failAction(w, r, err, back)
			return
		}
		k.flashRedirect(w, r, session.FlashSuccess, "Profile saved", back)
	}
}

func updateCommunicationHandler(svc *service.DealerService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/settings/communication")
		defer span.End()

		back := "/dealer/settings?section=" + sectionCommunication
		prefs := &domain.CommunicationPreferences{
			AutoFollowupEnabled: checked(r, "auto_followup_enabled"),
			FollowupDay1:        checked(r, "followup_day_1"),
			FollowupDay3:        checked(r, "followup_day_3"),
			FollowupDay7:        checked(r, "followup_day_7"),
		}
		if err := svc.UpdateCommunication(ctx, session.FromContext(ctx).Token, prefs); err != nil {
			k.failAction(w, r, err, back)
			return
		}
		k.flashRedirect(w, r, session.FlashSuccess, "Communication preferences saved", back)
	}
}
