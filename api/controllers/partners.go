package controllers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trailhop/partner-payments/api/responses"
	"github.com/trailhop/partner-payments/api/validators"
	"github.com/trailhop/partner-payments/internal/partneraccounts"
	"github.com/trailhop/partner-payments/pkg/config"
	pkgerrors "github.com/trailhop/partner-payments/pkg/errors"
	"github.com/trailhop/partner-payments/pkg/logger"
)

type onboardingLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PartnerOnboardingLink starts or resumes express onboarding for a seller.
func PartnerOnboardingLink(svc partneraccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner account service unavailable"))
			return
		}

		sellerID, err := sellerIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload onboardingLinkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSellerID(ctx, sellerID.String())
		}

		link, err := svc.CreateOnboardingLink(ctx, sellerID, payload.Email)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, link)
	}
}

// PartnerDashboardLink mints a one-time login link into the hosted dashboard.
func PartnerDashboardLink(svc partneraccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner account service unavailable"))
			return
		}

		sellerID, err := sellerIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.CreateDashboardLink(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, link)
	}
}

// PartnerAccount returns the seller-facing account view.
func PartnerAccount(svc partneraccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner account service unavailable"))
			return
		}

		sellerID, err := sellerIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetStatus(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// PartnerDisconnect detaches the seller's account locally.
func PartnerDisconnect(svc partneraccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner account service unavailable"))
			return
		}

		sellerID, err := sellerIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Disconnect(r.Context(), sellerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "disconnected"})
	}
}

// PartnerCallback handles the return redirect from hosted onboarding and
// bounces the seller back to the settings page with an outcome indicator.
func PartnerCallback(svc partneraccounts.Service, checkout config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner account service unavailable"))
			return
		}

		sellerID, err := uuid.Parse(r.URL.Query().Get("seller_id"))
		if err != nil {
			http.Redirect(w, r, settingsRedirect(checkout.SettingsURL, "error"), http.StatusFound)
			return
		}
		accountID := r.URL.Query().Get("account")
		if accountID == "" {
			http.Redirect(w, r, settingsRedirect(checkout.SettingsURL, "error"), http.StatusFound)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSellerID(ctx, sellerID.String())
		}

		active, err := svc.VerifyAfterCallback(ctx, sellerID, accountID)
		switch {
		case err != nil:
			if logg != nil {
				logg.Error(ctx, "onboarding callback verification failed", err)
			}
			http.Redirect(w, r, settingsRedirect(checkout.SettingsURL, "error"), http.StatusFound)
		case active:
			http.Redirect(w, r, settingsRedirect(checkout.SettingsURL, "success"), http.StatusFound)
		default:
			// Onboarding still has outstanding requirements; the seller can
			// resume from settings.
			http.Redirect(w, r, settingsRedirect(checkout.SettingsURL, "refresh"), http.StatusFound)
		}
	}
}

func sellerIDFromURL(r *http.Request) (uuid.UUID, error) {
	sellerID, err := uuid.Parse(chi.URLParam(r, "sellerID"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller id")
	}
	return sellerID, nil
}

func settingsRedirect(settingsURL, outcome string) string {
	q := url.Values{}
	q.Set("connect", outcome)
	return settingsURL + "?" + q.Encode()
}
