package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tiwac100/hydrogen/internal/service"
	"github.com/tiwac100/hydrogen/internal/session"
	apperrors "github.com/tiwac100/hydrogen/pkg/errors"
	"github.com/tiwac100/hydrogen/pkg/httputil"
	"github.com/tiwac100/hydrogen/pkg/logger"
)

// AddressHandler handles HTTP requests for the customer address screen.
type AddressHandler struct {
	service *service.AddressService
	logger  *slog.Logger
}

// NewAddressHandler creates a new address HTTP handler.
func NewAddressHandler(svc *service.AddressService, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{
		service: svc,
		logger:  logger,
	}
}

// FormErrorResponse is the body of a rejected submission.
type FormErrorResponse struct {
	FormError string `json:"formError"`
}

// ListAddresses handles GET /account/addresses
func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	coll, err := h.service.ListAddresses(r.Context(), session.TokenFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, coll)
}

// GetAddressForm handles GET /account/addresses/{id}
func (h *AddressHandler) GetAddressForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.service.LoadForm(r.Context(), session.TokenFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, form)
}

// SubmitAddress handles POST and DELETE /account/addresses/{id}. The addressId form
// field, not the route, names the address being mutated.
func (h *AddressHandler) SubmitAddress(w http.ResponseWriter, r *http.Request) {
	sub, err := parseSubmission(w, r)
	if err != nil {
		logger.FromContext(r.Context(), h.logger).DebugContext(r.Context(), "rejecting malformed form",
			slog.String("error", err.Error()),
		)
		httputil.WriteError(w, r, apperrors.InvalidInput("malformed form body"), h.logger)
		return
	}

	outcome, err := h.service.Dispatch(r.Context(), sub, session.TokenFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if outcome.Failed() {
		httputil.WriteJSON(w, http.StatusBadRequest, FormErrorResponse{FormError: outcome.FormError})
		return
	}
	http.Redirect(w, r, outcome.RedirectTo, http.StatusSeeOther)
}
