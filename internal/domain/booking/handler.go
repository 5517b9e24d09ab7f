package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/saya/booking-api/internal/middleware"
	"github.com/saya/booking-api/internal/pkg/errorhandler"
	"github.com/saya/booking-api/internal/pkg/response"
	"github.com/saya/booking-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Steps handles GET /bookings/steps
func (h *Handler) Steps(w http.ResponseWriter, r *http.Request) {
	response.OK(w, Steps())
}

// Start handles POST /bookings
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.service.Start(r.Context(), req.SubjectItem, req.ReturnURL)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.Created(w, SessionResponseFromEntity(sess))
}

// Restart handles POST /bookings/{id}/start
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.service.Restart(r.Context(), chi.URLParam(r, "id"), req.SubjectItem, req.ReturnURL)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// Update handles PATCH /bookings/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.Apply)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// SetStep handles PUT /bookings/{id}/step
func (h *Handler) SetStep(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.service.SetStep(r.Context(), chi.URLParam(r, "id"), Step(*req.Step))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// SetDialog handles PUT /bookings/{id}/dialog
func (h *Handler) SetDialog(w http.ResponseWriter, r *http.Request) {
	var req DialogRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.service.SetDialog(r.Context(), chi.URLParam(r, "id"), *req.IsOpen)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// SetPrices handles PUT /bookings/{id}/prices
func (h *Handler) SetPrices(w http.ResponseWriter, r *http.Request) {
	var req SetPricesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	prices := make([]NightlyPrice, len(req.Prices))
	for i, p := range req.Prices {
		prices[i] = NightlyPrice{Date: p.Date, Amount: p.Amount}
	}

	sess, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), func(s *Session) error {
		return s.SetPrices(prices)
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// FetchPrices handles POST /bookings/{id}/prices
func (h *Handler) FetchPrices(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.FetchPrices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// ClearPrices handles DELETE /bookings/{id}/prices
func (h *Handler) ClearPrices(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.ClearPrices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// ClearDateTwo handles DELETE /bookings/{id}/date-two
func (h *Handler) ClearDateTwo(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.ClearDateTwo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// Validate handles POST /bookings/{id}/validate
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Validate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, ValidateResponse{Valid: true})
}

// Submit handles POST /bookings/{id}/submit
// Requires guest authentication.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	guest := GuestIdentity{
		Email: middleware.GetGuestEmail(r.Context()),
		Name:  middleware.GetGuestName(r.Context()),
	}
	if guest.Email == "" {
		response.Unauthorized(w, "Guest not authenticated")
		return
	}

	var req SubmitRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}

	sess, out, err := h.service.Submit(r.Context(), chi.URLParam(r, "id"), guest, PaymentChannel(req.PayWith))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SubmitResponse{Outcome: out, Booking: SessionResponseFromEntity(sess)})
}

// Cancel handles POST /bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// End handles POST /bookings/{id}/end
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.End(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SessionResponseFromEntity(sess))
}

// Attempts handles GET /bookings/attempts
// Requires guest authentication.
func (h *Handler) Attempts(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetGuestEmail(r.Context())
	if email == "" {
		response.Unauthorized(w, "Guest not authenticated")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	attempts, err := h.service.Attempts(r.Context(), email, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	items := make([]*AttemptResponse, len(attempts))
	for i, a := range attempts {
		items[i] = AttemptResponseFromEntity(a)
	}
	response.OK(w, items)
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := response.DecodeJSON(r.Body, req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return false
	}
	return true
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		response.ErrorWithDetails(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", vErr.Error(),
			map[string]string{"reason": string(vErr.Reason)})
	case errors.Is(err, ErrSessionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrSubmissionPending), errors.Is(err, ErrSubmissionInProgress):
		response.Conflict(w, "SUBMISSION_PENDING", err.Error())
	case errors.Is(err, ErrNotAtPaymentStep):
		response.Conflict(w, "NOT_AT_PAYMENT_STEP", err.Error())
	case errors.Is(err, ErrPricingUnavailable):
		errorhandler.HandleError(r.Context(), w, http.StatusBadGateway, "UPSTREAM_ERROR", ErrPricingUnavailable.Error(), err)
	case errors.Is(err, ErrInvalidGuests),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidPrices),
		errors.Is(err, ErrInvalidPaymentChannel),
		errors.Is(err, ErrRoomTypeRequired),
		errors.Is(err, ErrDatesRequired),
		errors.Is(err, ErrInvalidSubject):
		response.BadRequest(w, err.Error())
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
	}
}
