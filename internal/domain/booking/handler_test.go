package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saya/booking-api/internal/middleware"
	"github.com/saya/booking-api/internal/pkg/jwt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type handlerFixture struct {
	*serviceFixture
	router http.Handler
	token  string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := newServiceFixture()
	jwtSvc := jwt.NewService("test-secret", time.Hour)
	token, err := jwtSvc.GenerateAccessToken(testGuest.Email, testGuest.Name)
	mustNoErr(t, err)

	r := chi.NewRouter()
	r.Mount("/api/v1/bookings", NewHandler(f.svc).Routes(middleware.GuestAuth(jwtSvc)))
	return &handlerFixture{serviceFixture: f, router: r, token: token}
}

func (f *handlerFixture) do(t *testing.T, method, path, body string, auth bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestHandlerStartAndGet(t *testing.T) {
	f := newHandlerFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/bookings", `{"subjectItem":{"name":"Song Saa"},"returnUrl":"/rooms/1"}`, false)
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created SessionResponse
	mustNoErr(t, json.Unmarshal(env.Data, &created))
	if created.CurrentStep != StepConfirmDates || created.Step.Name != "confirmDates" || created.BookingInfo.ReturnURL != "/rooms/1" {
		t.Fatalf("unexpected session: %+v", created)
	}

	w, env = f.do(t, http.MethodGet, "/api/v1/bookings/"+created.ID, "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w, env = f.do(t, http.MethodGet, "/api/v1/bookings/unknown", "", false)
	if w.Code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandlerSteps(t *testing.T) {
	f := newHandlerFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/bookings/steps", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var steps []StepInfo
	mustNoErr(t, json.Unmarshal(env.Data, &steps))
	if len(steps) != 8 || steps[6].Title != "Payment" {
		t.Fatalf("unexpected steps: %+v", steps)
	}
}

func TestHandlerUpdateAndStepErrors(t *testing.T) {
	f := newHandlerFixture(t)
	sess, err := f.svc.Start(t.Context(), nil, "")
	mustNoErr(t, err)
	base := "/api/v1/bookings/" + sess.ID

	w, env := f.do(t, http.MethodPatch, base, `{"adults":2,"children":1,"dateTwo":"2025-06-02","fullName":"Jane Doe"}`, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated SessionResponse
	mustNoErr(t, json.Unmarshal(env.Data, &updated))
	if updated.BookingInfo.Guests.Total != 3 || updated.BookingInfo.CheckOut != "2025-06-03" {
		t.Fatalf("unexpected update: %+v", updated.BookingInfo)
	}

	w, env = f.do(t, http.MethodPatch, base, `{"payWith":"bitcoin"}`, false)
	if w.Code != http.StatusUnprocessableEntity || env.Error.Details["payWith"] == "" {
		t.Fatalf("expected 422 on payWith, got %d: %s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodPatch, base, `{"unknownField":1}`, false)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on unknown field, got %d", w.Code)
	}

	w, env = f.do(t, http.MethodPut, base+"/step", `{"step":4}`, false)
	if w.Code != http.StatusConflict || env.Error.Code != "INVALID_TRANSITION" {
		t.Fatalf("expected 409 INVALID_TRANSITION, got %d: %s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodPut, base+"/step", `{"step":2}`, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w, _ = f.do(t, http.MethodDelete, base+"/date-two", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	stored, err := f.svc.Get(t.Context(), sess.ID)
	mustNoErr(t, err)
	if stored.Record.CheckOut != "" {
		t.Fatalf("expected check-out cleared")
	}
}

func TestHandlerPrices(t *testing.T) {
	f := newHandlerFixture(t)
	sess, err := f.svc.Start(t.Context(), nil, "")
	mustNoErr(t, err)
	base := "/api/v1/bookings/" + sess.ID

	w, env := f.do(t, http.MethodPut, base+"/prices", `{"prices":[{"date":"2025-06-01","amount":100},{"date":"2025-06-02","amount":100}]}`, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp SessionResponse
	mustNoErr(t, json.Unmarshal(env.Data, &resp))
	if resp.Summary.Subtotal != 200 || resp.Summary.VAT != 20 || resp.Summary.Total != 220 {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}

	w, env = f.do(t, http.MethodPost, base+"/prices", "", false)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without room type, got %d: %s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodDelete, base+"/prices", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHandlerSubmit(t *testing.T) {
	f := newHandlerFixture(t)
	sess := f.readyToSubmit(t)
	path := "/api/v1/bookings/" + sess.ID + "/submit"

	w, _ := f.do(t, http.MethodPost, path, "", false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w, env := f.do(t, http.MethodPost, path, `{"payWith":"cash"}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp SubmitResponse
	mustNoErr(t, json.Unmarshal(env.Data, &resp))
	if !resp.Outcome.Reserved || resp.Outcome.ReservationID != 42 || resp.Booking.CurrentStep != StepThankYou {
		t.Fatalf("unexpected submit response: %+v", resp)
	}

	w, env = f.do(t, http.MethodPost, path, "", true)
	if w.Code != http.StatusConflict || env.Error.Code != "NOT_AT_PAYMENT_STEP" {
		t.Fatalf("expected 409 on resubmit, got %d: %s", w.Code, w.Body.String())
	}

	w, env = f.do(t, http.MethodGet, "/api/v1/bookings/attempts", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var attempts []AttemptResponse
	mustNoErr(t, json.Unmarshal(env.Data, &attempts))
	if len(attempts) != 1 || attempts[0].ReservationID == nil || *attempts[0].ReservationID != 42 {
		t.Fatalf("unexpected attempts: %+v", attempts)
	}
}

func TestHandlerValidate(t *testing.T) {
	f := newHandlerFixture(t)
	sess := f.readyToSubmit(t)
	path := "/api/v1/bookings/" + sess.ID + "/validate"

	w, _ := f.do(t, http.MethodPost, path, "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	f.svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	w, env := f.do(t, http.MethodPost, path, "", false)
	if w.Code != http.StatusUnprocessableEntity || env.Error.Details["reason"] != string(InvalidDateRange) {
		t.Fatalf("expected 422 InvalidDateRange, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandlerCancel(t *testing.T) {
	f := newHandlerFixture(t)
	sess := f.readyToSubmit(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/bookings/"+sess.ID+"/cancel", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp SessionResponse
	mustNoErr(t, json.Unmarshal(env.Data, &resp))
	if resp.CurrentStep != StepNotStarted || resp.BookingInfo.Guests.Total != 1 {
		t.Fatalf("expected defaults after cancel, got %+v", resp)
	}
}
