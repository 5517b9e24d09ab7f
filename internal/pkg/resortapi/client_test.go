package resortapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saya/booking-api/internal/pkg/httpx"
)

func TestReserveSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/room-types/42/reservations" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var body ReservationBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body.NumberOfGuests != 3 || body.Payment.Amount != 220 || body.End != "2030-06-03" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("unexpected body"))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"reservationId":9001,"status":"confirmed"}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL+"/", time.Second, "Saya/1.0 booking")
	resp, err := client.Reserve(context.Background(), ReserveRequest{
		RoomTypeID: "42",
		Body: ReservationBody{
			Name:           "Jane Doe",
			NumberOfGuests: 3,
			Start:          "2030-06-01",
			End:            "2030-06-03",
			Payment:        Payment{Amount: 220},
			Email:          "jane@example.com",
			Phone:          "+85512345678",
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.ReservationID != 9001 {
		t.Fatalf("expected reservation id 9001, got %d", resp.ReservationID)
	}
	if string(resp.Raw) != `{"reservationId":9001,"status":"confirmed"}` {
		t.Fatalf("expected raw body to be retained, got %s", resp.Raw)
	}
}

func TestReserveHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("sold out"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "")
	_, err := client.Reserve(context.Background(), ReserveRequest{RoomTypeID: "1"})
	var statusErr *httpx.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 status error, got %v", err)
	}
}

func TestReserveRejectsMissingReservationID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "")
	if _, err := client.Reserve(context.Background(), ReserveRequest{RoomTypeID: "1"}); err == nil {
		t.Fatal("expected error for response without reservationId")
	}
}

func TestReserveRequiresRoomType(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, "")
	if _, err := client.Reserve(context.Background(), ReserveRequest{}); err == nil {
		t.Fatal("expected error for empty room type")
	}
}

func TestPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/room-types/7/prices" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("startDate") != "2030-06-01" || r.URL.Query().Get("endDate") != "2030-06-02" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[{"date":"2030-06-01","amount":100},{"date":"2030-06-02","amount":120.5}]`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "")
	prices, err := client.Prices(context.Background(), PricesRequest{RoomTypeID: "7", StartDate: "2030-06-01", EndDate: "2030-06-02"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(prices) != 2 || prices[1].Amount != 120.5 {
		t.Fatalf("unexpected prices: %+v", prices)
	}
}
