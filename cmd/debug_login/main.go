package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/saya/booking-api/internal/config"
	"github.com/saya/booking-api/internal/domain/booking"
	"github.com/saya/booking-api/internal/pkg/database"
	"github.com/saya/booking-api/internal/pkg/jwt"
)

// Issues a guest token for local testing of the submit endpoint and prints
// the guest's latest reservation attempts when a database is configured.
func main() {
	email := flag.String("email", "", "guest email")
	name := flag.String("name", "", "guest display name")
	limit := flag.Int("limit", 10, "number of attempts to list")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	cfg := config.Load()

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	token, err := jwtService.GenerateAccessToken(*email, *name)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println("--- Guest token ---")
	fmt.Println(token)
	fmt.Println("-------------------")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if db == nil {
		return
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	attempts, err := booking.NewAttemptRepository(db).ListByGuestEmail(ctx, *email, *limit)
	if err != nil {
		log.Fatalf("Failed to list attempts: %v", err)
	}

	fmt.Println("--- Reservation attempts ---")
	for _, a := range attempts {
		reservation := "-"
		if a.ReservationID.Valid {
			reservation = fmt.Sprint(a.ReservationID.Int64)
		}
		fmt.Printf("%s  %-4s  room=%s  %s..%s  amount=%.2f  reserved=%t notified=%t reservation=%s\n",
			a.CreatedAt.Format(time.RFC3339), a.Channel, a.RoomTypeID, a.CheckIn, a.CheckOut,
			a.Amount, a.Reserved, a.Notified, reservation)
	}
	fmt.Println("----------------------------")
}
