// seed inserts a test user with a few medications and reminders into the
// local dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dosepilot/reminder-service/internal/infrastructure/postgres"
)

const (
	seedUserID = "user_seed_local"
	seedEmail  = "seed@test.local"
)

type medSpec struct {
	id     string
	name   string
	dosage string
	units  string
}

type reminderSpec struct {
	id    string
	medID string
	at    string
	days  []string
	notes string
}

var meds = []medSpec{
	{"med-vitd", "Vitamin D", "1000", "IU"},
	{"med-metf", "Metformin", "500", "mg"},
	{"med-omg3", "Omega-3", "1200", "mg"},
}

var reminders = []reminderSpec{
	{"rem-vitd-am", "med-vitd", "08:00", []string{"monday", "wednesday", "friday"}, "with breakfast"},
	{"rem-metf-am", "med-metf", "08:30", []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}, ""},
	{"rem-metf-pm", "med-metf", "20:30", []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}, "after dinner"},
	{"rem-omg3", "med-omg3", "12:00", []string{"tuesday", "thursday"}, ""},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET updated_at = NOW()`,
		seedUserID, seedEmail,
	)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	startDate := time.Now().AddDate(0, 0, -7)

	for _, m := range meds {
		_, err := pool.Exec(ctx, `
			INSERT INTO medications (id, user_id, name, dosage, units, start_date)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			m.id, seedUserID, m.name, m.dosage, m.units, startDate,
		)
		if err != nil {
			log.Fatalf("insert medication %s: %v", m.id, err)
		}
	}

	for _, r := range reminders {
		var notes *string
		if r.notes != "" {
			notes = &r.notes
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO reminders (id, user_id, medication_id, time_of_day, days, enabled, notes)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
			ON CONFLICT (id) DO NOTHING`,
			r.id, seedUserID, r.medID, r.at, r.days, notes,
		)
		if err != nil {
			log.Fatalf("insert reminder %s: %v", r.id, err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:        %s (%s)\n", seedUserID, seedEmail)
	fmt.Printf("  Medications: %d\n", len(meds))
	fmt.Printf("  Reminders:   %d\n", len(reminders))
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — mint a JWT for the seed user (HS256, sub=" + seedUserID + "):")
	fmt.Println("    use jwt.io with your JWT_SECRET, claims: {\"sub\": \"" + seedUserID + "\", \"email\": \"" + seedEmail + "\", \"exp\": <future>}")
	fmt.Println()
	fmt.Println("  Step 2 — restart the server (boot rehydration arms the jobs), or push the set:")
	fmt.Println("    curl -X POST localhost:8080/schedule-reminders \\")
	fmt.Println("      -H \"Authorization: Bearer $TOKEN\" -H 'Content-Type: application/json' \\")
	fmt.Println("      -d @seed-payload.json")
	fmt.Println()
	fmt.Println("  Step 3 — fire a test notification:")
	fmt.Println("    curl -X POST localhost:8080/send-test -H \"Authorization: Bearer $TOKEN\"")
}
