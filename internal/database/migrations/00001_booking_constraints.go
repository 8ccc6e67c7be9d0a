package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upBookingConstraints, downBookingConstraints)
}

var bookingConstraints = []string{
	// One live booking per passenger and ride; cancelled rows are kept.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_participation_active
		ON participation (ride_id, passenger_id) WHERE NOT cancelled`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_voiture_active_plate
		ON voiture (plate) WHERE active`,
	`ALTER TABLE covoiturage DROP CONSTRAINT IF EXISTS chk_covoiturage_seats_bounds`,
	`ALTER TABLE covoiturage ADD CONSTRAINT chk_covoiturage_seats_bounds
		CHECK (seats_available <= seats_total AND seats_total > 0)`,
	`ALTER TABLE covoiturage DROP CONSTRAINT IF EXISTS chk_covoiturage_price`,
	`ALTER TABLE covoiturage ADD CONSTRAINT chk_covoiturage_price CHECK (price_credits > 0)`,
	`ALTER TABLE covoiturage DROP CONSTRAINT IF EXISTS chk_covoiturage_status`,
	`ALTER TABLE covoiturage ADD CONSTRAINT chk_covoiturage_status
		CHECK (status IN ('PLANNED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED', 'INCIDENT'))`,
	`CREATE INDEX IF NOT EXISTS idx_covoiturage_cities_lower
		ON covoiturage (LOWER(departure_city), LOWER(arrival_city), departure_at)`,
}

func upBookingConstraints(tx *sql.Tx) error {
	for _, stmt := range bookingConstraints {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}
	return nil
}

func downBookingConstraints(tx *sql.Tx) error {
	stmts := []string{
		`DROP INDEX IF EXISTS idx_covoiturage_cities_lower`,
		`ALTER TABLE covoiturage DROP CONSTRAINT IF EXISTS chk_covoiturage_status`,
		`ALTER TABLE covoiturage DROP CONSTRAINT IF EXISTS chk_covoiturage_price`,
		`ALTER TABLE covoiturage DROP CONSTRAINT IF EXISTS chk_covoiturage_seats_bounds`,
		`DROP INDEX IF EXISTS uq_voiture_active_plate`,
		`DROP INDEX IF EXISTS uq_participation_active`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
