package migrations

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	goose.AddMigration(upCreateDefaultAdmin, downCreateDefaultAdmin)
}

func adminEmail() string {
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		return email
	}
	return "admin@ecoride.fr"
}

// upCreateDefaultAdmin seeds the first administrator. Without
// ADMIN_PASSWORD nothing is created.
func upCreateDefaultAdmin(tx *sql.Tx) error {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return nil
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM administrateur").Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var userID int64
	err = tx.QueryRow(`
		INSERT INTO utilisateur (pseudo, email, password_hash, credits, is_driver, is_passenger, status, created_at, updated_at)
		VALUES ('admin', $1, $2, 0, false, false, 'ACTIVE', NOW(), NOW())
		RETURNING id`, adminEmail(), string(hashed)).Scan(&userID)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO administrateur (user_id, created_at) VALUES ($1, NOW())`, userID); err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}
	return nil
}

func downCreateDefaultAdmin(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DELETE FROM administrateur WHERE user_id IN (SELECT id FROM utilisateur WHERE email = $1)`, adminEmail())
	if err != nil {
		return fmt.Errorf("failed to revoke admin role: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM utilisateur WHERE email = $1", adminEmail()); err != nil {
		return fmt.Errorf("failed to delete admin user: %w", err)
	}
	return nil
}
