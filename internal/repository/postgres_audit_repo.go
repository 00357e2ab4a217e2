package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// PostgresAuditRepo implements domain.AuditLogger. Rows in audit_logs are
// insert-only; nothing in the application updates or deletes them.
type PostgresAuditRepo struct {
	db *sql.DB
}

// NewPostgresAuditRepo creates a new repository instance.
func NewPostgresAuditRepo(db *sql.DB) *PostgresAuditRepo {
	return &PostgresAuditRepo{db: db}
}

// LogSecurityEvent inserts an immutable record into the audit_logs table.
func (r *PostgresAuditRepo) LogSecurityEvent(ctx context.Context, userID, eventType, ip string, metadata map[string]interface{}) error {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		metaJSON = []byte("{}")
	}

	query := `
		INSERT INTO audit_logs (user_id, event_type, ip_address, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	// user_id is nullable: failed logins against unknown emails have no
	// user to attribute.
	var uid sql.NullString
	if userID != "" {
		uid.String = userID
		uid.Valid = true
	}

	_, err = r.db.ExecContext(ctx, query, uid, eventType, ip, metaJSON, time.Now())
	return err
}
