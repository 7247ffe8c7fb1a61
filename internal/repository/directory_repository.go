package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/placement-api/internal/models"
)

// DirectoryRepository resolves user contacts and coordinator mail identities.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository constructs the repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// ListContacts returns the contacts of the given active users. Unknown ids are omitted.
func (r *DirectoryRepository) ListContacts(ctx context.Context, ids []string) ([]models.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, email, full_name FROM users WHERE id = ANY($1) AND active = TRUE`
	var contacts []models.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// SenderIdentity returns the outbound mail identity configured for a coordinator.
func (r *DirectoryRepository) SenderIdentity(ctx context.Context, coordinatorID string) (*models.SenderIdentity, error) {
	const query = `SELECT sender_address, COALESCE(sender_name, '') AS sender_name,
	       COALESCE(smtp_username, '') AS smtp_username, COALESCE(smtp_password, '') AS smtp_password
	FROM coordinator_mail_identities WHERE coordinator_id = $1`
	var identity models.SenderIdentity
	if err := r.db.GetContext(ctx, &identity, query, coordinatorID); err != nil {
		return nil, err
	}
	return &identity, nil
}
