package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
)

// ProofRepository persists proof-file metadata.
type ProofRepository struct {
	db *sqlx.DB
}

// NewProofRepository constructs the repository.
func NewProofRepository(db *sqlx.DB) *ProofRepository {
	return &ProofRepository{db: db}
}

// Create inserts a new proof-file row.
func (r *ProofRepository) Create(ctx context.Context, proof *models.ProofFile) error {
	if proof.ID == "" {
		proof.ID = uuid.NewString()
	}
	const query = `INSERT INTO proof_files (id, enrollment_id, kind, file_name, stored_path, content_type, uploaded_at)
        VALUES (:id, :enrollment_id, :kind, :file_name, :stored_path, :content_type, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, proof); err != nil {
		return fmt.Errorf("create proof file: %w", err)
	}
	return nil
}

// FindByID returns one proof file by id.
func (r *ProofRepository) FindByID(ctx context.Context, id string) (*models.ProofFile, error) {
	const query = `SELECT id, enrollment_id, kind, file_name, stored_path, content_type, uploaded_at
        FROM proof_files WHERE id = $1`
	var proof models.ProofFile
	if err := r.db.GetContext(ctx, &proof, query, id); err != nil {
		return nil, err
	}
	return &proof, nil
}

// ListByEnrollment returns the proof files attached to an enrollment.
func (r *ProofRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.ProofFile, error) {
	const query = `SELECT id, enrollment_id, kind, file_name, stored_path, content_type, uploaded_at
        FROM proof_files WHERE enrollment_id = $1 ORDER BY uploaded_at ASC`
	var proofs []models.ProofFile
	if err := r.db.SelectContext(ctx, &proofs, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list proof files: %w", err)
	}
	return proofs, nil
}
