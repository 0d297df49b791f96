package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
	"github.com/noah-isme/idiomas-adm-api/pkg/storage"
)

type proofRepository interface {
	Create(ctx context.Context, proof *models.ProofFile) error
	FindByID(ctx context.Context, id string) (*models.ProofFile, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.ProofFile, error)
}

// SignedProofURL is a short-lived download grant for one proof file.
type SignedProofURL struct {
	FileID    string    `json:"file_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProofService stores and serves the payment and exemption evidence
// attached to enrollments. Downloads always go through signed tokens.
type ProofService struct {
	proofs      proofRepository
	enrollments enrollmentFinder
	files       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	now         func() time.Time
}

// NewProofService constructs a ProofService.
func NewProofService(proofs proofRepository, enrollments enrollmentFinder, files *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ProofService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProofService{proofs: proofs, enrollments: enrollments, files: files, signer: signer, logger: logger, now: time.Now}
}

// Upload stores the uploaded file and records its metadata against the
// enrollment.
func (s *ProofService) Upload(ctx context.Context, enrollmentID string, kind models.ProofKind, fileName, contentType string, r io.Reader) (*models.ProofFile, error) {
	if enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment id required")
	}
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown proof kind")
	}
	if fileName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file name required")
	}

	if _, err := s.enrollments.FindByID(ctx, enrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	id := uuid.NewString()
	relPath := filepath.Join("proofs", enrollmentID, id+filepath.Ext(fileName))
	if _, err := s.files.SaveStream(relPath, r); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store proof file")
	}

	proof := &models.ProofFile{
		ID:           id,
		EnrollmentID: enrollmentID,
		Kind:         kind,
		FileName:     fileName,
		StoredPath:   relPath,
		ContentType:  contentType,
		UploadedAt:   s.now().UTC(),
	}
	if err := s.proofs.Create(ctx, proof); err != nil {
		if cleanupErr := s.files.Delete(relPath); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned proof file", zap.String("path", relPath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record proof file")
	}
	return proof, nil
}

// ListByEnrollment returns the proof metadata attached to an enrollment.
func (s *ProofService) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.ProofFile, error) {
	if enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment id required")
	}
	proofs, err := s.proofs.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list proof files")
	}
	return proofs, nil
}

// SignedURL issues a download token for one proof file.
func (s *ProofService) SignedURL(ctx context.Context, proofID string) (*SignedProofURL, error) {
	proof, err := s.findProof(ctx, proofID)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(proof.ID, proof.StoredPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return &SignedProofURL{FileID: proof.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// Resolve validates a download token and opens the underlying file.
// Callers own closing the returned handle.
func (s *ProofService) Resolve(ctx context.Context, token string) (*models.ProofFile, *os.File, error) {
	fileID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	proof, err := s.findProof(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if proof.StoredPath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "download token does not match file")
	}
	file, err := s.files.Open(proof.StoredPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open proof file")
	}
	return proof, file, nil
}

func (s *ProofService) findProof(ctx context.Context, proofID string) (*models.ProofFile, error) {
	if proofID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proof id required")
	}
	proof, err := s.proofs.FindByID(ctx, proofID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "proof file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load proof file")
	}
	return proof, nil
}
