package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kentei-quiz-service/internal/domain"
)

// CertificateRequest is the payload of a passing attempt.
type CertificateRequest struct {
	Topic     string
	Level     string
	Nickname  string
	IssuedAt  string
	ImageData string
}

// CertificateService issues and looks up pass certificates.
type CertificateService struct {
	repo CertificateRepository
	now  func() time.Time
}

func NewCertificateService(repo CertificateRepository) *CertificateService {
	return NewCertificateServiceWithClock(repo, time.Now)
}

// NewCertificateServiceWithClock is test-only for deterministic ids.
func NewCertificateServiceWithClock(repo CertificateRepository, now func() time.Time) *CertificateService {
	return &CertificateService{repo: repo, now: now}
}

// Issue appends a new record and returns its id. Repeated passes create new records.
func (s *CertificateService) Issue(ctx context.Context, req CertificateRequest) (string, error) {
	if strings.TrimSpace(req.Nickname) == "" {
		return "", fmt.Errorf("%w: nickname is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.ImageData) == "" {
		return "", fmt.Errorf("%w: image data is required", domain.ErrInvalidInput)
	}

	now := s.now()
	cert := domain.Certificate{
		ID:        CertificateID(req.Nickname, now),
		Topic:     req.Topic,
		Level:     req.Level,
		Nickname:  req.Nickname,
		IssuedAt:  req.IssuedAt,
		ImageData: req.ImageData,
		CreatedAt: now.UTC(),
	}
	if err := s.repo.AppendCertificate(ctx, cert); err != nil {
		return "", fmt.Errorf("append certificate: %w", err)
	}
	return cert.ID, nil
}

// Lookup returns the first record whose id matches the trimmed id exactly.
func (s *CertificateService) Lookup(ctx context.Context, id string) (domain.Certificate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Certificate{}, fmt.Errorf("%w: %q", domain.ErrCertificateNotFound, id)
	}
	cert, err := s.repo.FindCertificate(ctx, id)
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("lookup certificate %s: %w", id, err)
	}
	return cert, nil
}

// CertificateID is hex(SHA-256(nickname ++ epochMillis)).
func CertificateID(nickname string, at time.Time) string {
	sum := sha256.Sum256([]byte(nickname + strconv.FormatInt(at.UnixMilli(), 10)))
	return hex.EncodeToString(sum[:])
}
