package postgres

import (
	"context"
	"errors"
	"fmt"

	"kentei-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CertificateStore is the append-only certificates table. seq preserves row order.
type CertificateStore struct {
	pool *pgxpool.Pool
}

func NewCertificateStore(pool *pgxpool.Pool) *CertificateStore {
	return &CertificateStore{pool: pool}
}

func (s *CertificateStore) AppendCertificate(ctx context.Context, cert domain.Certificate) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO certificates (id, topic, level, nickname, issued_at, image_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cert.ID, cert.Topic, cert.Level, cert.Nickname, cert.IssuedAt, cert.ImageData, cert.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *CertificateStore) FindCertificate(ctx context.Context, id string) (domain.Certificate, error) {
	var c domain.Certificate
	err := s.pool.QueryRow(ctx, `
		SELECT id, topic, level, nickname, issued_at, image_data, created_at
		FROM certificates
		WHERE id = $1
		ORDER BY seq
		LIMIT 1`, id).Scan(&c.ID, &c.Topic, &c.Level, &c.Nickname, &c.IssuedAt, &c.ImageData, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("select certificate: %w", err)
	}
	return c, nil
}
