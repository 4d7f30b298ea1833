package memory

import (
	"context"
	"sync"

	"kentei-quiz-service/internal/domain"
)

// CertificateStore is an append-only, in-memory app.CertificateRepository.
type CertificateStore struct {
	mu    sync.RWMutex
	certs []domain.Certificate
}

func NewCertificateStore() *CertificateStore {
	return &CertificateStore{}
}

func (s *CertificateStore) AppendCertificate(_ context.Context, cert domain.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certs = append(s.certs, cert)
	return nil
}

func (s *CertificateStore) FindCertificate(_ context.Context, id string) (domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cert := range s.certs {
		if cert.ID == id {
			return cert, nil
		}
	}
	return domain.Certificate{}, domain.ErrCertificateNotFound
}

// Len reports how many records were appended.
func (s *CertificateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.certs)
}
