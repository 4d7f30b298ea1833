package sheets

import (
	"context"
	"strings"
	"time"

	"kentei-quiz-service/internal/domain"
)

// CertificateStore appends certificates to the certificates sheet.
type CertificateStore struct {
	wb *Workbook
}

func NewCertificateStore(wb *Workbook) *CertificateStore {
	return &CertificateStore{wb: wb}
}

func (s *CertificateStore) AppendCertificate(_ context.Context, cert domain.Certificate) error {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	if err := s.wb.ensureSheetLocked(CertificatesSheet, certificateHeader); err != nil {
		return err
	}
	values := []string{
		cert.ID,
		cert.Topic,
		cert.Level,
		cert.Nickname,
		cert.IssuedAt,
		cert.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return s.wb.appendLocked(CertificatesSheet, append(values, chunk(cert.ImageData, maxCellChars)...))
}

func (s *CertificateStore) FindCertificate(_ context.Context, id string) (domain.Certificate, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	rows, _, err := s.wb.rowsLocked(CertificatesSheet)
	if err != nil {
		return domain.Certificate{}, err
	}
	for _, row := range rows {
		if strings.TrimSpace(cell(row, 0)) != id {
			continue
		}
		createdAt, _ := time.Parse(time.RFC3339Nano, cell(row, 5))
		var image string
		if len(row) > 6 {
			image = strings.Join(row[6:], "")
		}
		return domain.Certificate{
			ID:        id,
			Topic:     cell(row, 1),
			Level:     cell(row, 2),
			Nickname:  cell(row, 3),
			IssuedAt:  cell(row, 4),
			ImageData: image,
			CreatedAt: createdAt,
		}, nil
	}
	return domain.Certificate{}, domain.ErrCertificateNotFound
}
