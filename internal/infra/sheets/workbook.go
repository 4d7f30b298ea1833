package sheets

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

const (
	// CertificatesSheet holds issued certificates: id, topic, level, nickname, issuedAt,
	// createdAt, then the image data split over as many cells as it needs.
	CertificatesSheet = "certificates"
	// LeaderboardSheet holds best scores: browserId, nickname, score, timestamp, mode.
	LeaderboardSheet = "leaderboard"
)

var (
	certificateHeader = []string{"id", "topic", "level", "nickname", "issuedAt", "createdAt", "imageData"}
	leaderboardHeader = []string{"browserId", "nickname", "score", "timestamp", "mode"}
)

// Workbook is a spreadsheet file used as a row store: one sheet per topic plus the
// certificate and leaderboard sheets. Row 1 of every sheet is a header. Writes are
// serialized and flushed to disk before returning.
type Workbook struct {
	path string

	mu   sync.Mutex
	file *excelize.File
}

// Open loads path, creating an empty workbook when the file does not exist yet.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{path: path, file: f}, nil
}

func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Topics lists the sheets holding question rows: every sheet with at least one data row
// except the certificate and leaderboard sheets.
func (w *Workbook) Topics() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var topics []string
	for _, sheet := range w.file.GetSheetList() {
		if sheet == CertificatesSheet || sheet == LeaderboardSheet {
			continue
		}
		rows, ok, err := w.rowsLocked(sheet)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, row := range rows {
			if !blank(row) {
				topics = append(topics, sheet)
				break
			}
		}
	}
	return topics, nil
}

// rowsLocked returns the data rows of sheet without the header. ok is false when the
// sheet does not exist.
func (w *Workbook) rowsLocked(sheet string) (rows [][]string, ok bool, err error) {
	idx, err := w.file.GetSheetIndex(sheet)
	if err != nil {
		return nil, false, fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if idx < 0 {
		return nil, false, nil
	}
	all, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, false, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(all) <= 1 {
		return nil, true, nil
	}
	return all[1:], true, nil
}

// ensureSheetLocked creates sheet with header when missing.
func (w *Workbook) ensureSheetLocked(sheet string, header []string) error {
	idx, err := w.file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if idx >= 0 {
		return nil
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return w.setRowLocked(sheet, 1, header)
}

// appendLocked writes values after the last used row and saves.
func (w *Workbook) appendLocked(sheet string, values []string) error {
	all, err := w.file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if err := w.setRowLocked(sheet, len(all)+1, values); err != nil {
		return err
	}
	return w.saveLocked()
}

// setRowLocked writes values into 1-based row number.
func (w *Workbook) setRowLocked(sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := w.file.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func (w *Workbook) saveLocked() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// maxCellChars stays under the spreadsheet limit of 32767 characters per cell.
const maxCellChars = 32000

func chunk(s string, size int) []string {
	if s == "" {
		return []string{""}
	}
	var out []string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	return append(out, s)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
