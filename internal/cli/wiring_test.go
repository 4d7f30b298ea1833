package cli

import (
	"context"
	"path/filepath"
	"testing"

	"kentei-quiz-service/internal/config"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookTopicsFillEmptyTopicList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.xlsx")
	f := excelize.NewFile()
	for _, sheet := range []string{"history", "geography"} {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		header := []interface{}{"id", "level", "selectionType", "displayType", "question", "choiceA", "choiceB", "choiceC", "choiceD", "answer", "hintUrl", "hintText"}
		row := []interface{}{sheet + "-1", "beginner", "input", "text", "question", "", "", "", "", "x"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			t.Fatalf("set header: %v", err)
		}
		if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	var cfg config.Config
	cfg.Sheets.Path = path
	svc, err := buildServices(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	defer svc.Close()

	got := map[string]bool{}
	for _, topic := range svc.questions.Topics() {
		got[topic] = true
	}
	if len(got) != 2 || !got["history"] || !got["geography"] {
		t.Fatalf("expected topics from workbook sheets, got %v", svc.questions.Topics())
	}

	result, err := svc.questions.ReloadAll(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if result.Partitions != 6 {
		t.Fatalf("expected every topic and level rebuilt, got %d", result.Partitions)
	}
}
