package drive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
)

type fakeSource struct {
	files    []*File
	contents map[string]string
	listErr  error
}

func (f *fakeSource) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	return f.files, f.listErr
}

func (f *fakeSource) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	body, ok := f.contents[fileID]
	if !ok {
		return errors.New("not found")
	}
	_, err := io.WriteString(w, body)
	return err
}

type recordingImporter struct {
	names []string
	fail  map[string]bool
}

func (r *recordingImporter) Import(ctx context.Context, identity *domain.Identity, filename string, data []byte) (*domain.ImportResult, error) {
	r.names = append(r.names, filename)
	if r.fail[filename] {
		return nil, domain.ErrInvalidItem
	}
	return &domain.ImportResult{Success: true, Imported: len(data) % 7, Skipped: 1}, nil
}

func TestSyncImportsSheetsInNameOrder(t *testing.T) {
	src := &fakeSource{
		files: []*File{
			{ID: "3", Name: "ward-b.xlsx", ModifiedTime: "2026-03-02T10:00:00Z"},
			{ID: "1", Name: "notes.txt"},
			{ID: "2", Name: "ward-a.csv", ModifiedTime: "2026-03-01T10:00:00Z"},
			{ID: "4", Name: "missing.csv"},
		},
		contents: map[string]string{"2": "abc", "3": "abcdefghij"},
	}
	imp := &recordingImporter{}

	report, err := NewSyncer(src, imp).Sync(context.Background(), &domain.Identity{}, SyncOptions{FolderID: "folder"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(imp.names) != 2 || imp.names[0] != "ward-a.csv" || imp.names[1] != "ward-b.xlsx" {
		t.Errorf("imported files: got %v", imp.names)
	}
	if len(report.Files) != 3 {
		t.Fatalf("report files: got %d want 3", len(report.Files))
	}
	if report.Failed != 1 || report.Files[0].Name != "missing.csv" || report.Files[0].Error == "" {
		t.Errorf("expected missing.csv to fail first, got %+v", report.Files)
	}
	if report.Imported != 3+3 {
		t.Errorf("imported: got %d want 6", report.Imported)
	}
}

func TestSyncSkipsUnmodifiedFiles(t *testing.T) {
	src := &fakeSource{
		files: []*File{
			{ID: "1", Name: "old.csv", ModifiedTime: "2026-01-01T00:00:00Z"},
			{ID: "2", Name: "new.csv", ModifiedTime: "2026-02-01T00:00:00Z"},
		},
		contents: map[string]string{"1": "x", "2": "y"},
	}
	imp := &recordingImporter{fail: map[string]bool{"new.csv": true}}

	report, err := NewSyncer(src, imp).Sync(context.Background(), &domain.Identity{}, SyncOptions{
		ModifiedSince: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imp.names) != 1 || imp.names[0] != "new.csv" {
		t.Errorf("imported files: got %v want [new.csv]", imp.names)
	}
	if report.Failed != 1 || report.Imported != 0 {
		t.Errorf("report: got %+v", report)
	}
}

func TestSyncListFailure(t *testing.T) {
	src := &fakeSource{listErr: errors.New("quota exceeded")}
	if _, err := NewSyncer(src, &recordingImporter{}).Sync(context.Background(), &domain.Identity{}, SyncOptions{}); err == nil {
		t.Fatal("expected list error")
	}
}

func TestQuoteEscapesLiterals(t *testing.T) {
	if got := quote(`Ward's \ Stock`); got != `Ward\'s \\ Stock` {
		t.Errorf("quote: got %q", got)
	}
}
