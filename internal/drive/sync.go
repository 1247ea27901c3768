package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/rs/zerolog/log"
)

// FileSource is the subset of Service the syncer needs.
type FileSource interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// Importer receives each downloaded sheet. InventoryService satisfies it.
type Importer interface {
	Import(ctx context.Context, identity *domain.Identity, filename string, data []byte) (*domain.ImportResult, error)
}

// SyncOptions selects which files of a folder are imported.
type SyncOptions struct {
	FolderID string
	// ModifiedSince skips files last modified at or before this instant when set.
	ModifiedSince time.Time
}

type FileResult struct {
	FileID   string               `json:"file_id"`
	Name     string               `json:"name"`
	Imported int                  `json:"imported"`
	Skipped  int                  `json:"skipped"`
	Error    string               `json:"error,omitempty"`
	Result   *domain.ImportResult `json:"result,omitempty"`
}

type SyncReport struct {
	Files    []FileResult `json:"files"`
	Imported int          `json:"imported"`
	Failed   int          `json:"failed"`
}

// Syncer imports the CSV and XLSX sheets of a Drive folder into the inventory.
type Syncer struct {
	source   FileSource
	importer Importer
}

func NewSyncer(source FileSource, importer Importer) *Syncer {
	return &Syncer{source: source, importer: importer}
}

// Sync imports every matching file in name order. A file that fails to
// download or import is recorded in the report and the rest continue.
func (s *Syncer) Sync(ctx context.Context, identity *domain.Identity, opts SyncOptions) (*SyncReport, error) {
	files, err := s.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	report := &SyncReport{Files: []FileResult{}}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !isSheet(f.Name) || !modifiedAfter(f, opts.ModifiedSince) {
			continue
		}

		entry := FileResult{FileID: f.ID, Name: f.Name}
		res, err := s.importFile(ctx, identity, f)
		if err != nil {
			log.Warn().Err(err).Str("file", f.Name).Msg("drive sync: file failed")
			entry.Error = err.Error()
			report.Failed++
		} else {
			entry.Imported = res.Imported
			entry.Skipped = res.Skipped
			entry.Result = res
			report.Imported += res.Imported
		}
		report.Files = append(report.Files, entry)
	}

	log.Info().
		Int("files", len(report.Files)).
		Int("imported", report.Imported).
		Int("failed", report.Failed).
		Msg("drive sync: finished")
	return report, nil
}

func (s *Syncer) importFile(ctx context.Context, identity *domain.Identity, f *File) (*domain.ImportResult, error) {
	var buf bytes.Buffer
	if err := s.source.DownloadFile(ctx, f.ID, &buf); err != nil {
		return nil, fmt.Errorf("download %s: %w", f.Name, err)
	}
	return s.importer.Import(ctx, identity, f.Name, buf.Bytes())
}

func isSheet(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

func modifiedAfter(f *File, since time.Time) bool {
	if since.IsZero() || f.ModifiedTime == "" {
		return true
	}
	modified, err := time.Parse(time.RFC3339, f.ModifiedTime)
	if err != nil {
		return true
	}
	return modified.After(since)
}
