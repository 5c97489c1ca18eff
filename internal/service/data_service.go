package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/export"
	"github.com/noah-isme/study-planner-api/pkg/storage"
)

// ExportFormat selects the file produced by an export.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
)

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tokenSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// SavedExport points at an export kept on disk behind a signed link.
type SavedExport struct {
	Name      string       `json:"name"`
	Format    ExportFormat `json:"format"`
	Token     string       `json:"token"`
	URL       string       `json:"url"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// DataConfig tunes saved exports.
type DataConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// DataService exports and resets planner data.
type DataService struct {
	tasks     taskReader
	exams     examReader
	settings  settingsReader
	resets    []Clearable
	storage   fileStorage
	signer    tokenSigner
	renderers map[ExportFormat]export.Renderer
	clock     Clock
	cfg       DataConfig
	logger    *zap.Logger
}

// NewDataService builds the data service. resets lists the collections a reset clears.
func NewDataService(tasks taskReader, exams examReader, settings settingsReader, resets []Clearable, files fileStorage, signer tokenSigner, clock Clock, cfg DataConfig, logger *zap.Logger) *DataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	return &DataService{
		tasks:    tasks,
		exams:    exams,
		settings: settings,
		resets:   resets,
		storage:  files,
		signer:   signer,
		renderers: map[ExportFormat]export.Renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// Document returns the tasks, exams and settings as one value.
func (s *DataService) Document(ctx context.Context) models.ExportDocument {
	return models.ExportDocument{
		Tasks:    s.tasks.Read(ctx),
		Exams:    s.exams.Read(ctx),
		Settings: readSettings(ctx, s.settings),
	}
}

// Export renders the data file as indented JSON.
func (s *DataService) Export(ctx context.Context) (*ExportFile, error) {
	body, err := json.MarshalIndent(s.Document(ctx), "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode export")
	}
	return &ExportFile{
		Name:        "studyplanner-data-" + s.clock.Today() + ".json",
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// ExportTasks renders the task list as a csv or pdf sheet.
func (s *DataService) ExportTasks(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	today := s.clock.Today()
	body, err := renderer.Render(taskDataset(s.tasks.Read(ctx), today, s.clock.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Name:        "studyplanner-tasks-" + today + "." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// Render produces the file for any supported format.
func (s *DataService) Render(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	if format == ExportFormatJSON {
		return s.Export(ctx)
	}
	return s.ExportTasks(ctx, format)
}

// SaveExport writes the export to disk and returns a signed download link.
func (s *DataService) SaveExport(ctx context.Context, format ExportFormat) (*SavedExport, error) {
	if s.storage == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export storage not configured")
	}
	file, err := s.Render(ctx, format)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	relPath, err := s.storage.Save(path.Join(id, file.Name), file.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save export")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	s.logger.Info("export saved", zap.String("export_id", id), zap.String("format", string(format)))
	return &SavedExport{
		Name:      file.Name,
		Format:    format,
		Token:     token,
		URL:       prefix + "/data/download/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// OpenExport resolves a download token to the saved file and its name.
func (s *DataService) OpenExport(token string) (*os.File, string, error) {
	if s.storage == nil || s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) || errors.Is(err, storage.ErrInvalidToken) {
			return nil, "", appErrors.Wrap(err, appErrors.ErrLinkExpired.Code, appErrors.ErrLinkExpired.Status, appErrors.ErrLinkExpired.Message)
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export not found")
	}
	return file, path.Base(relPath), nil
}

// Cleanup removes saved exports older than the configured lifetime.
func (s *DataService) Cleanup() ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

// Reset clears tasks, exams and settings.
func (s *DataService) Reset(ctx context.Context) error {
	for _, c := range s.resets {
		if err := c.Clear(ctx); err != nil {
			return storeFailure(err, "reset planner data")
		}
	}
	s.logger.Info("planner data reset")
	return nil
}

func taskDataset(tasks []models.Task, today string, generated time.Time) export.Dataset {
	headers := []string{"Title", "Subject", "Date", "Time", "Priority", "Status", "Due", "Notes"}
	rows := make([]map[string]string, 0, len(tasks))
	for _, t := range tasks {
		status := "Pending"
		switch {
		case t.Completed:
			status = "Completed"
		case t.Overdue(today):
			status = "Overdue"
		}
		rows = append(rows, map[string]string{
			"Title":    t.Title,
			"Subject":  string(t.Subject),
			"Date":     t.Date,
			"Time":     valueOf(t.Time),
			"Priority": string(t.Priority),
			"Status":   status,
			"Due":      DueText(t.Date, today),
			"Notes":    valueOf(t.Notes),
		})
	}
	return export.Dataset{Title: "Homework Tasks", Headers: headers, Rows: rows, GeneratedAt: generated}
}
