package handler

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/service"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type dataService interface {
	Export(ctx context.Context) (*service.ExportFile, error)
	SaveExport(ctx context.Context, format service.ExportFormat) (*service.SavedExport, error)
	OpenExport(token string) (*os.File, string, error)
	Reset(ctx context.Context) error
}

// DataHandler serves exports and the reset action.
type DataHandler struct {
	service dataService
}

// NewDataHandler constructs the handler.
func NewDataHandler(svc dataService) *DataHandler {
	return &DataHandler{service: svc}
}

// Export godoc
// @Summary Download all planner data as JSON
// @Tags Data
// @Produce json
// @Success 200 {file} file
// @Router /data/export [get]
func (h *DataHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Body)
}

// SaveExport godoc
// @Summary Save an export and return a signed download link
// @Tags Data
// @Produce json
// @Param format path string true "json, csv or pdf"
// @Success 201 {object} response.Envelope
// @Router /data/export/{format} [post]
func (h *DataHandler) SaveExport(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.Param("format")))
	saved, err := h.service.SaveExport(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// Download godoc
// @Summary Download a saved export
// @Tags Data
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 410 {object} response.Envelope
// @Router /data/download/{token} [get]
func (h *DataHandler) Download(c *gin.Context) {
	file, name, err := h.service.OpenExport(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	contentType := downloadContentType(name)
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
	})
}

var exportContentTypes = map[string]string{
	".json": "application/json",
	".csv":  "text/csv",
	".pdf":  "application/pdf",
}

func downloadContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := exportContentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Reset godoc
// @Summary Clear tasks, exams and settings
// @Tags Data
// @Success 204
// @Router /data/reset [post]
func (h *DataHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
