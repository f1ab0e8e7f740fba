package service

import (
	"context"
	"fmt"
	"io"

	"github.com/garyjia/hr-portal/internal/application/port"
)

// ExportService writes request reports for administrators
type ExportService interface {
	// Export writes the requests matching a status filter
	Export(ctx context.Context, w io.Writer, filter string) error
	ContentType() string
}

type exportServiceImpl struct {
	queries  QueryService
	exporter port.RequestExporter
	logger   Logger
}

// NewExportService creates a new ExportService
func NewExportService(queries QueryService, exporter port.RequestExporter, logger Logger) ExportService {
	return &exportServiceImpl{
		queries:  queries,
		exporter: exporter,
		logger:   logger,
	}
}

func (s *exportServiceImpl) Export(ctx context.Context, w io.Writer, filter string) error {
	requests, err := s.queries.ByStatus(ctx, filter)
	if err != nil {
		return err
	}
	if err := s.exporter.Export(ctx, w, requests); err != nil {
		s.logger.Error("Failed to export requests", "filter", filter, "error", err)
		return fmt.Errorf("export requests: %w", err)
	}
	s.logger.Info("Requests exported", "filter", filter, "count", len(requests))
	return nil
}

func (s *exportServiceImpl) ContentType() string {
	return s.exporter.ContentType()
}
