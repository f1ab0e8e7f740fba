// Package export renders workflow requests into spreadsheet reports.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
)

const (
	RequestsSheet = "Requests"
	StepsSheet    = "Steps"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

var (
	requestHeaders = []interface{}{"ID", "Type", "Title", "Requester", "Status", "Current Step", "Start", "End", "Duration", "Created", "Updated"}
	stepHeaders    = []interface{}{"Request ID", "Order", "Step", "Approver", "Status", "Comment", "Processed"}
)

// XLSXExporter writes requests and their steps as an Excel workbook
type XLSXExporter struct {
	logger *zap.Logger
}

// NewXLSXExporter creates a new XLSX exporter
func NewXLSXExporter(logger *zap.Logger) *XLSXExporter {
	return &XLSXExporter{logger: logger}
}

// ContentType returns the XLSX MIME type
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export writes one row per request on the Requests sheet and one row per
// step on the Steps sheet
func (e *XLSXExporter) Export(ctx context.Context, w io.Writer, requests []*entity.WorkflowRequest) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RequestsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(StepsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := e.writeRow(f, RequestsSheet, 1, requestHeaders); err != nil {
		return err
	}
	if err := e.writeRow(f, StepsSheet, 1, stepHeaders); err != nil {
		return err
	}

	stepRow := 2
	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return err
		}

		row := []interface{}{
			req.ID,
			string(req.Type),
			req.Title,
			requesterLabel(req),
			string(req.Status),
			req.CurrentStep,
			formatTime(req.StartDate, dateLayout),
			formatTime(req.EndDate, dateLayout),
			req.DurationLabel,
			req.CreatedAt.Format(dateTimeLayout),
			req.UpdatedAt.Format(dateTimeLayout),
		}
		if err := e.writeRow(f, RequestsSheet, i+2, row); err != nil {
			return err
		}

		for _, step := range req.Steps {
			row := []interface{}{
				req.ID,
				step.Order,
				step.Name,
				step.ApproverName,
				string(step.Status),
				step.Comment,
				formatTime(step.ProcessedAt, dateTimeLayout),
			}
			if err := e.writeRow(f, StepsSheet, stepRow, row); err != nil {
				return err
			}
			stepRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Requests exported",
		zap.Int("requests", len(requests)),
		zap.Int("steps", stepRow-2))
	return nil
}

func (e *XLSXExporter) writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func requesterLabel(req *entity.WorkflowRequest) string {
	if req.RequesterName != "" {
		return req.RequesterName
	}
	return req.RequesterID
}

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

var _ port.RequestExporter = (*XLSXExporter)(nil)
