package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/store"
)

// Export is a generated download held by the export service.
type Export struct {
	ID          uuid.UUID
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService produces check-in list downloads for an event.
type ExportService interface {
	// GenerateCheckinList renders the check-in list for the event as
	// CSV and returns the download URL of the stored file.
	GenerateCheckinList(ctx context.Context, event, listName string) (string, error)

	// GetExport retrieves a previously generated export by ID.
	// Returns ErrExportNotFound if no such export exists.
	GetExport(ctx context.Context, id uuid.UUID) (*Export, error)
}

// exportService renders check-in lists from confirmed orders and keeps
// the generated files in memory. Files only need to outlive the poll
// loop that waits for them, so there is no eviction beyond process
// restart.
type exportService struct {
	orders  store.OrderStore
	mu      sync.RWMutex
	exports map[uuid.UUID]Export
	logger  *slog.Logger
}

// Ensure exportService implements ExportService
var _ ExportService = (*exportService)(nil)

// NewExportService creates an ExportService reading from the given
// order store.
func NewExportService(orders store.OrderStore, logger *slog.Logger) ExportService {
	return &exportService{
		orders:  orders,
		exports: make(map[uuid.UUID]Export),
		logger:  logger.With("component", "export_service"),
	}
}

// GenerateCheckinList renders the check-in list for the event as CSV.
func (s *exportService) GenerateCheckinList(
	ctx context.Context,
	event, listName string,
) (string, error) {
	orders, err := s.orders.ListByEvent(ctx, event)
	if err != nil {
		return "", fmt.Errorf("failed to list orders for export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"order_code", "email", "item", "price"}); err != nil {
		return "", fmt.Errorf("failed to write export header: %w", err)
	}

	for _, order := range orders {
		for _, pos := range order.Positions {
			record := []string{
				order.Code,
				order.Email,
				pos.Item,
				strconv.FormatInt(pos.Price, 10),
			}
			if err := w.Write(record); err != nil {
				return "", fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}

	export := Export{
		ID:          uuid.New(),
		FileName:    fmt.Sprintf("%s-%s.csv", event, listName),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}

	s.mu.Lock()
	s.exports[export.ID] = export
	s.mu.Unlock()

	s.logger.Info("check-in list generated",
		"event", event,
		"list_name", listName,
		"export_id", export.ID,
		"orders", len(orders))

	return fmt.Sprintf("/download/%s", export.ID), nil
}

// GetExport retrieves a previously generated export by ID.
func (s *exportService) GetExport(ctx context.Context, id uuid.UUID) (*Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	export, ok := s.exports[id]
	if !ok {
		return nil, ErrExportNotFound
	}

	copied := export
	return &copied, nil
}
