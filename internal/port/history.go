package port

import (
	"time"

	"github.com/ducnd58233/dataset-cache/internal/domain"
)

// HistoryRepository persists the outcome of public operations.
type HistoryRepository interface {
	// Record stores one operation outcome
	Record(op *domain.Operation) error

	// Recent returns up to limit operations, newest first
	Recent(limit int) ([]*domain.Operation, error)

	// PruneOlderThan deletes operations older than the given age.
	// Returns the number of rows deleted.
	PruneOlderThan(age time.Duration) (int, error)
}
