package memory

import (
	"context"
	"sort"

	"go-autofill-backend/internal/domain"
)

type formHistoryRepo struct {
	s *Store
}

func (r *formHistoryRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.FormHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := append([]*historyRow(nil), r.s.histories[userID]...)
	sort.Slice(rows, func(i, j int) bool {
		ti, tj := rows[i].history.Timestamp, rows[j].history.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i].seq > rows[j].seq
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	histories := make([]domain.FormHistory, 0, len(rows))
	for _, row := range rows {
		histories = append(histories, cloneHistory(&row.history))
	}
	return histories, nil
}

// Create stamps the record with the server clock; any caller-supplied
// timestamp is discarded.
func (r *formHistoryRepo) Create(ctx context.Context, history *domain.FormHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	history.ID = r.s.newID()
	history.Timestamp = r.s.now()
	row := &historyRow{history: cloneHistory(history), seq: r.s.nextSeq()}
	r.s.histories[history.UserID] = append(r.s.histories[history.UserID], row)
	return nil
}
