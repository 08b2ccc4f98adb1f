package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/daybook/internal/server/models"
)

// MemoryStore keeps days in process memory. It is meant for development
// and tests; everything is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	days map[string]map[string]models.DayDocument
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: make(map[string]map[string]models.DayDocument)}
}

func (m *MemoryStore) Exists(_ context.Context, userID, date string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.days[userID][date]
	return ok, nil
}

func (m *MemoryStore) Upsert(_ context.Context, w models.DayWrite, now time.Time) error {
	doc, err := cloneDocument(w.Document)
	if err != nil {
		return fmt.Errorf("failed to encode day %s: %w", w.Date, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	userDays, ok := m.days[w.UserID]
	if !ok {
		userDays = make(map[string]models.DayDocument)
		m.days[w.UserID] = userDays
	}

	d := userDays[w.Date]
	d.UserID, d.Date, d.Document = w.UserID, w.Date, doc

	t := now
	if w.StampCreatedAt {
		d.CreatedAt = &t
	}
	if w.StampUpdatedAt {
		d.UpdatedAt = &t
	}
	userDays[w.Date] = d
	return nil
}

func (m *MemoryStore) List(_ context.Context, userID string) ([]models.DayDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DayDocument, 0, len(m.days[userID]))
	for _, d := range m.days[userID] {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// cloneDocument deep-copies doc through JSON so stored days never alias
// caller-owned maps.
func cloneDocument(doc map[string]any) (map[string]any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
