package ledger_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

// memStore almacén en memoria con semántica transaccional: Run trabaja sobre una copia
// y solo la publica si fn no devuelve error.
type memStore struct {
	mu        sync.Mutex
	resources map[string]entity.Resource
	movements []entity.Movement

	// failAppend hace fallar Append para probar el rollback.
	failAppend error
	// failUpdate hace fallar UpdateBalance después de insertar el movimiento.
	failUpdate error
}

func newMemStore(resources ...entity.Resource) *memStore {
	s := &memStore{resources: map[string]entity.Resource{}}
	for _, r := range resources {
		s.resources[r.ID] = r
	}
	return s
}

func (s *memStore) Run(ctx context.Context, fn func(repository.ResourceBalanceRepository, repository.MovementAppender) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, resources: map[string]entity.Resource{}}
	for k, v := range s.resources {
		tx.resources[k] = v
	}
	tx.movements = append(tx.movements, s.movements...)

	if err := fn(tx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.resources = tx.resources
	s.movements = tx.movements
	return nil
}

func (s *memStore) ReadSnapshot(ctx context.Context, fn func(repository.ResourceRepository, repository.MovementRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(memReader{s}, memReaderMovements{s})
}

func (s *memStore) balance(id string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resources[id].CurrentBalance
}

func (s *memStore) count(resourceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.movements {
		if m.ResourceID == resourceID {
			n++
		}
	}
	return n
}

// corrupt fuerza un saldo almacenado distinto del historial.
func (s *memStore) corrupt(id string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.resources[id]
	r.CurrentBalance = balance
	s.resources[id] = r
}

type memTx struct {
	store     *memStore
	resources map[string]entity.Resource
	movements []entity.Movement
}

func (t *memTx) GetForUpdate(_ context.Context, id string) (*entity.Resource, error) {
	r, ok := t.resources[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (t *memTx) UpdateBalance(_ context.Context, id string, newBalance decimal.Decimal, updatedAt time.Time) error {
	if t.store.failUpdate != nil {
		return t.store.failUpdate
	}
	r, ok := t.resources[id]
	if !ok {
		return errors.New("resource missing")
	}
	r.CurrentBalance = newBalance
	r.UpdatedAt = updatedAt
	t.resources[id] = r
	return nil
}

func (t *memTx) NextSequence(_ context.Context, resourceID string) (int64, error) {
	var max int64
	for _, m := range t.movements {
		if m.ResourceID == resourceID && m.Sequence > max {
			max = m.Sequence
		}
	}
	return max + 1, nil
}

func (t *memTx) Append(_ context.Context, m *entity.Movement) error {
	if t.store.failAppend != nil {
		return t.store.failAppend
	}
	t.movements = append(t.movements, *m)
	return nil
}

type memReader struct{ s *memStore }

func (r memReader) Create(context.Context, *entity.Resource) error { return errors.New("read only") }

func (r memReader) GetByID(_ context.Context, id string) (*entity.Resource, error) {
	res, ok := r.s.resources[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r memReader) GetBySlug(context.Context, string) (*entity.Resource, error) { return nil, nil }

func (r memReader) List(context.Context, repository.ResourceFilter) ([]*entity.ResourceSummary, int, error) {
	return nil, 0, nil
}

type memReaderMovements struct{ s *memStore }

func (r memReaderMovements) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			mm := m
			return &mm, nil
		}
	}
	return nil, nil
}

func (r memReaderMovements) ListByResource(_ context.Context, resourceID string, limit, offset int) ([]*entity.Movement, int, error) {
	all, _ := r.ListChronological(context.Background(), resourceID)
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if offset >= len(all) {
		return []*entity.Movement{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (r memReaderMovements) ListChronological(_ context.Context, resourceID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.ResourceID == resourceID {
			mm := m
			out = append(out, &mm)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r memReaderMovements) Totals(context.Context, string) (entity.MovementTotals, error) {
	return entity.MovementTotals{}, nil
}
