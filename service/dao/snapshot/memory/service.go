package memory

import (
	"context"

	"github.com/viant/procexec/runtime/execution"
	"github.com/viant/procexec/service/dao"
	"github.com/viant/procexec/service/dao/snapshot"
	"github.com/viant/procexec/service/dao/store"
)

// Service keeps snapshots in memory. Records are copied on the way in and on
// the way out.
type Service struct {
	store *store.MemoryStore[string, execution.Snapshot]
}

var _ snapshot.Service = (*Service)(nil)

// Save persists a copy of s.
func (s *Service) Save(ctx context.Context, aSnapshot *execution.Snapshot) error {
	if aSnapshot == nil {
		return dao.ErrNilEntity
	}
	return s.store.Save(ctx, clone(aSnapshot))
}

// Load returns a copy of the snapshot or dao.ErrNotFound.
func (s *Service) Load(ctx context.Context, id string) (*execution.Snapshot, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	ret, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return clone(ret), nil
}

// Delete removes a snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	return s.store.Delete(ctx, id)
}

// List returns copies of the snapshots matching parameters.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Snapshot, error) {
	records, err := s.store.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	ret := make([]*execution.Snapshot, 0, len(records))
	for _, record := range records {
		ret = append(ret, clone(record))
	}
	return ret, nil
}

func clone(s *execution.Snapshot) *execution.Snapshot {
	ret := *s
	ret.Stack = append([]uint64(nil), s.Stack...)
	ret.Memory = append([]execution.Region(nil), s.Memory...)
	ret.FDs = append([]int(nil), s.FDs...)
	ret.Args = append([]string(nil), s.Args...)
	return &ret
}

// New creates an in-memory snapshot store
func New() *Service {
	return &Service{store: store.NewMemoryStore[string, execution.Snapshot](snapshot.Key, snapshot.Filter)}
}
