package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/procexec/runtime/execution"
	"github.com/viant/procexec/service/dao"
	"github.com/viant/procexec/service/dao/snapshot"
)

// Service stores snapshots as JSON files under a base URL
type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

var _ snapshot.Service = (*Service)(nil)

// Save writes the snapshot to <baseURL>/<id>.json
func (s *Service) Save(ctx context.Context, aSnapshot *execution.Snapshot) error {
	if aSnapshot == nil {
		return dao.ErrNilEntity
	}
	if aSnapshot.ID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(aSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.location(aSnapshot.ID)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save snapshot to %s: %w", location, err)
	}
	return nil
}

// Load reads a snapshot or returns dao.ErrNotFound
func (s *Service) Load(ctx context.Context, id string) (*execution.Snapshot, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	location := s.location(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check snapshot %s: %w", location, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", location, err)
	}
	ret := &execution.Snapshot{}
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", location, err)
	}
	return ret, nil
}

// Delete removes a snapshot
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.location(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check snapshot %s: %w", location, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err = s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", location, err)
	}
	return nil
}

// List returns snapshots matching parameters, oldest first
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exists, err := s.fs.Exists(ctx, s.baseURL)
	if err != nil || !exists {
		return nil, err
	}
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	var ret []*execution.Snapshot
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			log.Printf("snapshot: failed to read %s: %v", object.URL(), err)
			continue
		}
		record := &execution.Snapshot{}
		if err := json.Unmarshal(data, record); err != nil {
			log.Printf("snapshot: failed to unmarshal %s: %v", object.URL(), err)
			continue
		}
		if snapshot.Filter(record, parameters) {
			ret = append(ret, record)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].CreatedAt.Equal(ret[j].CreatedAt) {
			return ret[i].ID < ret[j].ID
		}
		return ret[i].CreatedAt.Before(ret[j].CreatedAt)
	})
	return ret, nil
}

func (s *Service) location(id string) string {
	return url.Join(s.baseURL, id+".json")
}

// New creates a file based snapshot store rooted at baseURL
func New(fs afs.Service, baseURL string) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("snapshot base URL was empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	return &Service{
		baseURL: url.Normalize(baseURL, file.Scheme),
		fs:      fs,
	}, nil
}
