package deeplook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Batch is one wholesale load of result sources.
type Batch struct {
	ID       string     `json:"id"`
	LoadedAt time.Time  `json:"loadedAt"`
	Projects []*Project `json:"projects"`
}

// Service holds the guidance index and the current batch. Both are replaced as a
// whole; readers always see a complete index and a complete batch. Projects
// returned by the service are shared and must be treated as read-only.
type Service struct {
	cfgMu sync.RWMutex
	cfg   Config

	mu       sync.RWMutex
	guidance *GuidanceIndex
	batch    *Batch

	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs a service with an empty guidance index and an empty batch.
func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:      cfg,
		guidance: NewGuidanceIndex(Table{Header: NewHeader(nil)}, cfg.Columns),
		logger:   logger,
		now:      time.Now,
	}
	s.batch = &Batch{ID: uuid.NewString(), LoadedAt: s.now(), Projects: []*Project{}}
	return s, nil
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig replaces the configuration. Loaded data is kept; new settings
// apply to the next load.
func (s *Service) UpdateConfig(cfg Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
	return nil
}

// LoadGuidance reads the guidance file and swaps in a new index. On error the
// previous index stays in place.
func (s *Service) LoadGuidance(ctx context.Context, path string) error {
	src, err := ReadSource(ctx, path)
	if err != nil {
		return fmt.Errorf("load guidance: %w", err)
	}
	return s.LoadGuidanceSource(src)
}

// LoadGuidanceSource builds and installs an index from an in-memory source.
func (s *Service) LoadGuidanceSource(src Source) error {
	cfg := s.Config()
	table, err := ParseSource(src, cfg)
	if err != nil {
		return fmt.Errorf("load guidance: %w", err)
	}
	idx := NewGuidanceIndex(table, cfg.Columns)
	if idx.Schema().ItemCode == "" {
		s.logger.Warn("guidance header has no item code column",
			zap.String("source", src.Name),
			zap.Strings("header", table.Header.Names()))
	}
	s.mu.Lock()
	s.guidance = idx
	s.mu.Unlock()
	s.logger.Info("guidance loaded",
		zap.String("source", src.Name),
		zap.Int("rows", table.Len()),
		zap.Int("entries", idx.Len()))
	return nil
}

// Guidance returns the current guidance index.
func (s *Service) Guidance() *GuidanceIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guidance
}

// LoadResults reads every path concurrently, then joins and installs them as one
// batch in path order. Any read failure aborts the load and keeps the old batch.
func (s *Service) LoadResults(ctx context.Context, paths []string) (*Batch, error) {
	cfg := s.Config()
	sources := make([]Source, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			src, err := ReadSource(gctx, path)
			if err != nil {
				return err
			}
			sources[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("result load aborted", zap.Int("sources", len(paths)), zap.Error(err))
		return nil, fmt.Errorf("load results: %w", err)
	}
	return s.LoadResultSources(sources)
}

// LoadResultSources parses and joins in-memory sources and installs them as the
// current batch.
func (s *Service) LoadResultSources(sources []Source) (*Batch, error) {
	cfg := s.Config()
	idx := s.Guidance()
	projects := make([]*Project, 0, len(sources))
	for _, src := range sources {
		table, err := ParseSource(src, cfg)
		if err != nil {
			return nil, fmt.Errorf("load results: %w", err)
		}
		p := JoinProject(src.Name, table, idx, cfg.Columns)
		s.logger.Debug("result source joined",
			zap.String("source", src.Name),
			zap.Int("items", len(p.Items)),
			zap.Int("unmatched", countUnmatched(p)))
		projects = append(projects, p)
	}
	batch := &Batch{ID: uuid.NewString(), LoadedAt: s.now(), Projects: projects}
	s.mu.Lock()
	s.batch = batch
	s.mu.Unlock()
	s.logger.Info("result batch installed",
		zap.String("batch", batch.ID),
		zap.Int("projects", len(projects)))
	return batch, nil
}

// Batch returns the current batch.
func (s *Service) Batch() *Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch
}

// Projects returns the current batch's projects in load order.
func (s *Service) Projects() []*Project {
	b := s.Batch()
	out := make([]*Project, len(b.Projects))
	copy(out, b.Projects)
	return out
}

// Project looks up a project of the current batch by ID or label.
func (s *Service) Project(name string) (*Project, bool) {
	name = NormalizeName(name)
	for _, p := range s.Projects() {
		if p.ID == name || p.Label == name {
			return p, true
		}
	}
	return nil, false
}

// Dashboard recomputes every aggregate over the current batch.
func (s *Service) Dashboard() Dashboard {
	return BuildDashboard(s.Projects(), s.Config().TopN)
}

func countUnmatched(p *Project) int {
	n := 0
	for _, it := range p.Items {
		if !it.Matched() {
			n++
		}
	}
	return n
}
