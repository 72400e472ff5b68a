// Package memory implements domain.Store on process memory. It is used for
// local development, tests, and deployments without DATABASE_URL.
package memory

import (
	"context"
	"sync"
	"time"

	"go-autofill-backend/internal/domain"

	"github.com/google/uuid"
)

type resumeRow struct {
	resume domain.Resume
	seq    int64
}

type historyRow struct {
	history domain.FormHistory
	seq     int64
}

// Store holds all six collections behind a single RWMutex. Every
// check-then-act sequence (uniqueness, default resume switch, statistics
// read-modify-write) runs under the write lock.
type Store struct {
	mu    sync.RWMutex
	now   func() time.Time
	newID func() string
	seq   int64

	users     map[string]*domain.User
	profiles  map[string]*domain.Profile // by user id
	resumes   map[string]*resumeRow
	histories map[string][]*historyRow // by user id
	settings  map[string]*domain.ExtensionSettings
	stats     map[string]*domain.Statistics
}

type Option func(*Store)

// WithClock overrides the time source used for server-assigned timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
		users:     make(map[string]*domain.User),
		profiles:  make(map[string]*domain.Profile),
		resumes:   make(map[string]*resumeRow),
		histories: make(map[string][]*historyRow),
		settings:  make(map[string]*domain.ExtensionSettings),
		stats:     make(map[string]*domain.Statistics),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ domain.Store = (*Store)(nil)

func (s *Store) Users() domain.UserRepository { return &userRepo{s: s} }
func (s *Store) Profiles() domain.ProfileRepository { return &profileRepo{s: s} }
func (s *Store) Resumes() domain.ResumeRepository { return &resumeRepo{s: s} }
func (s *Store) FormHistories() domain.FormHistoryRepository { return &formHistoryRepo{s: s} }
func (s *Store) ExtensionSettings() domain.ExtensionSettingsRepository {
	return &extensionSettingsRepo{s: s}
}

func (s *Store) Statistics() domain.StatisticsRepository { return &statisticsRepo{s: s} }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() {}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}
