package domain

import "context"

// Store groups the six collections behind one backend. The memory and
// postgres implementations are interchangeable.
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Resumes() ResumeRepository
	FormHistories() FormHistoryRepository
	ExtensionSettings() ExtensionSettingsRepository
	Statistics() StatisticsRepository

	Ping(ctx context.Context) error
	Close()
}
