package repository

import "shadowcleaner/internal/infrastructure/database"

// Repositories holds all repository instances
type Repositories struct {
	ScanHistory *ScanHistoryRepository
	Waitlist    *WaitlistRepository
}

// NewRepositories creates all repository instances over one database
func NewRepositories(db *database.PostgresDB) *Repositories {
	return &Repositories{
		ScanHistory: NewScanHistoryRepository(db),
		Waitlist:    NewWaitlistRepository(db),
	}
}
