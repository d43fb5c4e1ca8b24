// Package points exposes the user point ledger. Every balance adjustment the
// engine makes — fast-path daily log points and period score deltas — lands
// here as a ledger entry with the resulting balance, so running totals stay
// auditable.
package points

import (
	"github.com/honorhabits/honor/internal/domain"
	"github.com/honorhabits/honor/internal/infra/sqlite"
)

// Service reads the point ledger and balances.
type Service struct {
	db *sqlite.DB
}

// NewService creates a points service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Balance returns the user's current running point balance.
func (s *Service) Balance(userID string) (int64, error) {
	user, err := s.db.GetUser(userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, domain.ErrUserNotFound
	}
	return user.Points, nil
}

// History returns recent ledger entries for the user, newest first.
func (s *Service) History(userID string, limit int) ([]domain.PointEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	user, err := s.db.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.db.LedgerEntries(userID, limit)
}
