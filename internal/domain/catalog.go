package domain

import (
	"errors"
	"fmt"
)

const (
	DefaultAccountID      int64  = 1
	DefaultUsername       string = "demo"
	DefaultInitialBalance int64  = 30000
)

// DefaultCatalog каталог услуг, которым засевается пустое хранилище.
func DefaultCatalog() []Service {
	return []Service{
		{ID: 1, Name: "YouTube Subscribers", Rate: 15000, Unit: 1000, Min: 100, Max: 50000},
		{ID: 2, Name: "YouTube Views", Rate: 8000, Unit: 1000, Min: 100, Max: 500000},
		{ID: 3, Name: "Instagram Followers", Rate: 18000, Unit: 1000, Min: 10, Max: 500000},
	}
}

// DefaultSnapshot начальное состояние для демо аккаунта.
func DefaultSnapshot(username string, balance int64) Snapshot {
	if username == "" {
		username = DefaultUsername
	}
	return Snapshot{
		Account: Account{
			ID:       DefaultAccountID,
			Username: username,
			Balance:  balance,
		},
		Services: DefaultCatalog(),
		Orders:   []Order{},
	}
}

// Validate проверяет инварианты услуги: min >= 1, max >= min, unit >= 1, rate >= 0.
func (s Service) Validate() error {
	var errs []error
	if s.Min < 1 {
		errs = append(errs, fmt.Errorf("min must be >= 1, got %d", s.Min))
	}
	if s.Max < s.Min {
		errs = append(errs, fmt.Errorf("max %d is less than min %d", s.Max, s.Min))
	}
	if s.Unit < 1 {
		errs = append(errs, fmt.Errorf("unit must be >= 1, got %d", s.Unit))
	}
	if s.Rate < 0 {
		errs = append(errs, fmt.Errorf("rate must be >= 0, got %d", s.Rate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("service %d: %w", s.ID, errors.Join(errs...))
	}
	return nil
}

// ValidateCatalog проверяет каждую услугу и уникальность идентификаторов.
func ValidateCatalog(services []Service) error {
	seen := make(map[int64]struct{}, len(services))
	for _, s := range services {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("service %d: duplicate id", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// Validate проверяет полное состояние перед запуском приложения.
func (s Snapshot) Validate() error {
	if s.Account.Balance < 0 {
		return fmt.Errorf("account %d: negative balance %d", s.Account.ID, s.Account.Balance)
	}
	return ValidateCatalog(s.Services)
}
