package application

import (
	"context"
	"errors"
	"time"

	variables "github.com/mhdr/Monitoring2025-sub018/internal/variables/domain"
)

// Repository persists global variables.
type Repository interface {
	Get(ctx context.Context, id string) (*variables.GlobalVariable, error)
	Upsert(ctx context.Context, variable *variables.GlobalVariable) error
	List(ctx context.Context) ([]variables.GlobalVariable, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Service manages process-wide named values with enforced encodings.
type Service struct {
	repo  Repository
	clock Clock
}

// NewService constructs a service.
func NewService(repo Repository, clock Clock) (*Service, error) {
	if repo == nil {
		return nil, errors.New("variables: nil repository")
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Service{repo: repo, clock: clock}, nil
}

// Get loads a variable.
func (s *Service) Get(ctx context.Context, id string) (*variables.GlobalVariable, error) {
	if s == nil {
		return nil, errors.New("variables: nil service")
	}
	if id == "" {
		return nil, errors.New("variables: empty id")
	}
	variable, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if variable == nil {
		return nil, variables.ErrNotFound
	}
	return variable, nil
}

// Set stores a value after checking it against the variable's declared
// type. A mismatched encoding is a no-op failure.
func (s *Service) Set(ctx context.Context, id, value string) error {
	if s == nil {
		return errors.New("variables: nil service")
	}
	variable, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := variables.CheckEncoding(variable.Type, value); err != nil {
		return err
	}
	variable.Value = value
	variable.UpdatedAt = s.clock.Now()
	return s.repo.Upsert(ctx, variable)
}

// Define creates or replaces a variable.
func (s *Service) Define(ctx context.Context, variable *variables.GlobalVariable) error {
	if s == nil {
		return errors.New("variables: nil service")
	}
	if variable == nil {
		return errors.New("variables: nil variable")
	}
	if err := variable.Validate(); err != nil {
		return err
	}
	variable.UpdatedAt = s.clock.Now()
	return s.repo.Upsert(ctx, variable)
}

// List returns all variables.
func (s *Service) List(ctx context.Context) ([]variables.GlobalVariable, error) {
	if s == nil {
		return nil, errors.New("variables: nil service")
	}
	return s.repo.List(ctx)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
