package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-records/internal/errs"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name    string
	Species string
	Owner   string
	Contact string
}

// ResolveOrCreate decide si (name, owner) ya existe.
// created=false significa que se devolvió el registro existente sin tocarlo.
func (s *Service) ResolveOrCreate(ctx context.Context, in CreateInput) (Animal, bool, error) {
	name := strings.TrimSpace(in.Name)
	species := strings.TrimSpace(in.Species)
	owner := strings.TrimSpace(in.Owner)
	contact := strings.TrimSpace(in.Contact)

	if name == "" || species == "" || owner == "" || contact == "" {
		return Animal{}, false, errs.ErrInvalidInput
	}

	now := s.now()
	a := Animal{
		Name:      name,
		Species:   species,
		Owner:     owner,
		Contact:   contact,
		CreatedAt: now,
		UpdatedAt: now,
	}

	got, created, err := s.repo.ResolveOrCreate(ctx, a)
	if errors.Is(err, errs.ErrConflict) {
		// Otro request ganó la carrera: el registro existe, lo devolvemos.
		existing, gerr := s.repo.GetByKey(ctx, a.Key())
		if gerr != nil {
			return Animal{}, false, gerr
		}
		return existing, false, nil
	}
	if err != nil {
		return Animal{}, false, err
	}
	return got, created, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Animal, error) {
	if id <= 0 {
		return Animal{}, errs.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Animal, error) {
	return s.repo.List(ctx)
}

// UpdateProfileInput: punteros para PATCH real (nil = no tocar).
// Name y Owner no se editan: son la clave natural.
type UpdateProfileInput struct {
	Species *string
	Contact *string
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (Animal, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	if in.Species != nil {
		v := strings.TrimSpace(*in.Species)
		if v == "" {
			return Animal{}, errs.ErrInvalidInput
		}
		current.Species = v
	}
	if in.Contact != nil {
		v := strings.TrimSpace(*in.Contact)
		if v == "" {
			return Animal{}, errs.ErrInvalidInput
		}
		current.Contact = v
	}

	current.UpdatedAt = s.now()
	if err := s.repo.UpdateProfile(ctx, current); err != nil {
		return Animal{}, err
	}
	return current, nil
}

func (s *Service) AttachLookup(ctx context.Context, id int64, png []byte) error {
	if len(png) == 0 {
		return errs.ErrInvalidInput
	}
	return s.repo.AttachLookup(ctx, id, png)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errs.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
