package history

import (
	"context"
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

// Input son los campos de una entrada. Según Kind se leen los de tratamiento
// (Diagnosis, Description) o los de vacunación (Vaccine, DueDate).
type Input struct {
	Kind Kind
	Date time.Time

	Diagnosis   string
	Description string

	Vaccine string
	DueDate *time.Time
}

func (s *Service) Append(ctx context.Context, animalID int64, in Input) (Entry, error) {
	if animalID <= 0 {
		return Entry{}, errs.ErrNotFound
	}

	e, err := buildEntry(in.Kind, in)
	if err != nil {
		return Entry{}, err
	}

	now := s.now()
	e.AnimalID = animalID
	e.CreatedAt = now
	e.UpdatedAt = now

	return s.repo.Append(ctx, e)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Entry, error) {
	if id <= 0 {
		return Entry{}, errs.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, animalID int64) ([]Entry, error) {
	if animalID <= 0 {
		return nil, errs.ErrNotFound
	}
	return s.repo.ListByAnimal(ctx, animalID)
}

// Update reescribe fecha y detalle. Id, animal y kind son inmutables:
// si in.Kind viene y no coincide con el actual, es input inválido.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Entry, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if in.Kind != "" && in.Kind != current.Kind {
		return Entry{}, errs.ErrInvalidInput
	}

	next, err := buildEntry(current.Kind, in)
	if err != nil {
		return Entry{}, err
	}

	next.ID = current.ID
	next.AnimalID = current.AnimalID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, next); err != nil {
		return Entry{}, err
	}
	return next, nil
}

// Delete no escala un id inexistente: devuelve errs.ErrNotFound y el ledger queda igual.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errs.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func buildEntry(kind Kind, in Input) (Entry, error) {
	if !kind.Valid() {
		return Entry{}, errs.ErrInvalidInput
	}
	if in.Date.IsZero() {
		return Entry{}, errs.ErrInvalidInput
	}

	e := Entry{
		Kind: kind,
		Date: TruncateDay(in.Date),
	}

	switch kind {
	case KindTreatment:
		diag := strings.TrimSpace(in.Diagnosis)
		desc := strings.TrimSpace(in.Description)
		if diag == "" || desc == "" {
			return Entry{}, errs.ErrInvalidInput
		}
		e.Treatment = &Treatment{Diagnosis: diag, Description: desc}
	case KindVaccination:
		vaccine := strings.TrimSpace(in.Vaccine)
		if vaccine == "" {
			return Entry{}, errs.ErrInvalidInput
		}
		var due *time.Time
		if in.DueDate != nil && !in.DueDate.IsZero() {
			d := TruncateDay(*in.DueDate)
			if d.Before(e.Date) {
				return Entry{}, errs.ErrInvalidInput
			}
			due = &d
		}
		e.Vaccination = &Vaccination{Vaccine: vaccine, DueDate: due}
	}

	return e, nil
}

// TruncateDay deja solo la fecha calendario, en UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parsea YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errs.ErrInvalidInput
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errs.ErrInvalidInput
	}
	return t, nil
}
