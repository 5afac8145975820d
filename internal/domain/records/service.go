// Package records orquesta alta, vistas y edición de historial de un animal.
// Cada operación recibe la capacidad de staff de forma explícita; el servicio no lee sesión ni contexto de auth.
package records

import (
	"context"
	"errors"
	"time"

	"clinic-records/internal/domain/animals"
	"clinic-records/internal/domain/history"
	"clinic-records/internal/domain/lookup"
	"clinic-records/internal/errs"
	"clinic-records/internal/platform/metrics"

	"go.uber.org/zap"
)

type Service struct {
	animals *animals.Service
	history *history.Service
	binder  *lookup.Binder

	baseURL string
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

type Options struct {
	// BaseURL sale de configuración del servidor (ya normalizada).
	BaseURL string
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func NewService(animalsSvc *animals.Service, historySvc *history.Service, binder *lookup.Binder, opts Options) *Service {
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		animals: animalsSvc,
		history: historySvc,
		binder:  binder,
		baseURL: opts.BaseURL,
		metrics: m,
		log:     l.Named("records"),
		now:     time.Now,
	}
}

// AddResult: Created=false => la pareja (name, owner) ya existía y Animal es el registro original.
type AddResult struct {
	Animal  animals.Animal
	Created bool
}

// AddAnimal resuelve o crea y después asocia el QR.
// El alta queda comprometida antes del bind; si el bind falla, el animal queda sin QR
// y se recupera con BindToken (nunca re-creando).
func (s *Service) AddAnimal(ctx context.Context, staff bool, in animals.CreateInput) (AddResult, error) {
	if !staff {
		return AddResult{}, errs.ErrForbidden
	}

	a, created, err := s.animals.ResolveOrCreate(ctx, in)
	if err != nil {
		return AddResult{}, err
	}

	if created {
		s.metrics.IncrementAnimalsCreated()
		s.log.Info("animal created", zap.Int64("animal_id", a.ID))
	} else {
		s.metrics.IncrementAnimalsDeduped()
		s.log.Info("animal already registered", zap.Int64("animal_id", a.ID))
	}

	bound, err := s.bindIfMissing(ctx, a)
	if err != nil {
		s.log.Warn("lookup bind failed; animal left untokened",
			zap.Int64("animal_id", a.ID),
			zap.Error(err),
		)
		return AddResult{Animal: a, Created: created}, nil
	}
	return AddResult{Animal: bound, Created: created}, nil
}

// BindToken es el camino de reintento: asocia el QR solo si falta.
func (s *Service) BindToken(ctx context.Context, staff bool, animalID int64) (animals.Animal, error) {
	if !staff {
		return animals.Animal{}, errs.ErrForbidden
	}
	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return animals.Animal{}, err
	}
	return s.bindIfMissing(ctx, a)
}

func (s *Service) bindIfMissing(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	if a.HasLookupArtifact() {
		return a, nil
	}

	png, err := s.binder.Bind(ctx, a.ID, s.baseURL)
	if err != nil {
		s.metrics.ObserveBind("error")
		return a, err
	}

	err = s.animals.AttachLookup(ctx, a.ID, png)
	switch {
	case err == nil:
		s.metrics.ObserveBind("ok")
		a.LookupPNG = png
		return a, nil
	case errors.Is(err, errs.ErrAlreadyBound):
		// Otro request lo asoció primero: el suyo es el definitivo.
		s.metrics.ObserveBind("already_bound")
		return s.animals.GetByID(ctx, a.ID)
	default:
		s.metrics.ObserveBind("error")
		return a, err
	}
}

func (s *Service) ListAnimals(ctx context.Context, staff bool) ([]AnimalSummary, error) {
	if !staff {
		return nil, errs.ErrForbidden
	}
	items, err := s.animals.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AnimalSummary, 0, len(items))
	for _, a := range items {
		out = append(out, toSummary(a))
	}
	return out, nil
}

func (s *Service) StaffView(ctx context.Context, staff bool, animalID int64) (StaffView, error) {
	if !staff {
		return StaffView{}, errs.ErrForbidden
	}
	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return StaffView{}, err
	}
	entries, err := s.history.List(ctx, animalID)
	if err != nil {
		return StaffView{}, err
	}
	return s.toStaffView(a, entries), nil
}

// PublicView no distingue causas: cualquier error es errs.ErrNotFound.
func (s *Service) PublicView(ctx context.Context, animalID int64) (PublicView, error) {
	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return PublicView{}, s.publicMiss(animalID, err)
	}
	entries, err := s.history.List(ctx, animalID)
	if err != nil {
		return PublicView{}, s.publicMiss(animalID, err)
	}
	s.metrics.ObservePublicLookup(true)
	return toPublicView(a, entries), nil
}

func (s *Service) publicMiss(animalID int64, err error) error {
	s.metrics.ObservePublicLookup(false)
	if !errors.Is(err, errs.ErrNotFound) {
		s.log.Warn("public lookup failed", zap.Int64("animal_id", animalID), zap.Error(err))
	}
	return errs.ErrNotFound
}

// ResolveScan traduce el texto leído de un QR al registro del animal.
// Solo se aceptan payloads emitidos con nuestra base.
func (s *Service) ResolveScan(ctx context.Context, staff bool, payload string) (StaffView, error) {
	if !staff {
		return StaffView{}, errs.ErrForbidden
	}
	id, err := lookup.ParsePayload(s.baseURL, payload)
	if err != nil {
		return StaffView{}, err
	}
	return s.StaffView(ctx, staff, id)
}

func (s *Service) UpdateProfile(ctx context.Context, staff bool, animalID int64, in animals.UpdateProfileInput) (StaffView, error) {
	if !staff {
		return StaffView{}, errs.ErrForbidden
	}
	if _, err := s.animals.UpdateProfile(ctx, animalID, in); err != nil {
		return StaffView{}, err
	}
	return s.StaffView(ctx, staff, animalID)
}

// DeleteAnimal borra el animal con todo su historial (misma operación en storage).
func (s *Service) DeleteAnimal(ctx context.Context, staff bool, animalID int64) error {
	if !staff {
		return errs.ErrForbidden
	}
	if err := s.animals.Delete(ctx, animalID); err != nil {
		return err
	}
	s.log.Info("animal deleted", zap.Int64("animal_id", animalID))
	return nil
}

// Artifact devuelve el PNG guardado; errs.ErrNotFound si el animal aún no tiene QR.
func (s *Service) Artifact(ctx context.Context, staff bool, animalID int64) ([]byte, error) {
	if !staff {
		return nil, errs.ErrForbidden
	}
	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if !a.HasLookupArtifact() {
		return nil, errs.ErrNotFound
	}
	return a.LookupPNG, nil
}

func (s *Service) PublicArtifact(ctx context.Context, animalID int64) ([]byte, error) {
	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil || !a.HasLookupArtifact() {
		return nil, errs.ErrNotFound
	}
	return a.LookupPNG, nil
}

func (s *Service) AppendEntry(ctx context.Context, staff bool, animalID int64, in history.Input) (history.Entry, error) {
	if !staff {
		return history.Entry{}, errs.ErrForbidden
	}
	e, err := s.history.Append(ctx, animalID, in)
	if err != nil {
		return history.Entry{}, err
	}
	s.metrics.ObserveHistoryOp("append")
	return e, nil
}

// UpdateEntry exige que la entrada pertenezca a animalID; si no, es errs.ErrNotFound.
func (s *Service) UpdateEntry(ctx context.Context, staff bool, animalID, entryID int64, in history.Input) (history.Entry, error) {
	if !staff {
		return history.Entry{}, errs.ErrForbidden
	}
	if err := s.ownedEntry(ctx, animalID, entryID); err != nil {
		return history.Entry{}, err
	}
	e, err := s.history.Update(ctx, entryID, in)
	if err != nil {
		return history.Entry{}, err
	}
	s.metrics.ObserveHistoryOp("update")
	return e, nil
}

func (s *Service) DeleteEntry(ctx context.Context, staff bool, animalID, entryID int64) error {
	if !staff {
		return errs.ErrForbidden
	}
	if err := s.ownedEntry(ctx, animalID, entryID); err != nil {
		return err
	}
	if err := s.history.Delete(ctx, entryID); err != nil {
		return err
	}
	s.metrics.ObserveHistoryOp("delete")
	return nil
}

func (s *Service) ownedEntry(ctx context.Context, animalID, entryID int64) error {
	e, err := s.history.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if e.AnimalID != animalID {
		return errs.ErrNotFound
	}
	return nil
}
