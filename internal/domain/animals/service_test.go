package animals

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-records/internal/errs"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID  map[int64]Animal
	last  int64
	calls int

	// conflictOnce simula que otro request insertó la misma clave entre medio.
	conflictOnce bool
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Animal{}}
}

func (r *testRepo) ResolveOrCreate(ctx context.Context, a Animal) (Animal, bool, error) {
	r.calls++
	if r.conflictOnce {
		r.conflictOnce = false
		r.last++
		a.ID = r.last
		r.byID[a.ID] = a
		return Animal{}, false, errs.ErrConflict
	}
	for _, cur := range r.byID {
		if cur.Key() == a.Key() {
			return cur, false, nil
		}
	}
	r.last++
	a.ID = r.last
	r.byID[a.ID] = a
	return a, true, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, errs.ErrNotFound
	}
	return a, nil
}

func (r *testRepo) GetByKey(ctx context.Context, key NaturalKey) (Animal, error) {
	for _, a := range r.byID {
		if a.Key() == key {
			return a, nil
		}
	}
	return Animal{}, errs.ErrNotFound
}

func (r *testRepo) List(ctx context.Context) ([]Animal, error) {
	out := make([]Animal, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) UpdateProfile(ctx context.Context, a Animal) error {
	if _, ok := r.byID[a.ID]; !ok {
		return errs.ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) AttachLookup(ctx context.Context, id int64, png []byte) error {
	a, ok := r.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	if a.HasLookupArtifact() {
		return errs.ErrAlreadyBound
	}
	a.LookupPNG = png
	r.byID[id] = a
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func newTestService(repo Repository) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

// -------------------------
// Tests
// -------------------------

func TestResolveOrCreate_TrimsAndCreates(t *testing.T) {
	repo := newTestRepo()
	s := newTestService(repo)

	a, created, err := s.ResolveOrCreate(context.Background(), CreateInput{
		Name: "  Rex ", Species: "dog", Owner: " Ana", Contact: "555 ",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true")
	}
	if a.Name != "Rex" || a.Owner != "Ana" || a.Contact != "555" {
		t.Fatalf("fields not trimmed: %+v", a)
	}
	if a.CreatedAt.IsZero() || !a.CreatedAt.Equal(a.UpdatedAt) {
		t.Fatalf("timestamps not set: %+v", a)
	}
}

func TestResolveOrCreate_ExistingKeyKeepsOriginal(t *testing.T) {
	s := newTestService(newTestRepo())
	ctx := context.Background()

	first, _, err := s.ResolveOrCreate(ctx, CreateInput{Name: "Rex", Species: "dog", Owner: "Ana", Contact: "555"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	again, created, err := s.ResolveOrCreate(ctx, CreateInput{Name: "Rex", Species: "cat", Owner: "Ana", Contact: "000"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if created {
		t.Fatalf("expected created=false")
	}
	if again.ID != first.ID || again.Species != "dog" || again.Contact != "555" {
		t.Fatalf("expected original record, got %+v", again)
	}
}

func TestResolveOrCreate_InvalidInput(t *testing.T) {
	s := newTestService(newTestRepo())

	cases := []CreateInput{
		{Name: "", Species: "dog", Owner: "Ana", Contact: "1"},
		{Name: "Rex", Species: " ", Owner: "Ana", Contact: "1"},
		{Name: "Rex", Species: "dog", Owner: "", Contact: "1"},
		{Name: "Rex", Species: "dog", Owner: "Ana", Contact: "\t"},
	}
	for _, in := range cases {
		_, _, err := s.ResolveOrCreate(context.Background(), in)
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestResolveOrCreate_ConflictFallsBackToExisting(t *testing.T) {
	repo := newTestRepo()
	repo.conflictOnce = true
	s := newTestService(repo)

	a, created, err := s.ResolveOrCreate(context.Background(), CreateInput{Name: "Rex", Species: "dog", Owner: "Ana", Contact: "555"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if created {
		t.Fatalf("expected created=false after conflict")
	}
	if a.ID != 1 {
		t.Fatalf("expected existing id=1, got %d", a.ID)
	}
}

func TestGetByID_NonPositiveIsNotFound(t *testing.T) {
	s := newTestService(newTestRepo())
	for _, id := range []int64{0, -1} {
		if _, err := s.GetByID(context.Background(), id); !errors.Is(err, errs.ErrNotFound) {
			t.Fatalf("id=%d: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestService(newTestRepo())
	ctx := context.Background()

	a, _, _ := s.ResolveOrCreate(ctx, CreateInput{Name: "Rex", Species: "dog", Owner: "Ana", Contact: "555"})

	contact := " 777 "
	got, err := s.UpdateProfile(ctx, a.ID, UpdateProfileInput{Contact: &contact})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Contact != "777" || got.Species != "dog" {
		t.Fatalf("unexpected profile: %+v", got)
	}

	empty := ""
	if _, err := s.UpdateProfile(ctx, a.ID, UpdateProfileInput{Species: &empty}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.UpdateProfile(ctx, 99, UpdateProfileInput{Contact: &contact}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttachLookup(t *testing.T) {
	s := newTestService(newTestRepo())
	ctx := context.Background()

	a, _, _ := s.ResolveOrCreate(ctx, CreateInput{Name: "Rex", Species: "dog", Owner: "Ana", Contact: "555"})

	if err := s.AttachLookup(ctx, a.ID, nil); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := s.AttachLookup(ctx, a.ID, []byte("png")); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := s.AttachLookup(ctx, a.ID, []byte("png2")); !errors.Is(err, errs.ErrAlreadyBound) {
		t.Fatalf("expected ErrAlreadyBound, got %v", err)
	}
}
