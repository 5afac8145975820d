package records

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"sync"
	"testing"
	"time"

	"clinic-records/internal/adapters/storage/memory"
	"clinic-records/internal/domain/animals"
	"clinic-records/internal/domain/history"
	"clinic-records/internal/domain/lookup"
	"clinic-records/internal/errs"
	"clinic-records/internal/platform/metrics"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testBase = "http://clinic.test"

type fixture struct {
	svc     *Service
	animals animals.Repository
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := memory.NewStore()
	animalRepo := memory.NewAnimalRepo(st)
	animalsSvc := animals.NewService(animalRepo)
	m := metrics.New()

	svc := NewService(
		animalsSvc,
		history.NewService(memory.NewHistoryRepo(st)),
		lookup.NewBinder(animalsSvc),
		Options{BaseURL: testBase, Metrics: m},
	)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, animals: animalRepo, metrics: m}
}

func decodeQR(t *testing.T, raw []byte) string {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	res, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return res.GetText()
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := history.ParseDate(s)
	require.NoError(t, err)
	return d
}

func rexInput() animals.CreateInput {
	return animals.CreateInput{Name: "Rex", Species: "Dog", Owner: "Alice", Contact: "555-1111"}
}

func TestRexScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.AddAnimal(ctx, true, rexInput())
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, int64(1), res.Animal.ID)
	require.True(t, res.Animal.HasLookupArtifact())
	require.Equal(t, testBase+"/public/animal/1", decodeQR(t, res.Animal.LookupPNG))

	tr, err := f.svc.AppendEntry(ctx, true, 1, history.Input{
		Kind: history.KindTreatment, Date: day(t, "2024-03-01"), Diagnosis: "Flea bite", Description: "Topical",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), tr.ID)

	due := day(t, "2025-03-02")
	vac, err := f.svc.AppendEntry(ctx, true, 1, history.Input{
		Kind: history.KindVaccination, Date: day(t, "2024-03-02"), Vaccine: "Rabies", DueDate: &due,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), vac.ID)

	staff, err := f.svc.StaffView(ctx, true, 1)
	require.NoError(t, err)
	require.Len(t, staff.History, 2)
	assert.Equal(t, int64(2), staff.History[0].ID)
	assert.Equal(t, history.KindVaccination, staff.History[0].Kind)
	assert.Equal(t, "2025-03-02", staff.History[0].DueDate)
	assert.Equal(t, int64(1), staff.History[1].ID)
	assert.True(t, staff.CanEdit)
	assert.Equal(t, "2024-03-05", staff.Today)
	assert.Equal(t, testBase+"/public/animal/1", staff.LookupURL)

	pub, err := f.svc.PublicView(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Rex", pub.Name)
	assert.False(t, pub.CanEdit)
	require.Len(t, pub.History, 2)
	assert.Equal(t, "Rabies", pub.History[0].Vaccine)
	assert.Equal(t, "Flea bite", pub.History[1].Diagnosis)
	for _, e := range pub.History {
		assert.Zero(t, e.ID)
	}

	require.NoError(t, f.svc.DeleteAnimal(ctx, true, 1))
	_, err = f.svc.PublicView(ctx, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AnimalsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PublicLookups.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PublicLookups.WithLabelValues("not_found")))
}

func TestAddAnimal_TwiceYieldsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.AddAnimal(ctx, true, rexInput())
	require.NoError(t, err)

	in := rexInput()
	in.Name = "  Rex  "
	in.Contact = "999"
	second, err := f.svc.AddAnimal(ctx, true, in)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Animal.ID, second.Animal.ID)
	assert.Equal(t, "555-1111", second.Animal.Contact)
	assert.Equal(t, first.Animal.LookupPNG, second.Animal.LookupPNG)

	list, err := f.svc.ListAnimals(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AnimalsDeduped))
}

func TestAddAnimal_ConcurrentSamePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]AddResult, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.AddAnimal(ctx, true, rexInput())
			if err == nil {
				results[i] = res
			}
		}()
	}
	wg.Wait()

	created := 0
	for _, r := range results {
		assert.Equal(t, int64(1), r.Animal.ID)
		assert.True(t, r.Animal.HasLookupArtifact())
		if r.Created {
			created++
		}
	}
	assert.Equal(t, 1, created)

	list, err := f.svc.ListAnimals(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddAnimal_InvalidInputTouchesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddAnimal(context.Background(), true, animals.CreateInput{Name: "Rex", Species: "Dog", Owner: " ", Contact: "1"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	list, err := f.svc.ListAnimals(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddAnimal_DedupRetriesMissingBind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// animal comprometido sin QR (bind anterior fallido)
	a, _, err := f.animals.ResolveOrCreate(ctx, animals.Animal{Name: "Rex", Species: "Dog", Owner: "Alice", Contact: "555-1111"})
	require.NoError(t, err)
	require.False(t, a.HasLookupArtifact())

	res, err := f.svc.AddAnimal(ctx, true, rexInput())
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, a.ID, res.Animal.ID)
	require.True(t, res.Animal.HasLookupArtifact())
	assert.Equal(t, testBase+"/public/animal/1", decodeQR(t, res.Animal.LookupPNG))
}

func TestBindToken_NeverRegenerates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.AddAnimal(ctx, true, rexInput())
	require.NoError(t, err)
	original := res.Animal.LookupPNG

	// cambiar la base no altera el QR ya asociado
	f.svc.baseURL = "http://other.test"
	again, err := f.svc.BindToken(ctx, true, res.Animal.ID)
	require.NoError(t, err)
	assert.Equal(t, original, again.LookupPNG)

	_, err = f.svc.BindToken(ctx, true, 99)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStaffOperationsRequireStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.AddAnimal(ctx, true, rexInput())
	require.NoError(t, err)
	id := res.Animal.ID

	_, err = f.svc.AddAnimal(ctx, false, rexInput())
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.ListAnimals(ctx, false)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.StaffView(ctx, false, id)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.AppendEntry(ctx, false, id, history.Input{Kind: history.KindVaccination, Date: day(t, "2024-01-01"), Vaccine: "x"})
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.UpdateEntry(ctx, false, id, 1, history.Input{})
	assert.ErrorIs(t, err, errs.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteEntry(ctx, false, id, 1), errs.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteAnimal(ctx, false, id), errs.ErrForbidden)
	_, err = f.svc.BindToken(ctx, false, id)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.Artifact(ctx, false, id)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.ResolveScan(ctx, false, testBase+"/public/animal/1")
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.UpdateProfile(ctx, false, id, animals.UpdateProfileInput{})
	assert.ErrorIs(t, err, errs.ErrForbidden)

	// nada cambió
	view, err := f.svc.StaffView(ctx, true, id)
	require.NoError(t, err)
	assert.Empty(t, view.History)
}

func TestHistory_SameDateNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.svc.AddAnimal(ctx, true, rexInput())

	_, err := f.svc.AppendEntry(ctx, true, res.Animal.ID, history.Input{Kind: history.KindTreatment, Date: day(t, "2024-01-01"), Diagnosis: "d", Description: "t"})
	require.NoError(t, err)
	_, err = f.svc.AppendEntry(ctx, true, res.Animal.ID, history.Input{Kind: history.KindVaccination, Date: day(t, "2024-01-01"), Vaccine: "v"})
	require.NoError(t, err)

	view, err := f.svc.StaffView(ctx, true, res.Animal.ID)
	require.NoError(t, err)
	require.Len(t, view.History, 2)
	assert.Equal(t, history.KindVaccination, view.History[0].Kind)
	assert.Equal(t, history.KindTreatment, view.History[1].Kind)
}

func TestUpdateEntry_OnlyTargetChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.svc.AddAnimal(ctx, true, rexInput())
	id := res.Animal.ID

	e1, _ := f.svc.AppendEntry(ctx, true, id, history.Input{Kind: history.KindTreatment, Date: day(t, "2024-01-01"), Diagnosis: "a", Description: "b"})
	e2, _ := f.svc.AppendEntry(ctx, true, id, history.Input{Kind: history.KindTreatment, Date: day(t, "2024-02-01"), Diagnosis: "c", Description: "d"})

	before, err := f.svc.StaffView(ctx, true, id)
	require.NoError(t, err)

	_, err = f.svc.UpdateEntry(ctx, true, id, e1.ID, history.Input{Date: day(t, "2024-01-03"), Diagnosis: "a2", Description: "b2"})
	require.NoError(t, err)

	after, err := f.svc.StaffView(ctx, true, id)
	require.NoError(t, err)
	require.Len(t, after.History, 2)

	// e2 (la más reciente) idéntica
	assert.Equal(t, before.History[0], after.History[0])
	assert.Equal(t, e2.ID, after.History[0].ID)
	assert.Equal(t, "a2", after.History[1].Diagnosis)
	assert.Equal(t, "2024-01-03", after.History[1].Date)
}

func TestEntryMustBelongToAnimal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rex, _ := f.svc.AddAnimal(ctx, true, rexInput())
	luna, _ := f.svc.AddAnimal(ctx, true, animals.CreateInput{Name: "Luna", Species: "Cat", Owner: "Bea", Contact: "1"})

	e, err := f.svc.AppendEntry(ctx, true, rex.Animal.ID, history.Input{Kind: history.KindVaccination, Date: day(t, "2024-01-01"), Vaccine: "v"})
	require.NoError(t, err)

	_, err = f.svc.UpdateEntry(ctx, true, luna.Animal.ID, e.ID, history.Input{Date: day(t, "2024-01-02"), Vaccine: "w"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteEntry(ctx, true, luna.Animal.ID, e.ID), errs.ErrNotFound)

	require.NoError(t, f.svc.DeleteEntry(ctx, true, rex.Animal.ID, e.ID))
	assert.ErrorIs(t, f.svc.DeleteEntry(ctx, true, rex.Animal.ID, e.ID), errs.ErrNotFound)
}

func TestDeleteAnimal_HistoryGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.svc.AddAnimal(ctx, true, rexInput())
	id := res.Animal.ID

	e, err := f.svc.AppendEntry(ctx, true, id, history.Input{Kind: history.KindVaccination, Date: day(t, "2024-01-01"), Vaccine: "v"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAnimal(ctx, true, id))

	_, err = f.svc.history.List(ctx, id)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = f.svc.history.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = f.svc.PublicArtifact(ctx, id)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteAnimal(ctx, true, id), errs.ErrNotFound)
}

func TestPublicView_CollapsesErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []int64{0, -1, 42} {
		_, err := f.svc.PublicView(ctx, id)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	}
}

// brokenHistory simula una caída del storage al leer el historial.
type brokenHistory struct {
	history.Repository
}

func (brokenHistory) ListByAnimal(ctx context.Context, animalID int64) ([]history.Entry, error) {
	return nil, fmt.Errorf("%w: connection reset", errs.ErrStorageUnavailable)
}

func TestPublicView_StorageFailureIsNotFound(t *testing.T) {
	st := memory.NewStore()
	animalsSvc := animals.NewService(memory.NewAnimalRepo(st))
	m := metrics.New()
	core, logs := observer.New(zapcore.WarnLevel)

	svc := NewService(
		animalsSvc,
		history.NewService(brokenHistory{memory.NewHistoryRepo(st)}),
		lookup.NewBinder(animalsSvc),
		Options{BaseURL: testBase, Metrics: m, Logger: zap.New(core)},
	)
	ctx := context.Background()

	res, err := svc.AddAnimal(ctx, true, rexInput())
	require.NoError(t, err)

	_, err = svc.PublicView(ctx, res.Animal.ID)
	require.Equal(t, errs.ErrNotFound, err)
	assert.False(t, errors.Is(err, errs.ErrStorageUnavailable))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublicLookups.WithLabelValues("not_found")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PublicLookups.WithLabelValues("found")))

	warned := logs.FilterMessage("public lookup failed").All()
	require.Len(t, warned, 1)
	assert.Equal(t, res.Animal.ID, warned[0].ContextMap()["animal_id"])

	// la vista de staff sí ve la causa real
	_, err = svc.StaffView(ctx, true, res.Animal.ID)
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
}

// unreachableFinder hace fallar cada Bind antes de generar el QR.
type unreachableFinder struct{}

func (unreachableFinder) GetByID(ctx context.Context, id int64) (animals.Animal, error) {
	return animals.Animal{}, fmt.Errorf("%w: timeout", errs.ErrStorageUnavailable)
}

func TestAddAnimal_BindFailureKeepsAnimalUntokened(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	working := f.svc.binder
	f.svc.binder = lookup.NewBinder(unreachableFinder{})
	bindErrors := f.metrics.TokenBinds.WithLabelValues("error")

	res, err := f.svc.AddAnimal(ctx, true, rexInput())
	require.NoError(t, err)
	require.True(t, res.Created)
	assert.False(t, res.Animal.HasLookupArtifact())
	assert.Equal(t, 1.0, testutil.ToFloat64(bindErrors))

	stored, err := f.animals.GetByID(ctx, res.Animal.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasLookupArtifact())

	// reintentar el alta no crea otro animal
	again, err := f.svc.AddAnimal(ctx, true, rexInput())
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Animal.ID, again.Animal.ID)
	assert.Equal(t, 2.0, testutil.ToFloat64(bindErrors))

	list, err := f.svc.ListAnimals(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// recuperación: BindToken con el binder sano
	f.svc.binder = working
	bound, err := f.svc.BindToken(ctx, true, res.Animal.ID)
	require.NoError(t, err)
	require.True(t, bound.HasLookupArtifact())
	assert.Equal(t, testBase+"/public/animal/1", decodeQR(t, bound.LookupPNG))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TokenBinds.WithLabelValues("ok")))
}

func TestResolveScan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.svc.AddAnimal(ctx, true, rexInput())

	payload := decodeQR(t, res.Animal.LookupPNG)
	view, err := f.svc.ResolveScan(ctx, true, payload)
	require.NoError(t, err)
	assert.Equal(t, "Rex", view.Name)

	_, err = f.svc.ResolveScan(ctx, true, "http://evil.test/public/animal/1")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = f.svc.ResolveScan(ctx, true, testBase+"/public/animal/77")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateProfile_KeepsIdentityAndToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.svc.AddAnimal(ctx, true, rexInput())

	contact := "555-2222"
	view, err := f.svc.UpdateProfile(ctx, true, res.Animal.ID, animals.UpdateProfileInput{Contact: &contact})
	require.NoError(t, err)
	assert.Equal(t, "555-2222", view.Contact)
	assert.Equal(t, "Rex", view.Name)
	assert.True(t, view.HasArtifact)

	png, err := f.svc.Artifact(ctx, true, res.Animal.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Animal.LookupPNG, png)

	// la clave natural sigue resolviendo al mismo registro
	again, err := f.svc.AddAnimal(ctx, true, rexInput())
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Animal.ID, again.Animal.ID)
}
