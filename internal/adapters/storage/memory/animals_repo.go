package memory

import (
	"context"
	"sort"

	"clinic-records/internal/domain/animals"
	"clinic-records/internal/errs"
)

type animalRepo struct {
	st *Store
}

func NewAnimalRepo(st *Store) animals.Repository {
	return &animalRepo{st: st}
}

func (r *animalRepo) ResolveOrCreate(ctx context.Context, a animals.Animal) (animals.Animal, bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if id, ok := r.st.byKey[a.Key()]; ok {
		return clone(r.st.animals[id]), false, nil
	}

	r.st.lastAnimalID++
	a.ID = r.st.lastAnimalID
	a.LookupPNG = nil

	r.st.animals[a.ID] = a
	r.st.byKey[a.Key()] = a.ID
	return clone(a), true, nil
}

func (r *animalRepo) GetByID(ctx context.Context, id int64) (animals.Animal, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	a, ok := r.st.animals[id]
	if !ok {
		return animals.Animal{}, errs.ErrNotFound
	}
	return clone(a), nil
}

func (r *animalRepo) GetByKey(ctx context.Context, key animals.NaturalKey) (animals.Animal, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	id, ok := r.st.byKey[key]
	if !ok {
		return animals.Animal{}, errs.ErrNotFound
	}
	return clone(r.st.animals[id]), nil
}

func (r *animalRepo) List(ctx context.Context) ([]animals.Animal, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]animals.Animal, 0, len(r.st.animals))
	for _, a := range r.st.animals {
		out = append(out, clone(a))
	}

	// Orden por nombre y luego id, para que el listado de staff sea estable.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *animalRepo) UpdateProfile(ctx context.Context, a animals.Animal) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	current, ok := r.st.animals[a.ID]
	if !ok {
		return errs.ErrNotFound
	}
	current.Species = a.Species
	current.Contact = a.Contact
	current.UpdatedAt = a.UpdatedAt
	r.st.animals[a.ID] = current
	return nil
}

func (r *animalRepo) AttachLookup(ctx context.Context, id int64, png []byte) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	a, ok := r.st.animals[id]
	if !ok {
		return errs.ErrNotFound
	}
	if a.HasLookupArtifact() {
		return errs.ErrAlreadyBound
	}
	a.LookupPNG = append([]byte(nil), png...)
	r.st.animals[id] = a
	return nil
}

func (r *animalRepo) Delete(ctx context.Context, id int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	a, ok := r.st.animals[id]
	if !ok {
		return errs.ErrNotFound
	}

	// Cascade: primero el historial, después el animal.
	for eid, e := range r.st.entries {
		if e.AnimalID == id {
			delete(r.st.entries, eid)
		}
	}
	delete(r.st.byKey, a.Key())
	delete(r.st.animals, id)
	return nil
}

func clone(a animals.Animal) animals.Animal {
	if a.LookupPNG != nil {
		a.LookupPNG = append([]byte(nil), a.LookupPNG...)
	}
	return a
}
