package records

import (
	"clinic-records/internal/domain/animals"
	"clinic-records/internal/domain/history"
	"clinic-records/internal/domain/lookup"
)

// AnimalSummary es una fila del índice de staff.
type AnimalSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Species     string `json:"species"`
	Owner       string `json:"owner"`
	HasArtifact bool   `json:"has_artifact"`
}

// EntryView es una entrada del historial ya aplanada. En la vista pública ID va vacío.
type EntryView struct {
	ID   int64        `json:"id,omitempty"`
	Kind history.Kind `json:"kind"`
	Date string       `json:"date"`

	Diagnosis string `json:"diagnosis,omitempty"`
	Treatment string `json:"treatment,omitempty"`

	Vaccine string `json:"vaccine,omitempty"`
	DueDate string `json:"due_date,omitempty"`
}

// StaffView es la vista completa y editable.
type StaffView struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Owner   string `json:"owner"`
	Contact string `json:"contact"`

	LookupURL   string `json:"lookup_url"`
	HasArtifact bool   `json:"has_artifact"`

	CanEdit bool `json:"can_edit"`
	// Today es la fecha por defecto para el formulario de nueva entrada.
	Today string `json:"today"`

	History []EntryView `json:"history"`
}

// PublicView es la proyección de solo lectura que ve quien escanea el QR.
// Sin ids, sin controles de edición, sin datos de staff.
type PublicView struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Owner   string `json:"owner"`
	Contact string `json:"contact"`

	CanEdit bool `json:"can_edit"`

	History []EntryView `json:"history"`
}

func toSummary(a animals.Animal) AnimalSummary {
	return AnimalSummary{
		ID:          a.ID,
		Name:        a.Name,
		Species:     a.Species,
		Owner:       a.Owner,
		HasArtifact: a.HasLookupArtifact(),
	}
}

func (s *Service) toStaffView(a animals.Animal, entries []history.Entry) StaffView {
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, toStaffEntry(e))
	}
	return StaffView{
		ID:          a.ID,
		Name:        a.Name,
		Species:     a.Species,
		Owner:       a.Owner,
		Contact:     a.Contact,
		LookupURL:   lookup.Payload(s.baseURL, a.ID),
		HasArtifact: a.HasLookupArtifact(),
		CanEdit:     true,
		Today:       s.now().Format(history.DateLayout),
		History:     out,
	}
}

func toPublicView(a animals.Animal, entries []history.Entry) PublicView {
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryView(e))
	}
	return PublicView{
		Name:    a.Name,
		Species: a.Species,
		Owner:   a.Owner,
		Contact: a.Contact,
		CanEdit: false,
		History: out,
	}
}

func toEntryView(e history.Entry) EntryView {
	v := EntryView{
		Kind: e.Kind,
		Date: e.Date.Format(history.DateLayout),
	}
	if t := e.Treatment; t != nil {
		v.Diagnosis = t.Diagnosis
		v.Treatment = t.Description
	}
	if vac := e.Vaccination; vac != nil {
		v.Vaccine = vac.Vaccine
		if vac.DueDate != nil {
			v.DueDate = vac.DueDate.Format(history.DateLayout)
		}
	}
	return v
}

// toStaffEntry es la entrada con id, como la ven los endpoints de staff.
func toStaffEntry(e history.Entry) EntryView {
	v := toEntryView(e)
	v.ID = e.ID
	return v
}
