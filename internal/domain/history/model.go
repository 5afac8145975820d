package history

import "time"

// Treatment es el detalle de una entrada de tratamiento.
type Treatment struct {
	Diagnosis   string
	Description string
}

// Vaccination es el detalle de una entrada de vacunación.
type Vaccination struct {
	Vaccine string
	DueDate *time.Time
}

// Entry es un evento clínico de un animal. Exactamente uno de Treatment /
// Vaccination viene seteado, según Kind.
type Entry struct {
	ID       int64
	AnimalID int64
	Kind     Kind

	// Date es la fecha del evento (medianoche UTC).
	Date time.Time

	Treatment   *Treatment
	Vaccination *Vaccination

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Less define el orden del ledger: fecha desc, y en empate la inserción más nueva primero.
func Less(a, b Entry) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID > b.ID
}
