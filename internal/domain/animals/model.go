package animals

import "time"

// Animal representa un paciente de la clínica.
// (Name, Owner) es la clave natural usada para deduplicar altas.
type Animal struct {
	ID int64

	Name    string
	Species string
	Owner   string
	Contact string

	// LookupPNG es el QR ya codificado (PNG). Se asocia una sola vez, justo después del alta.
	LookupPNG []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasLookupArtifact indica si el QR ya quedó asociado.
func (a Animal) HasLookupArtifact() bool {
	return len(a.LookupPNG) > 0
}

// NaturalKey es el par (nombre, dueño) ya normalizado.
type NaturalKey struct {
	Name  string
	Owner string
}

func (a Animal) Key() NaturalKey {
	return NaturalKey{Name: a.Name, Owner: a.Owner}
}
