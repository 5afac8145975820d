package history

// Kind discrimina la variante de la entrada clínica.
type Kind string

const (
	KindTreatment   Kind = "treatment"
	KindVaccination Kind = "vaccination"
)

func (k Kind) Valid() bool {
	switch k {
	case KindTreatment, KindVaccination:
		return true
	default:
		return false
	}
}

// DateLayout es el formato de fecha clínica (sin hora).
const DateLayout = "2006-01-02"
