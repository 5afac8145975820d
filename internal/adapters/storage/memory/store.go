package memory

import (
	"sync"

	"clinic-records/internal/domain/animals"
	"clinic-records/internal/domain/history"
)

// Store es el "DB" in-memory compartido por los repos.
// Un solo lock para que el cascade y el chequeo de FK sean atómicos, igual que en Postgres.
type Store struct {
	mu sync.RWMutex

	animals map[int64]animals.Animal
	byKey   map[animals.NaturalKey]int64
	entries map[int64]history.Entry

	lastAnimalID int64
	lastEntryID  int64
}

func NewStore() *Store {
	return &Store{
		animals: make(map[int64]animals.Animal),
		byKey:   make(map[animals.NaturalKey]int64),
		entries: make(map[int64]history.Entry),
	}
}
