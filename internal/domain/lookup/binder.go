// Package lookup genera y valida el token público de un animal: la URL
// {base}/public/animal/{id} codificada como QR.
package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"clinic-records/internal/domain/animals"
	"clinic-records/internal/errs"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	PublicPathPrefix = "/public/animal/"

	defaultSize = 256
)

// AnimalFinder es lo único que el binder necesita del módulo de animales.
type AnimalFinder interface {
	GetByID(ctx context.Context, id int64) (animals.Animal, error)
}

type Binder struct {
	animals AnimalFinder
	size    int
	level   qrcode.RecoveryLevel
}

func NewBinder(finder AnimalFinder) *Binder {
	return &Binder{
		animals: finder,
		size:    defaultSize,
		level:   qrcode.Medium,
	}
}

// Payload es determinístico: mismo id + misma base => misma URL.
func Payload(baseURL string, animalID int64) string {
	return strings.TrimRight(baseURL, "/") + PublicPathPrefix + strconv.FormatInt(animalID, 10)
}

// Bind construye el payload y lo codifica como PNG en memoria.
// No persiste nada: el llamador guarda los bytes junto al animal.
func (b *Binder) Bind(ctx context.Context, animalID int64, baseURL string) ([]byte, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errs.ErrInvalidInput
	}
	if _, err := b.animals.GetByID(ctx, animalID); err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(Payload(baseURL, animalID), b.level, b.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// ParsePayload hace el camino inverso (lo que lee el escáner).
// Solo acepta payloads emitidos bajo nuestra base.
func ParsePayload(baseURL, payload string) (int64, error) {
	prefix := strings.TrimRight(baseURL, "/") + PublicPathPrefix
	payload = strings.TrimSpace(payload)

	if !strings.HasPrefix(payload, prefix) {
		return 0, errs.ErrInvalidInput
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(payload, prefix), "/")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.ErrInvalidInput
	}
	// Solo la forma canónica que emite Payload: sin signo ni ceros a la izquierda.
	if raw != strconv.FormatInt(id, 10) {
		return 0, errs.ErrInvalidInput
	}
	return id, nil
}

// NormalizeBaseURL valida la base configurada (http/https absoluta) y le quita la barra final.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base url: missing host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("invalid base url: query/fragment not allowed")
	}
	return strings.TrimRight(raw, "/"), nil
}
