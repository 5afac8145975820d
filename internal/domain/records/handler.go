package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clinic-records/internal/domain/animals"
	"clinic-records/internal/domain/history"
	"clinic-records/internal/errs"
	"clinic-records/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Staff
	r.Route("/animals", func(ar chi.Router) {
		ar.Get("/", listAnimalsHandler(svc))
		ar.Post("/", addAnimalHandler(svc))

		ar.Route("/{animalID}", func(one chi.Router) {
			one.Get("/", staffViewHandler(svc))
			one.Patch("/", updateProfileHandler(svc))
			one.Delete("/", deleteAnimalHandler(svc))

			one.Post("/token", bindTokenHandler(svc))
			one.Get("/qr.png", staffArtifactHandler(svc))

			one.Post("/history", appendEntryHandler(svc))
			one.Put("/history/{entryID}", updateEntryHandler(svc))
			one.Delete("/history/{entryID}", deleteEntryHandler(svc))
		})
	})
	r.Post("/scan", scanHandler(svc))

	// Público: solo lectura, solo por id
	r.Get("/public/animal/{id}", publicViewHandler(svc))
	r.Get("/public/animal/{id}/qr.png", publicArtifactHandler(svc))
}

type addAnimalRequest struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Owner   string `json:"owner"`
	Contact string `json:"contact"`
}

type addAnimalResponse struct {
	Created bool      `json:"created"`
	Animal  StaffView `json:"animal"`
}

type updateProfileRequest struct {
	// Punteros para PATCH real: nil = no tocar. name/owner no se aceptan.
	Species *string `json:"species"`
	Contact *string `json:"contact"`
}

type entryRequest struct {
	Kind history.Kind `json:"kind"`
	Date string       `json:"date"` // YYYY-MM-DD

	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`

	Vaccine string `json:"vaccine"`
	DueDate string `json:"due_date"` // YYYY-MM-DD opcional
}

type scanRequest struct {
	Payload string `json:"payload"`
}

// listAnimalsHandler godoc
// @Summary Listar animales
// @Description Índice de staff con todos los animales, ordenado por nombre. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>`.
// @Tags animals
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Success 200 {array} AnimalSummary
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "storage unavailable"
// @Router /animals [get]
func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := svc.ListAnimals(r.Context(), staff)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// addAnimalHandler godoc
// @Summary Registrar animal
// @Description Crea el animal y le asocia su QR. Si la pareja (name, owner) ya existe no crea nada: responde 303 con Location al registro existente.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param payload body addAnimalRequest true "Datos del animal; los cuatro campos son obligatorios"
// @Success 201 {object} addAnimalResponse
// @Success 303 {object} addAnimalResponse "ya existía"
// @Failure 400 {string} string "invalid json / campos vacíos"
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "storage unavailable"
// @Router /animals [post]
func addAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req addAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.AddAnimal(r.Context(), staff, animals.CreateInput{
			Name:    req.Name,
			Species: req.Species,
			Owner:   req.Owner,
			Contact: req.Contact,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		view, err := svc.StaffView(r.Context(), staff, res.Animal.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		out := addAnimalResponse{Created: res.Created, Animal: view}
		if !res.Created {
			w.Header().Set("Location", "/animals/"+strconv.FormatInt(res.Animal.ID, 10))
			writeJSON(w, http.StatusSeeOther, out)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// staffViewHandler godoc
// @Summary Ver registro completo
// @Description Vista de staff: datos del animal, URL pública, historial con ids y fecha de hoy para el formulario.
// @Tags animals
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param animalID path int true "ID del animal"
// @Success 200 {object} StaffView
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /animals/{animalID} [get]
func staffViewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r, "animalID")
		if !ok {
			return
		}

		view, err := svc.StaffView(r.Context(), staff, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// updateProfileHandler godoc
// @Summary Editar especie / contacto
// @Description PATCH parcial. name y owner forman la clave natural y no se pueden cambiar.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param animalID path int true "ID del animal"
// @Param payload body updateProfileRequest true "Campos a cambiar"
// @Success 200 {object} StaffView
// @Failure 400 {string} string "invalid json / campo vacío"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /animals/{animalID} [patch]
func updateProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r, "animalID")
		if !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateProfileRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		view, err := svc.UpdateProfile(r.Context(), staff, id, animals.UpdateProfileInput{
			Species: req.Species,
			Contact: req.Contact,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// deleteAnimalHandler godoc
// @Summary Borrar animal
// @Description Borra el animal y todo su historial. La URL pública pasa a responder 404.
// @Tags animals
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param animalID path int true "ID del animal"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /animals/{animalID} [delete]
func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r, "animalID")
		if !ok {
			return
		}

		if err := svc.DeleteAnimal(r.Context(), staff, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// bindTokenHandler godoc
// @Summary Asociar QR (reintento)
// @Description Genera y guarda el QR si el animal no lo tiene. Si ya lo tiene no lo regenera.
// @Tags animals
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param animalID path int true "ID del animal"
// @Success 200 {object} StaffView
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /animals/{animalID}/token [post]
func bindTokenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r, "animalID")
		if !ok {
			return
		}

		if _, err := svc.BindToken(r.Context(), staff, id); err != nil {
			writeError(w, err)
			return
		}

		view, err := svc.StaffView(r.Context(), staff, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// staffArtifactHandler godoc
// @Summary Descargar QR
// @Tags animals
// @Produce png
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param animalID path int true "ID del animal"
// @Success 200 {file} binary
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found / sin QR"
// @Router /animals/{animalID}/qr.png [get]
func staffArtifactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r, "animalID")
		if !ok {
			return
		}

		png, err := svc.Artifact(r.Context(), staff, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writePNG(w, png, "private, max-age=3600")
	}
}

// appendEntryHandler godoc
// @Summary Agregar entrada de historial
// @Description kind=treatment requiere diagnosis y treatment. kind=vaccination requiere vaccine; due_date es opcional y no puede ser anterior a date.
// @Tags history
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param animalID path int true "ID del animal"
// @Param payload body entryRequest true "Entrada; fechas YYYY-MM-DD"
// @Success 201 {object} EntryView
// @Failure 400 {string} string "invalid json / campos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /animals/{animalID}/history [post]
func appendEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r, "animalID")
		if !ok {
			return
		}

		in, ok := decodeEntry(w, r)
		if !ok {
			return
		}

		e, err := svc.AppendEntry(r.Context(), staff, id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toStaffEntry(e))
	}
}

// updateEntryHandler godoc
// @Summary Editar entrada de historial
// @Description Reescribe fecha y detalle. El kind no cambia: si se envía y no coincide, 400.
// @Tags history
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param animalID path int true "ID del animal"
// @Param entryID path int true "ID de la entrada"
// @Param payload body entryRequest true "Entrada; fechas YYYY-MM-DD"
// @Success 200 {object} EntryView
// @Failure 400 {string} string "invalid json / campos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /animals/{animalID}/history/{entryID} [put]
func updateEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}
		animalID, ok := pathID(w, r, "animalID")
		if !ok {
			return
		}
		entryID, ok := pathID(w, r, "entryID")
		if !ok {
			return
		}

		in, ok := decodeEntry(w, r)
		if !ok {
			return
		}

		e, err := svc.UpdateEntry(r.Context(), staff, animalID, entryID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStaffEntry(e))
	}
}

// deleteEntryHandler godoc
// @Summary Borrar entrada de historial
// @Tags history
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param animalID path int true "ID del animal"
// @Param entryID path int true "ID de la entrada"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /animals/{animalID}/history/{entryID} [delete]
func deleteEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}
		animalID, ok := pathID(w, r, "animalID")
		if !ok {
			return
		}
		entryID, ok := pathID(w, r, "entryID")
		if !ok {
			return
		}

		if err := svc.DeleteEntry(r.Context(), staff, animalID, entryID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// scanHandler godoc
// @Summary Resolver un QR escaneado
// @Description Recibe el texto leído del QR y devuelve la vista de staff del animal. Solo acepta URLs emitidas con la base configurada.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token de staff"
// @Param payload body scanRequest true "Texto del QR"
// @Success 200 {object} StaffView
// @Failure 400 {string} string "payload inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /scan [post]
func scanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req scanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		view, err := svc.ResolveScan(r.Context(), staff, req.Payload)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// publicViewHandler godoc
// @Summary Ficha pública del animal
// @Description Vista de solo lectura a la que apunta el QR. Cualquier error responde 404.
// @Tags public
// @Produce json
// @Param id path int true "ID del animal"
// @Success 200 {object} PublicView
// @Failure 404 {string} string "not found"
// @Router /public/animal/{id} [get]
func publicViewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		view, err := svc.PublicView(r.Context(), id)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// publicArtifactHandler godoc
// @Summary QR público del animal
// @Tags public
// @Produce png
// @Param id path int true "ID del animal"
// @Success 200 {file} binary
// @Failure 404 {string} string "not found"
// @Router /public/animal/{id}/qr.png [get]
func publicArtifactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		png, err := svc.PublicArtifact(r.Context(), id)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writePNG(w, png, "public, max-age=86400")
	}
}

// requireClaims corta con 401 si no hay identidad. Devuelve la capacidad de staff
// que después se pasa explícita al servicio.
func requireClaims(w http.ResponseWriter, r *http.Request) (bool, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false, false
	}
	return claims.IsStaff(), true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func decodeEntry(w http.ResponseWriter, r *http.Request) (history.Input, bool) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return history.Input{}, false
	}

	date, err := history.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return history.Input{}, false
	}

	var due *time.Time
	if strings.TrimSpace(req.DueDate) != "" {
		d, err := history.ParseDate(req.DueDate)
		if err != nil {
			http.Error(w, "due_date must be YYYY-MM-DD", http.StatusBadRequest)
			return history.Input{}, false
		}
		due = &d
	}

	return history.Input{
		Kind:        req.Kind,
		Date:        date,
		Diagnosis:   req.Diagnosis,
		Description: req.Treatment,
		Vaccine:     req.Vaccine,
		DueDate:     due,
	}, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, errs.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, errs.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, errs.ErrAlreadyBound), errors.Is(err, errs.ErrConflict):
		http.Error(w, "conflict", http.StatusConflict)
	case errors.Is(err, errs.ErrStorageUnavailable):
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writePNG(w http.ResponseWriter, png []byte, cacheControl string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
