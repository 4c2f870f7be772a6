package pets

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pets-api/internal/platform/logger"
	"pets-api/internal/platform/pagination"
)

func RegisterRoutes(r chi.Router, svc *Service, pager pagination.Config, log logger.Logger) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc, pager, log))
		pr.Post("/", createPetHandler(svc, log))

		pr.Get("/{petID}", getPetHandler(svc, log))
		pr.Patch("/{petID}", patchPetHandler(svc, log))
		pr.Delete("/{petID}", deletePetHandler(svc, log))
	})
}

type groupPayload struct {
	ScientificName string `json:"scientific_name" example:"Canis lupus familiaris"`
}

type traitPayload struct {
	Name string `json:"name" example:"friendly"`
}

type createPetRequest struct {
	Name   string         `json:"name" example:"Milo"`
	Age    *int           `json:"age" example:"3"`
	Weight *float64       `json:"weight" example:"12.5"`
	Sex    string         `json:"sex" example:"Male"` // Male | Female | Not Informed (default)
	Group  *groupPayload  `json:"group"`
	Traits []traitPayload `json:"traits"`
}

type patchPetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name   *string        `json:"name"`
	Age    *int           `json:"age"`
	Weight *float64       `json:"weight"`
	Sex    *string        `json:"sex"`
	Group  *groupPayload  `json:"group"`
	Traits []traitPayload `json:"traits"`
}

type groupResponse struct {
	ID             string    `json:"id"`
	ScientificName string    `json:"scientific_name"`
	CreatedAt      time.Time `json:"created_at"`
}

type traitResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type petResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Age       int             `json:"age"`
	Weight    float64         `json:"weight"`
	Sex       Sex             `json:"sex"`
	Group     *groupResponse  `json:"group"`
	Traits    []traitResponse `json:"traits"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Lista paginada de mascotas ordenada por fecha de alta. Con `trait` devuelve sólo las mascotas que tienen ese trait (sin distinguir mayúsculas).
// @Tags pets
// @Produce json
// @Param trait query string false "Nombre de trait"
// @Param page query int false "Página (desde 1)"
// @Param page_size query int false "Tamaño de página (máximo configurable)"
// @Success 200 {object} petPage
// @Failure 404 {object} errorResponse "invalid page"
// @Router /pets [get]
func listPetsHandler(svc *Service, pager pagination.Config, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pager.FromQuery(r.URL.Query())
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		items, total, err := svc.List(r.Context(), r.URL.Query().Get("trait"), params)
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}

		writeJSON(w, http.StatusOK, pagination.NewPage(r, params, total, out))
	}
}

// petPage existe sólo para la documentación swagger.
type petPage = pagination.Page[petResponse]

// createPetHandler godoc
// @Summary Crear mascota
// @Description Crea una mascota. El grupo y los traits se buscan por nombre sin distinguir mayúsculas y se crean si no existen.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} petResponse
// @Failure 400 {object} map[string][]string "errores por campo"
// @Failure 409 {object} errorResponse "conflicto de nombre único"
// @Router /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			writeError(w, r, log, err)
			return
		}

		in := CreateInput{
			Name:   req.Name,
			Age:    req.Age,
			Weight: req.Weight,
			Sex:    req.Sex,
			Traits: toTraitInputs(req.Traits),
		}
		if req.Group != nil {
			in.Group = &GroupInput{ScientificName: req.Group.ScientificName}
		}

		p, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {object} errorResponse "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// patchPetHandler godoc
// @Summary Actualizar mascota (parcial)
// @Description Sólo se aplican los campos enviados. Si se envía `traits`, la mascota queda asociada únicamente al último trait de la lista.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body patchPetRequest true "Campos a modificar"
// @Success 200 {object} petResponse
// @Failure 400 {object} map[string][]string "errores por campo"
// @Failure 404 {object} errorResponse "pet not found"
// @Failure 409 {object} errorResponse "conflicto de nombre único"
// @Router /pets/{petID} [patch]
func patchPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patchPetRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			writeError(w, r, log, err)
			return
		}

		in := PatchInput{
			Name:   req.Name,
			Age:    req.Age,
			Weight: req.Weight,
			Sex:    req.Sex,
			Traits: toTraitInputs(req.Traits),
		}
		if req.Group != nil {
			in.Group = &GroupInput{ScientificName: req.Group.ScientificName}
		}

		p, err := svc.Patch(r.Context(), chi.URLParam(r, "petID"), in)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Tags pets
// @Param petID path string true "ID de la mascota"
// @Success 204
// @Failure 404 {object} errorResponse "pet not found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID")); err != nil {
			writeError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// errInvalidJSON: el body no es JSON válido.
var errInvalidJSON = errors.New("invalid json")

// decodeJSON convierte errores de tipo en ValidationError por campo.
func decodeJSON(body io.Reader, v any) error {
	err := json.NewDecoder(body).Decode(v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		ve := &ValidationError{}
		ve.Add(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
		return ve
	}
	return errInvalidJSON
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		fields := make(map[string][]string, len(ve.Fields))
		for k, msg := range ve.Fields {
			fields[k] = []string{msg}
		}
		writeJSON(w, http.StatusBadRequest, fields)
	case errors.Is(err, errInvalidJSON):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid json"})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "pet not found"})
	case errors.Is(err, pagination.ErrInvalidPage):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "invalid page"})
	case errors.Is(err, ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Detail: err.Error()})
	default:
		log.Error("request failed", map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": chimw.GetReqID(r.Context()),
			"error":      err,
		})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal error"})
	}
}

func toTraitInputs(in []traitPayload) []TraitInput {
	if in == nil {
		return nil
	}
	out := make([]TraitInput, 0, len(in))
	for _, t := range in {
		out = append(out, TraitInput{Name: strings.TrimSpace(t.Name)})
	}
	return out
}

func toPetResponse(p Pet) petResponse {
	out := petResponse{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Weight:    p.Weight,
		Sex:       p.Sex,
		Traits:    make([]traitResponse, 0, len(p.Traits)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Group != nil {
		out.Group = &groupResponse{
			ID:             p.Group.ID,
			ScientificName: p.Group.ScientificName,
			CreatedAt:      p.Group.CreatedAt,
		}
	}
	for _, t := range p.Traits {
		out.Traits = append(out.Traits, traitResponse{
			ID:        t.ID,
			Name:      t.Name,
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
