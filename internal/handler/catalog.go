package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

func (h *Handler) GetAllClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.repository.GetAllClasses()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "classes fetched", classes)
}

func (h *Handler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year    int32   `json:"year" validate:"required,gte=1,lte=5"`
		Section string  `json:"section" validate:"required,alpha,uppercase"`
		Track   *string `json:"track"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	class := &domain.Class{
		Year:    req.Year,
		Section: req.Section,
		Track:   req.Track,
	}

	if err := h.repository.CreateClass(class); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "classes_year_section_track_key":
			h.badRequest(w, r, errors.New("class already exists"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "class created", class)
}

func (h *Handler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid class ID")
		return
	}

	if err := h.repository.DeleteClass(id); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == "23503":
			h.badRequest(w, r, errors.New("the class is still referenced by timetable slots"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "class deleted", nil)
}

func (h *Handler) GetAllSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.repository.GetAllSubjects()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "subjects fetched", subjects)
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code        string `json:"code" validate:"required"`
		Description string `json:"description" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	subject := &domain.Subject{
		Code:        req.Code,
		Description: req.Description,
	}

	if err := h.repository.CreateSubject(subject); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "subjects_code_key":
			h.badRequest(w, r, errors.New("subject code already exists"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "subject created", subject)
}

func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid subject ID")
		return
	}

	if err := h.repository.DeleteSubject(id); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == "23503":
			h.badRequest(w, r, errors.New("the subject is still referenced by timetable slots"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "subject deleted", nil)
}
