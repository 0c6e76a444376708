package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/utils"
)

func (h *Handler) CreateAbsence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeacherID    int64   `json:"teacherID" validate:"required"`
		StartDate    string  `json:"startDate" validate:"required"`
		EndDate      string  `json:"endDate" validate:"required"`
		Kind         string  `json:"kind" validate:"required"`
		TimeWindowed bool    `json:"timeWindowed"`
		EntryTime    *string `json:"entryTime"`
		ExitTime     *string `json:"exitTime"`
		Justified    bool    `json:"justified"`
		Note         string  `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	kind, err := domain.ParseAbsenceKind(req.Kind)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	endDate, err := utils.ParseDate(req.EndDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := h.repository.GetTeacherByID(req.TeacherID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "teacher not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	absence := &domain.Absence{
		TeacherID:    req.TeacherID,
		StartDate:    startDate,
		EndDate:      endDate,
		Kind:         kind,
		TimeWindowed: req.TimeWindowed,
		EntryTime:    req.EntryTime,
		ExitTime:     req.ExitTime,
		Justified:    req.Justified,
		Note:         req.Note,
	}

	if err := utils.ValidateAbsence(absence); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateAbsence(absence); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.bumpGapsGeneration()

	h.successResponse(w, r, "absence recorded", absence)
}

func (h *Handler) GetAbsences(w http.ResponseWriter, r *http.Request) {
	from, to, err := utils.ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	absences, err := h.repository.GetAbsencesOverlapping(from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "absences fetched", absences)
}

func (h *Handler) GetAbsence(w http.ResponseWriter, r *http.Request) {
	absence := r.Context().Value(AbsenceCtx).(*domain.Absence)
	h.successResponse(w, r, "absence fetched", absence)
}

// DeleteAbsence removes the absence and, in the same transaction, every
// assignment that was booked against it.
func (h *Handler) DeleteAbsence(w http.ResponseWriter, r *http.Request) {
	absence := r.Context().Value(AbsenceCtx).(*domain.Absence)

	if err := h.repository.DeleteAbsence(absence.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.bumpGapsGeneration()

	h.successResponse(w, r, "absence deleted", nil)
}
