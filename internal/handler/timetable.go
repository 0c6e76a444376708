package handler

import (
	"net/http"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/coverage"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/utils"
)

func (h *Handler) GetTeacherTimetable(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	slots, err := h.repository.GetSlotsByTeacher(teacher.ID, false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "timetable fetched", slots)
}

// ReplaceTeacherTimetable swaps the teacher's whole weekly grid in one
// transaction. Re-importing is the only way to change a timetable: there is
// no per-slot editing.
func (h *Handler) ReplaceTeacherTimetable(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	var req struct {
		Slots []struct {
			Weekday   string  `json:"weekday" validate:"required"`
			Period    int32   `json:"period" validate:"required"`
			Kind      string  `json:"kind" validate:"required,oneof=lesson standby"`
			SubjectID *int64  `json:"subjectID"`
			ClassID   *int64  `json:"classID"`
			Room      *string `json:"room"`
		} `json:"slots" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	slots := make([]*domain.LessonSlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		slots = append(slots, &domain.LessonSlot{
			TeacherID: teacher.ID,
			Weekday:   domain.Weekday(s.Weekday),
			Period:    s.Period,
			Kind:      domain.SlotKind(s.Kind),
			SubjectID: s.SubjectID,
			ClassID:   s.ClassID,
			Room:      s.Room,
		})
	}

	if err := utils.ValidateLessonSlots(slots, h.bell.MaxPeriod()); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// the bell schedule decides the clock boundaries of every slot
	for _, slot := range slots {
		window, err := h.bell.Window(slot.Period)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		slot.StartTime = coverage.MinutesToClock(window.Start)
		slot.EndTime = coverage.MinutesToClock(window.End)
	}

	if err := h.repository.ReplaceTeacherSlots(teacher.ID, slots); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.bumpGapsGeneration()

	h.successResponse(w, r, "timetable replaced", slots)
}
