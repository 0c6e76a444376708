package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/coverage"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/utils"
)

const gapsGenerationKey = "coverage_gaps_generation"

// bumpGapsGeneration invalidates every cached gap list by moving the
// generation counter forward. Cache invalidation is best effort: a stale
// entry only survives until its TTL.
func (h *Handler) bumpGapsGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	if err := h.redisClient.Incr(ctx, gapsGenerationKey).Err(); err != nil {
		slog.Warn("failed to bump gap cache generation", "error", err)
	}
}

func (h *Handler) GetCoverageGaps(w http.ResponseWriter, r *http.Request) {
	from, to, err := utils.ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	generation, err := h.redisClient.Get(ctx, gapsGenerationKey).Result()
	if err != nil {
		generation = "0"
	}
	cacheKey := fmt.Sprintf("coverage_gaps_%s_%s_%s", generation, from.Format(time.DateOnly), to.Format(time.DateOnly))

	if cached, err := h.redisClient.Get(ctx, cacheKey).Result(); err == nil {
		gaps := make([]coverage.Gap, 0)
		if err := json.Unmarshal([]byte(cached), &gaps); err == nil {
			h.successResponse(w, r, "coverage gaps fetched", gaps)
			return
		}
	}

	gaps, err := h.resolver.ResolveGaps(from, to)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if encoded, err := json.Marshal(gaps); err == nil {
		if err := h.redisClient.Set(ctx, cacheKey, encoded, time.Duration(h.config.School.GapCacheTTL)*time.Second).Err(); err != nil {
			slog.Warn("failed to cache coverage gaps", "error", err)
		}
	}

	h.successResponse(w, r, "coverage gaps fetched", gaps)
}

func (h *Handler) GetCoverageCandidates(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	period64, err := strconv.ParseInt(r.URL.Query().Get("period"), 10, 32)
	if err != nil {
		h.badRequest(w, r, errors.New("invalid period"))
		return
	}
	classLabel := r.URL.Query().Get("class")

	weekday, schoolDay := domain.WeekdayOf(date)
	if !schoolDay {
		h.badRequest(w, r, errors.New("no lessons are scheduled on Sundays"))
		return
	}

	candidates, err := h.ranker.RankCandidates(date, int32(period64), weekday, classLabel)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "candidates fetched", candidates)
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AbsenceID    int64  `json:"absenceID" validate:"required"`
		SubstituteID int64  `json:"substituteID" validate:"required"`
		Date         string `json:"date" validate:"required"`
		Period       int32  `json:"period" validate:"required"`
		Note         string `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment, err := h.coverage.CommitAssignment(req.AbsenceID, req.SubstituteID, date, req.Period)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAssignmentConflict):
			h.errorResponse(w, r, "the slot already has an active assignment")
		case errors.Is(err, domain.ErrNotFound):
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if req.Note != "" {
		assignment.Note = req.Note
		if err := h.repository.UpdateAssignmentStatus(assignment); err != nil {
			slog.Warn("failed to attach note to assignment", "assignmentID", assignment.ID, "error", err)
		}
	}

	h.bumpGapsGeneration()
	h.publishSubstitutionNotice(assignment)

	h.successResponse(w, r, "assignment committed", assignment)
}

// publishSubstitutionNotice mails the substitute about the booked period.
// Notification failures never fail the commit.
func (h *Handler) publishSubstitutionNotice(assignment *domain.Assignment) {
	substitute, err := h.repository.GetTeacherByID(assignment.SubstituteID)
	if err != nil {
		slog.Warn("failed to load substitute for notice", "substituteID", assignment.SubstituteID, "error", err)
		return
	}
	absent, err := h.repository.GetTeacherByID(assignment.TeacherID)
	if err != nil {
		slog.Warn("failed to load absent teacher for notice", "teacherID", assignment.TeacherID, "error", err)
		return
	}

	subject := ""
	if assignment.SubjectID != nil {
		if s, err := h.repository.GetSubjectByID(*assignment.SubjectID); err == nil {
			subject = s.Description
		}
	}

	mailMessage := domain.MailMessage{
		Type: "substitution_notice",
		To:   substitute.Email,
		Data: domain.SubstitutionNoticeMailData{
			FullName:      substitute.FirstName + " " + substitute.LastName,
			AbsentTeacher: absent.FirstName + " " + absent.LastName,
			Date:          assignment.Date.Format(time.DateOnly),
			Period:        assignment.Period,
			ClassLabel:    assignment.ClassLabel,
			Subject:       subject,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		slog.Warn("failed to marshal substitution notice", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"notification_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		slog.Warn("failed to publish substitution notice", "error", err)
	}
}

func (h *Handler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	from, to, err := utils.ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignments, err := h.repository.GetAssignmentsByRange(from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "assignments fetched", assignments)
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	assignment := r.Context().Value(AssignmentCtx).(*domain.Assignment)
	h.successResponse(w, r, "assignment fetched", assignment)
}

func (h *Handler) UpdateAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment := r.Context().Value(AssignmentCtx).(*domain.Assignment)

	next := domain.AssignmentStatus(req.Status)
	if !assignment.CanTransitionTo(next) {
		h.errorResponse(w, r, fmt.Sprintf("cannot move assignment from %s to %s", assignment.Status, next))
		return
	}

	assignment.Status = next
	if err := h.repository.UpdateAssignmentStatus(assignment); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "the assignment changed in the meantime, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if next == domain.AssignmentCancelled {
		h.bumpGapsGeneration()
	}

	h.successResponse(w, r, "assignment updated", assignment)
}
