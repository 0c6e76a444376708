package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.repository.GetActiveTeachers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "teachers fetched", teachers)
}

func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName        string `json:"firstName" validate:"required"`
		LastName         string `json:"lastName" validate:"required"`
		TaxCode          string `json:"taxCode" validate:"required,len=16"`
		Email            string `json:"email" validate:"required,email"`
		Role             string `json:"role" validate:"required,oneof=admin staff teacher"`
		RecoverableHours int32  `json:"recoverableHours" validate:"gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewTeacher.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	teacher := &domain.Teacher{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		TaxCode:          req.TaxCode,
		Email:            req.Email,
		PasswordHash:     string(hashedPassword),
		Role:             domain.Role(req.Role),
		RecoverableHours: req.RecoverableHours,
	}

	if err := h.repository.CreateTeacher(teacher); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "teachers_tax_code_key":
				h.badRequest(w, r, errors.New("tax code already registered"))
			case pgErr.ConstraintName == "teachers_email_key":
				h.badRequest(w, r, errors.New("email already registered"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	mailMessage := domain.MailMessage{
		Type: "create_teacher",
		To:   teacher.Email,
		Data: domain.CreateTeacherMailData{
			FullName: teacher.FirstName + " " + teacher.LastName,
			TaxCode:  teacher.TaxCode,
			Password: password,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
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
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "teacher created", teacher)
}

func (h *Handler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)
	h.successResponse(w, r, "teacher fetched", teacher)
}

func (h *Handler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName        *string `json:"firstName"`
		LastName         *string `json:"lastName"`
		Email            *string `json:"email" validate:"omitempty,email"`
		Role             *string `json:"role" validate:"omitempty,oneof=admin staff teacher"`
		IsActive         *bool   `json:"isActive"`
		RecoverableHours *int32  `json:"recoverableHours" validate:"omitempty,gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	if req.FirstName != nil {
		teacher.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		teacher.LastName = *req.LastName
	}
	if req.Email != nil {
		teacher.Email = *req.Email
	}
	if req.Role != nil {
		teacher.Role = domain.Role(*req.Role)
	}
	if req.IsActive != nil {
		teacher.IsActive = *req.IsActive
	}
	if req.RecoverableHours != nil {
		teacher.RecoverableHours = *req.RecoverableHours
	}

	if err := h.repository.UpdateTeacher(teacher); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "teachers_email_key":
				h.badRequest(w, r, errors.New("email already registered"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "the teacher changed in the meantime, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "teacher updated", teacher)
}

// DeactivateTeacher soft-deletes: the row stays so past absences and
// assignments keep their references, but the account can no longer log in
// and the resolver and ranker no longer consider it.
func (h *Handler) DeactivateTeacher(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	teacher.IsActive = false
	if err := h.repository.UpdateTeacher(teacher); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "the teacher changed in the meantime, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "teacher deactivated", nil)
}

func (h *Handler) ResetTeacherPassword(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	teacher.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateTeacher(teacher); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "password updated", nil)
}
