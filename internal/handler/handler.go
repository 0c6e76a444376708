package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/config"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/coverage"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	bell     *coverage.BellSchedule
	resolver *coverage.Resolver
	ranker   *coverage.Ranker
	coverage *coverage.Service

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client, bell *coverage.BellSchedule) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	stores := coverage.Stores{
		Teachers:    repo,
		Timetable:   repo,
		Absences:    repo,
		Assignments: repo,
		Catalog:     repo,
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		bell:     bell,
		resolver: coverage.NewResolver(stores, bell),
		ranker:   coverage.NewRanker(stores, bell),
		coverage: coverage.NewService(stores, bell),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// everything below requires a valid session cookie
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Get("/timetable", h.GetMyTimetable)
			r.Get("/absences", h.GetMyAbsences)
		})

		r.Route("/teachers", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateTeacher)
			r.Get("/", h.GetAllTeachers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.teacherInfo)
				r.Get("/", h.GetTeacher)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateTeacher)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeactivateTeacher)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.ResetTeacherPassword)
				r.Get("/timetable", h.GetTeacherTimetable)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Put("/timetable", h.ReplaceTeacherTimetable)
			})
		})

		r.Route("/classes", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Post("/", h.CreateClass)
			r.Get("/", h.GetAllClasses)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Delete("/{id}", h.DeleteClass)
		})

		r.Route("/subjects", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Post("/", h.CreateSubject)
			r.Get("/", h.GetAllSubjects)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Delete("/{id}", h.DeleteSubject)
		})

		r.Route("/absences", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Post("/", h.CreateAbsence)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Get("/", h.GetAbsences)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.absenceCtx)
				r.Get("/", h.GetAbsence)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Delete("/", h.DeleteAbsence)
			})
		})

		r.Route("/coverage", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff}))
			r.Get("/gaps", h.GetCoverageGaps)
			r.Get("/candidates", h.GetCoverageCandidates)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Post("/", h.CreateAssignment)
			r.Get("/", h.GetAssignments)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.assignmentCtx)
				r.Get("/", h.GetAssignment)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleStaff})).Patch("/status", h.UpdateAssignmentStatus)
			})
		})
	})
}
