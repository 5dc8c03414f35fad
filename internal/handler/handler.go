package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/config"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/repository"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/trigger"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	trigger     *trigger.Trigger

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client, trig *trigger.Trigger) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		trigger:     trig,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Post("/", h.CreateRoom)
			r.Get("/", h.GetAllRooms)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.roomInfo)
				r.Get("/", h.GetRoom)
				r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Patch("/", h.UpdateRoom)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteRoom)
			})
		})

		r.Route("/doctors", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Post("/", h.CreateDoctor)
			r.Get("/", h.GetAllDoctors)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.doctorInfo)
				r.Get("/", h.GetDoctor)
				r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Put("/roster", h.UpdateDoctorRoster)
			})
		})

		r.Route("/surgeries", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin})).Post("/", h.CreateSurgery)
			r.Get("/", h.GetSurgeriesByStatus)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.surgeryInfo)
				r.Get("/", h.GetSurgery)
			})
		})

		r.Route("/scheduling", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdmin}))
			r.Post("/run", h.RunStandaloneScheduling)
			r.Post("/trigger", h.TriggerScheduling)
			r.Get("/status", h.GetSchedulingStatus)
			r.Get("/results", h.GetScheduleResults)
		})
	})
}
