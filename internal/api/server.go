package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/limbo/worklog/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	mx                   *chi.Mux
	userService          service.UserServiceI
	categoriesService    service.CategoriesServiceI
	tagsService          service.TagsServiceI
	workLogsService      service.WorkLogsServiceI
	announcementsService service.AnnouncementsServiceI
	statisticsService    service.StatisticsServiceI
	syncService          service.SyncServiceI
	jwtService           JWTServiceI
	tokenBlacklist       TokenBlacklistI
}

type ServicesList struct {
	UserService          service.UserServiceI
	CategoriesService    service.CategoriesServiceI
	TagsService          service.TagsServiceI
	WorkLogsService      service.WorkLogsServiceI
	AnnouncementsService service.AnnouncementsServiceI
	StatisticsService    service.StatisticsServiceI
	SyncService          service.SyncServiceI
	JwtService           JWTServiceI
	TokenBlacklist       TokenBlacklistI
}

func New(servicesOptions *ServicesList) *Server {
	return &Server{
		mx:                   chi.NewMux(),
		userService:          servicesOptions.UserService,
		categoriesService:    servicesOptions.CategoriesService,
		tagsService:          servicesOptions.TagsService,
		workLogsService:      servicesOptions.WorkLogsService,
		announcementsService: servicesOptions.AnnouncementsService,
		statisticsService:    servicesOptions.StatisticsService,
		syncService:          servicesOptions.SyncService,
		jwtService:           servicesOptions.JwtService,
		tokenBlacklist:       servicesOptions.TokenBlacklist,
	}
}

func (s *Server) registerRoutes() {
	s.mx.Use(s.RequestIDMiddleware)
	s.mx.Use(s.SettingUpLoggerMiddleware)
	s.mx.Use(s.MetricsMiddleware)

	s.mx.Handle("/metrics", promhttp.Handler())

	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.Signup)
		r.Post("/auth/login", s.Login)
		r.Post("/auth/refresh", s.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Use(s.LoggerExtensionMiddleware)

			r.Post("/auth/logout", s.Logout)
			r.Get("/auth/me", s.GetProfile)
			r.Get("/users/me", s.GetProfile)
			r.Patch("/users/me", s.UpdateProfile)
			r.Delete("/users/me", s.DeleteAccount)

			r.Post("/categories", s.CreateCategory)
			r.Get("/categories", s.GetCategories)
			r.Get("/categories/{id}", s.GetCategory)
			r.Patch("/categories/{id}", s.UpdateCategory)
			r.Delete("/categories/{id}", s.DeleteCategory)
			r.Patch("/categories/reorder", s.ReorderCategories)

			r.Post("/tags", s.CreateTag)
			r.Get("/tags", s.GetTags)
			r.Delete("/tags/{id}", s.DeleteTag)

			r.Post("/work_logs", s.CreateWorkLog)
			r.Get("/work_logs", s.GetWorkLogs)
			r.Get("/work_logs/calendar/{year}/{month}", s.GetCalendar)
			r.Get("/work_logs/{id}", s.GetWorkLog)
			r.Patch("/work_logs/{id}", s.UpdateWorkLog)
			r.Delete("/work_logs/{id}", s.DeleteWorkLog)

			r.Get("/announcements", s.GetAnnouncements)
			r.Post("/announcements/{id}/read", s.MarkAnnouncementRead)

			r.Get("/statistics/summary", s.GetStatisticsSummary)
			r.Get("/statistics/trends", s.GetStatisticsTrends)
			r.Get("/statistics/heatmap", s.GetStatisticsHeatmap)
			r.Get("/statistics/heatmap/{year}", s.GetStatisticsHeatmap)

			r.Post("/sync/upload", s.SyncUpload)
			r.Get("/sync/download", s.SyncDownload)
			r.Get("/sync/status", s.SyncStatus)
			r.Post("/sync/devices", s.RegisterDevice)
			r.Get("/sync/devices", s.GetDevices)
		})
	})
}

func (s *Server) Run(address string) error {
	s.registerRoutes()
	return http.ListenAndServe(address, s.mx)
}
