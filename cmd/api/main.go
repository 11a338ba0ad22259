// @title Work-log tracker API
// @description API for personal work-log tracking app "Worklog"
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"

	"github.com/limbo/worklog/internal/api"
	"github.com/limbo/worklog/internal/repository"
	"github.com/limbo/worklog/internal/service"
	"github.com/limbo/worklog/pkg/cleanup"
	"github.com/limbo/worklog/pkg/config"
	jwtservice "github.com/limbo/worklog/pkg/jwt_service"
	tokenblacklist "github.com/limbo/worklog/pkg/token_blacklist"
)

func init() {
	service.InitValidator()
}

func main() {
	defer cleanup.CleanUp()
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	workLogsRepo := repository.NewWorkLogsRepo(&dbCfg)
	// Revoked entries never outlive the refresh token they block
	blacklist, err := tokenblacklist.New(
		cfg.GetStringOr("REDIS_URL", "redis://localhost:6379/0"),
		jwtservice.RefreshTokenTTL(),
	)
	if err != nil {
		log.Fatal("connecting to redis error: " + err.Error())
	}
	serv := api.New(&api.ServicesList{
		UserService:          service.NewUserService(repository.NewUsersRepo(&dbCfg)),
		CategoriesService:    service.NewCategoriesService(repository.NewCategoriesRepo(&dbCfg)),
		TagsService:          service.NewTagsService(repository.NewTagsRepo(&dbCfg)),
		WorkLogsService:      service.NewWorkLogsService(workLogsRepo),
		AnnouncementsService: service.NewAnnouncementsService(repository.NewAnnouncementsRepo(&dbCfg)),
		StatisticsService:    service.NewStatisticsService(repository.NewStatisticsRepo(&dbCfg)),
		SyncService:          service.NewSyncService(repository.NewSyncRepo(&dbCfg), workLogsRepo),
		JwtService:           jwtservice.New(cfg.GetString("JWT_SECRET")),
		TokenBlacklist:       blacklist,
	})
	err = serv.Run(cfg.GetStringOr("API_ADDRESS", ":8080"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
