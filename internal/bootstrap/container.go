package bootstrap

import (
	"time"

	"research-assistant-cli/internal/config"
	"research-assistant-cli/internal/controller"
	"research-assistant-cli/internal/pkg/logger"
	"research-assistant-cli/internal/repository"
	"research-assistant-cli/internal/service"
	"research-assistant-cli/pkg/api"

	"github.com/go-playground/validator/v10"
)

type Container struct {
	Controller controller.IAppController
	Sessions   service.ISessionService
	Repository repository.ICollectionRepository
	Chat       service.IChatService
	Upload     service.IUploadService
	Search     service.ISearchService
	Logger     logger.ILogger
}

func NewContainer(cfg *config.Config, sysLogger logger.ILogger) *Container {
	validate := validator.New()

	client := api.NewClient(cfg.App.APIBaseURL, time.Duration(cfg.App.HTTPTimeoutSeconds)*time.Second)

	repo := repository.NewCollectionRepository(
		client,
		time.Duration(cfg.App.SnapshotTTLMinutes)*time.Minute,
		validate,
		sysLogger,
	)

	sessions := service.NewSessionService(client, cfg.App.SessionFilePath, validate, sysLogger)
	// Logout must flush the collection cache, not leave it stale.
	sessions.RegisterResetter(repo)

	chat := service.NewChatService(client, sysLogger)
	upload := service.NewUploadService(client, repo, sysLogger)
	search := service.NewSearchService(client, repo, validate, sysLogger)

	appController := controller.NewAppController(client, sessions, repo, chat, sysLogger)

	return &Container{
		Controller: appController,
		Sessions:   sessions,
		Repository: repo,
		Chat:       chat,
		Upload:     upload,
		Search:     search,
		Logger:     sysLogger,
	}
}
