package connection

import (
	"cloud.google.com/go/firestore"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webanalytics/config"
	analyticscontroller "webanalytics/controller/analytics"
	authcontroller "webanalytics/controller/auth"
	schedulecontroller "webanalytics/controller/schedule"
	sitecontroller "webanalytics/controller/site"
	"webanalytics/services"
)

// NewRouter wires every controller onto one engine. The clients are built in
// main and handed in; nothing here owns their lifecycle.
func NewRouter(cfg *config.Config, fb *firestore.Client, runner services.ReportRunner, logger *zap.Logger) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret)
	scheduleService := services.NewScheduleService(services.NewFirestoreScheduleRepository(fb), logger)
	analyticsService := services.NewAnalyticsService(runner, logger, cfg.RemoteCallTimeout, cfg.AnalyticsRowLimit)

	authcontroller.SignInController(router, fb, tokens)
	authcontroller.SignUpController(router, fb)
	authcontroller.RefreshTokenController(router, fb, tokens, cfg.JWTRefreshSecret)
	analyticscontroller.AnalyticsController(router, analyticsService, cfg.JWTSecret)
	schedulecontroller.ScheduleController(router, scheduleService, cfg.JWTSecret)
	sitecontroller.SiteController(router, fb, cfg.JWTSecret)

	return router
}
