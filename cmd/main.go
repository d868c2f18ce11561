package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/thinknt/quizforge/config"
	"github.com/thinknt/quizforge/database"
	_ "github.com/thinknt/quizforge/docs" // Swagger docs
	"github.com/thinknt/quizforge/internal/controller"
	"github.com/thinknt/quizforge/internal/logger"
	"github.com/thinknt/quizforge/internal/model"
	"github.com/thinknt/quizforge/internal/repository"
	"github.com/thinknt/quizforge/internal/service"
	"github.com/thinknt/quizforge/internal/worker"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Thinkn't Quiz Generation API
// @version 1.0
// @description Generates team-building quizzes with an LLM, enriched with real YouTube and Wikimedia search results.
// @host localhost:8080
// @BasePath /api
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewQuizRepository,
		),

		fx.Provide(
			service.NewLLMService,
			NewVideoSearcher,
			NewImageSearcher,
			service.NewQuizGeneratorService,
			worker.NewGenerateQuizWorker,
			func(w *worker.GenerateQuizWorker) service.GenerationEnqueuer { return w },
			service.NewQuizService,
		),

		fx.Provide(
			controller.NewQuizController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(StartWorkerPool),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

// NewVideoSearcher builds the YouTube client; a missing key degrades to nil
// so generation still works with placeholder media.
func NewVideoSearcher(cfg *config.Config) service.VideoSearcher {
	svc, err := service.NewYoutubeSearchService(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("YouTube service not available, media enrichment disabled")
		return nil
	}
	log.Info().Msg("YouTube service initialized")
	return svc
}

func NewImageSearcher() service.ImageSearcher {
	return service.NewWikimediaSearchService()
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	quizCtrl *controller.QuizController,
) {
	api := router.Group("/api")
	{
		quizzes := api.Group("/quizzes")
		quizzes.POST("", quizCtrl.CreateQuiz)
		quizzes.GET("/:id", quizCtrl.GetQuiz)
		quizzes.PUT("/:id", quizCtrl.UpdateQuiz)
		quizzes.POST("/:id/regenerate", quizCtrl.RegenerateQuiz)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quiz API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func StartWorkerPool(lc fx.Lifecycle, w *worker.GenerateQuizWorker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			w.Stop()
			return nil
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := db.AutoMigrate(&model.Quiz{}); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed")
	return nil
}
