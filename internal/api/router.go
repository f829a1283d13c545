package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"calorie-chat/internal/api/handlers/admin"
	"calorie-chat/internal/api/handlers/chat"
	"calorie-chat/internal/api/handlers/health"
	"calorie-chat/internal/api/middleware"
	"calorie-chat/internal/core/calorie"
	"calorie-chat/internal/core/match"
	"calorie-chat/internal/core/missing"
	"calorie-chat/internal/core/nlp"
	"calorie-chat/internal/core/session"
	"calorie-chat/internal/infrastructure/config"
	"calorie-chat/internal/infrastructure/data"
	"calorie-chat/internal/infrastructure/fallback"
	"calorie-chat/internal/infrastructure/translate"
	"calorie-chat/internal/pkg/common"
	"calorie-chat/internal/pkg/similarity"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	timeoutDuration = 30 * time.Second
	// chat messages are small; 1MB is generous
	maxBodySize = 1 << 20
)

// SetupRouter loads the corpora, wires the pipeline services and registers
// all routes
func SetupRouter(cfg *config.Config) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// reference corpora
	dishes, err := data.LoadDishes(cfg.Data.DishesPath)
	if err != nil {
		common.LogError("Failed to load dish corpus", zap.Error(err))
		return nil, fmt.Errorf("failed to load dish corpus: %w", err)
	}
	foundation, err := data.LoadFoundation(cfg.Data.FoundationPath)
	if err != nil {
		common.LogError("Failed to load Foundation corpus", zap.Error(err))
		return nil, fmt.Errorf("failed to load Foundation corpus: %w", err)
	}
	srLegacy, err := data.LoadSRLegacy(cfg.Data.SRLegacyPath)
	if err != nil {
		common.LogError("Failed to load SR Legacy corpus", zap.Error(err))
		return nil, fmt.Errorf("failed to load SR Legacy corpus: %w", err)
	}

	// pipeline services
	scorer := similarity.NewEditDistance()
	vocab := nlp.DefaultVocabulary()

	var translator nlp.Translator = translate.Noop{}
	if cfg.Translator.Enabled {
		translator = translate.NewClient(&cfg.Translator)
		common.LogInfo("Translation collaborator enabled",
			zap.String("base_url", cfg.Translator.BaseURL),
			zap.String("api_key", config.MaskAPIKey(cfg.Translator.APIKey)),
		)
	}

	nlpEngine := nlp.NewEngine(
		nlp.NewNormalizer(translator, vocab, scorer),
		nlp.NewParser(vocab),
	)

	searchEngine := match.NewEngine(dishes, foundation, srLegacy, scorer)
	missingLog := missing.NewLog(cfg.Data.MissingLogPath)
	calculator := calorie.NewCalculator(searchEngine, missingLog)

	var sessions session.Store
	if cfg.Redis.Enabled {
		redisStore, err := session.NewRedisStore(&cfg.Redis)
		if err != nil {
			common.LogError("Failed to connect to Redis", zap.Error(err))
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		sessions = redisStore
		common.LogInfo("Session store: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		sessions = session.NewMemoryStore()
		common.LogInfo("Session store: memory")
	}

	var estimator fallback.Estimator = fallback.Noop{}
	if cfg.Fallback.Enabled {
		estimator = fallback.NewClient(&cfg.Fallback)
		common.LogInfo("LLM fallback enabled",
			zap.String("model", cfg.Fallback.Model),
			zap.String("api_key", config.MaskAPIKey(cfg.Fallback.APIKey)),
		)
	}

	corporaStatus := &health.CorporaStatus{
		Dishes:      len(dishes),
		Ingredients: len(foundation) + len(srLegacy),
	}

	// per-request timeout and context injection
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("corpora_status", corporaStatus)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	{
		chatHandler := chat.NewHandler(nlpEngine, calculator, sessions, estimator, missingLog)
		adminHandler := admin.NewHandler(searchEngine, missingLog)

		chatGroup := api.Group("/chat")
		{
			chatGroup.POST("/message", chatHandler.HandleMessage)
			chatGroup.POST("/session", chatHandler.HandleCreateSession)
			chatGroup.GET("/session/:session_id", chatHandler.HandleGetSession)
		}

		countryGroup := api.Group("/countries")
		{
			countryGroup.GET("", adminHandler.HandleListCountries)
			countryGroup.GET("/:code", adminHandler.HandleGetCountry)
		}

		adminGroup := api.Group("/admin")
		{
			adminGroup.GET("/missing-dishes", adminHandler.HandleMissingDishes)
			adminGroup.POST("/missing-dishes/resolve", adminHandler.HandleResolveMissingDish)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Int("dishes", len(dishes)),
		zap.Int("ingredients", corporaStatus.Ingredients),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
