package main

import (
	"log"
	"os"
	"strconv"

	"buyer-lead-console/internal/api"
	"buyer-lead-console/internal/config"
	"buyer-lead-console/internal/handlers"
	"buyer-lead-console/internal/listing"
	"buyer-lead-console/internal/ratelimit"
	"buyer-lead-console/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	configPath := getEnv("CONFIG_PATH", "config/console.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Remote API gateway
	baseURL := getEnvOrConfig(appConfig.API.BaseURL, "API_BASE_URL", "http://localhost:4000/api")
	apiClient := api.NewClient(baseURL, appConfig.API.GetTimeout())
	log.Printf("Remote API: %s", baseURL)

	// Session store backend switch
	store, err := openSessionStore(appConfig)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer store.Close()

	sessions := session.NewManager(
		store,
		apiClient,
		appConfig.Session.CookieName,
		appConfig.Session.GetTTL(),
		appConfig.Session.GetCacheTTL(),
	)

	listings := listing.NewRegistry()

	loginLimiter := ratelimit.NewLoginLimiter(
		appConfig.Login.AttemptsPerMinute,
		appConfig.Login.AttemptsPerHour,
		appConfig.Login.RateLimitEnabled,
	)

	// Periodic maintenance: expired session sweep, idle listing-state prune,
	// limiter window cleanup
	scheduler := cron.New()
	sweep := func() {
		sessions.Sweep()
		if removed := listings.PruneIdle(appConfig.Session.GetTTL()); removed > 0 {
			log.Printf("[listing] pruned %d idle listing states", removed)
		}
	}
	if _, err := scheduler.AddFunc(appConfig.Session.SweepSchedule, sweep); err != nil {
		log.Printf("Warning: invalid sweep schedule %q: %v", appConfig.Session.SweepSchedule, err)
	}
	if _, err := scheduler.AddFunc("@hourly", loginLimiter.Cleanup); err != nil {
		log.Printf("Warning: failed to schedule limiter cleanup: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Use(sessions.Middleware())

	r.LoadHTMLGlob("web/templates/*.html")

	handler := handlers.NewHandler(apiClient, sessions, listings, loginLimiter, appConfig.Session.CookieName)
	handler.RegisterRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	port := getEnv("PORT", appConfig.Server.Port)
	log.Printf("Console starting on port %s (session backend: %s)", port, appConfig.Session.Backend)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openSessionStore picks the token store backend from configuration
func openSessionStore(appConfig *config.Config) (session.Store, error) {
	cfg := appConfig.Session
	switch cfg.Backend {
	case "redis":
		log.Println("Using Redis session store")
		addr := getEnvOrConfig(cfg.Redis.Addr, "REDIS_ADDR", "localhost:6379")
		password := getEnvOrConfig(cfg.Redis.Password, "REDIS_PASSWORD", "")
		return session.NewRedisStore(addr, password, cfg.Redis.DB)

	case "mysql":
		log.Println("Using MySQL session store")
		portStr := ""
		if cfg.MySQL.Port > 0 {
			portStr = strconv.Itoa(cfg.MySQL.Port)
		}
		return session.NewMySQLStore(
			getEnvOrConfig(cfg.MySQL.Host, "DB_HOST", "localhost"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(cfg.MySQL.User, "DB_USER", "console_user"),
			getEnvOrConfig(cfg.MySQL.Password, "DB_PASSWORD", "console_pass"),
			getEnvOrConfig(cfg.MySQL.Database, "DB_NAME", "console_db"),
		)

	case "postgres":
		log.Println("Using PostgreSQL session store")
		portStr := ""
		if cfg.Postgres.Port > 0 {
			portStr = strconv.Itoa(cfg.Postgres.Port)
		}
		return session.NewPostgresStore(
			getEnvOrConfig(cfg.Postgres.Host, "DB_HOST", "localhost"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(cfg.Postgres.User, "DB_USER", "console_user"),
			getEnvOrConfig(cfg.Postgres.Password, "DB_PASSWORD", "console_pass"),
			getEnvOrConfig(cfg.Postgres.Database, "DB_NAME", "console_db"),
			cfg.Postgres.SSLMode,
		)
	}

	log.Println("Using in-memory session store")
	return session.NewMemoryStore(), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
