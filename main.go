package main

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"torgplus/server/internal/api"
	"torgplus/server/internal/config"
	"torgplus/server/internal/database"
	"torgplus/server/internal/models"
	"torgplus/server/internal/services"
	"torgplus/server/internal/utils"
)

func main() {
	// Загружаем переменные окружения из .env файла (если существует)
	// Игнорируем ошибку, если файл не найден (для production окружений)
	if err := godotenv.Load(); err != nil {
		log.Printf("ℹ️ .env файл не найден, используем переменные окружения системы")
	} else {
		log.Printf("✅ Переменные окружения загружены из .env файла")
	}

	// Загрузка конфигурации
	cfg := config.Load()

	// Логируем наличие DATABASE_URL (без пароля)
	if cfg.DatabaseURL != "" {
		safeURL := cfg.DatabaseURL
		if idx := strings.Index(safeURL, "@"); idx > 0 {
			if schemeIdx := strings.Index(safeURL, "://"); schemeIdx > 0 {
				safeURL = safeURL[:schemeIdx+3] + "***@" + safeURL[idx+1:]
			}
		}
		log.Printf("📋 DATABASE_URL установлен: %s", safeURL)
	}

	// Подключение к PostgreSQL
	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ PostgreSQL connection failed: %v", err)
	}
	defer database.ClosePostgres(db)

	// Выполняем миграции
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// Подключение к Redis (опционально: без него отчеты просто не кэшируются)
	var redisUtil *utils.RedisClient
	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️ Redis connection failed: %v (continuing without cache)", err)
		redisClient = nil
	} else {
		redisUtil = utils.NewRedisClient(redisClient)
	}
	defer database.CloseRedis(redisClient)

	// Бизнес-правила из конфигурации
	rules := services.FinanceRules{
		FeePercent:      decimal.NewFromFloat(cfg.FeePercent),
		PaymentTermDays: cfg.PaymentTermDays,
	}

	split := services.DefaultProfitSplit()
	if cfg.ProfitShares != "" {
		split, err = services.ParseProfitShares(cfg.ProfitShares)
		if err != nil {
			log.Fatalf("❌ Invalid PROFIT_SHARES: %v", err)
		}
	}

	// Инициализация сервисов
	numbering := services.NewNumberingService()
	ledger := services.NewStockLedger()

	auditService := services.NewAuditService(db)
	if cfg.KafkaBrokers != "" {
		auditService.SetKafkaWriter(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		log.Printf("📡 Audit events will be published to Kafka topic %s", cfg.KafkaAuditTopic)
	} else {
		log.Println("⚠️ KAFKA_BROKERS не установлен, аудит пишется только в БД")
	}
	defer auditService.Close()

	outgoingService := services.NewOutgoingService(db, numbering, ledger, auditService, rules)
	incomingService := services.NewIncomingService(db, numbering, ledger, auditService, rules)

	reportService := services.NewReportService(db, split)
	if redisUtil != nil {
		reportService.SetCache(redisUtil)
	}
	log.Println("✅ Services initialized")

	// WebSocket hub для уведомлений об изменениях
	go api.EventsHub.Run()

	// Настройка Gin
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Health check (до middleware: нужен без заголовков идентификации)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// WebSocket подписка на события изменений
	router.GET("/ws/events", api.ServeWS)

	// Контроллеры
	outgoingController := api.NewOutgoingController(outgoingService)
	incomingController := api.NewIncomingController(incomingService)
	reportController := api.NewReportController(reportService)
	auditController := api.NewAuditController(auditService)

	// API маршруты: идентификацию дает upstream шлюз через заголовки
	v1 := router.Group("/api/v1")
	v1.Use(api.CallerMiddleware())
	{
		v1.POST("/outgoing", outgoingController.Create)
		v1.PUT("/outgoing/:id", outgoingController.Update)
		v1.DELETE("/outgoing/:id", outgoingController.Delete)
		v1.GET("/outgoing/:id", outgoingController.Get)
		v1.GET("/outgoing", outgoingController.List)

		v1.POST("/incoming", incomingController.Create)
		v1.PUT("/incoming/:id", incomingController.Update)
		v1.DELETE("/incoming/:id", incomingController.Delete)
		v1.GET("/incoming/:id", incomingController.Get)
		v1.GET("/incoming", incomingController.List)

		v1.GET("/reports/stats", reportController.GetStats)
		v1.GET("/reports/chart", reportController.GetChart)
		v1.GET("/reports/profit-split", reportController.GetProfitSplit)
		v1.GET("/reports/top-customers", reportController.GetTopCustomers)

		v1.GET("/audit", auditController.List)
	}

	log.Printf("🚀 Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
