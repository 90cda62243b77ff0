package dependency

import (
	"letterdesk-admin-svc/src/clients"
	"letterdesk-admin-svc/src/internal/audit"
	"letterdesk-admin-svc/src/internal/auth"
	"letterdesk-admin-svc/src/internal/cache"
	"letterdesk-admin-svc/src/internal/config"
	"letterdesk-admin-svc/src/internal/crypto"
	"letterdesk-admin-svc/src/internal/identity"
	"letterdesk-admin-svc/src/internal/middleware"
	"letterdesk-admin-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/streadway/amqp"
)

type Manager struct {
	Router          *gin.Engine
	Config          *config.Configuration
	Mongodb         *clients.MongoDB
	Redis           *clients.RedisClient
	RabbitMQ        *clients.RabbitMQ
	TokenCrypto     *crypto.TokenCrypto
	SessionService  session.Service
	IdentityService identity.Service
	CacheService    cache.Service
	AuditRecorder   audit.Recorder
	AuthMiddleware  *middleware.AuthMiddleware
	AuthHandler     auth.Handler
}

func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration) *Manager {
	var channel *amqp.Channel
	if rabbitMQ != nil {
		channel = rabbitMQ.Channel
	}

	tokenCrypto := crypto.New(crypto.Config{Secret: cfg.Security.SessionSecret})
	auditRecorder := audit.NewRecorder(
		mongodb.Database.Collection(cfg.Database.AuditCollection),
		channel,
		&cfg.Queue.RabbitMQ,
	)
	sessionRepo := session.NewSessionRepository(mongodb, cfg.Database.SessionCollection)
	sessionService := session.NewSessionService(sessionRepo, tokenCrypto, auditRecorder, &cfg.Session)
	userRepo := identity.NewUserRepository(mongodb, cfg.Database.UserCollection)
	identityService := identity.NewUserService(userRepo, cfg)
	cacheService := cache.NewCacheService(redisClient.Client, cfg)
	authMiddleware := middleware.NewAuthMiddleware(sessionService, identityService, cfg)
	authHandler := auth.NewHandler(cfg, sessionService, identityService, cacheService, authMiddleware)

	return &Manager{
		Router:          router,
		Config:          cfg,
		Mongodb:         mongodb,
		Redis:           redisClient,
		RabbitMQ:        rabbitMQ,
		TokenCrypto:     tokenCrypto,
		SessionService:  sessionService,
		IdentityService: identityService,
		CacheService:    cacheService,
		AuditRecorder:   auditRecorder,
		AuthMiddleware:  authMiddleware,
		AuthHandler:     authHandler,
	}
}
