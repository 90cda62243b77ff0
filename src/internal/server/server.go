package server

import (
	"context"
	"letterdesk-admin-svc/src/clients"
	"letterdesk-admin-svc/src/internal/config"
	"letterdesk-admin-svc/src/internal/dependency"
	"letterdesk-admin-svc/src/internal/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = *logrus.StandardLogger()

type Server struct {
	cfg  *config.Configuration
	deps *dependency.Manager
}

func New(cfg *config.Configuration) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Start() error {
	gin.SetMode(s.cfg.Server.Mode)
	router := gin.Default()

	mongodb, err := clients.NewMongoDB(&s.cfg.Database)
	if err != nil {
		return err
	}

	redisClient, err := clients.NewRedisClient(&s.cfg.Redis)
	if err != nil {
		return err
	}

	// The audit pipeline runs without a broker when RabbitMQ is down;
	// entries still land in the audit collection.
	rabbitMQ, err := clients.NewRabbitMQ(&s.cfg.Queue)
	if err != nil {
		log.WithError(err).Warn("RabbitMQ unavailable, audit events will not be published")
		rabbitMQ = nil
	} else if err := rabbitMQ.SetupExchange(); err != nil {
		log.WithError(err).Warn("Failed to declare activity exchange")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Database.Timeout)*time.Second)
	defer cancel()
	if err := session.EnsureIndexes(ctx, mongodb, s.cfg.Database.SessionCollection); err != nil {
		return err
	}

	s.deps = dependency.NewDependencyManager(router, mongodb, redisClient, rabbitMQ, s.cfg)
	SetupRoutes(s.deps)

	srv := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeout) * time.Second,
	}

	log.Infof("Server listening on port %s", s.cfg.Server.Port)
	return srv.ListenAndServe()
}
