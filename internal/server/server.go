package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/launchforge/launchforge/internal/config"
	"github.com/launchforge/launchforge/internal/identity"
	identitydomain "github.com/launchforge/launchforge/internal/identity/domain"
	"github.com/launchforge/launchforge/internal/observability"
	obsmiddleware "github.com/launchforge/launchforge/internal/observability/logger"
	obsmetrics "github.com/launchforge/launchforge/internal/observability/metrics"
	"github.com/launchforge/launchforge/internal/payment"
	paymentdomain "github.com/launchforge/launchforge/internal/payment/domain"
	"github.com/launchforge/launchforge/internal/scaffold"
	scaffolddomain "github.com/launchforge/launchforge/internal/scaffold/domain"
	"github.com/launchforge/launchforge/internal/user"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	payment.Module,
	identity.Module,
	user.Module,
	scaffold.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	paymentSvc  paymentdomain.Service
	identitySvc identitydomain.Service
	scaffoldSvc scaffolddomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	PaymentSvc  paymentdomain.Service
	IdentitySvc identitydomain.Service
	ScaffoldSvc scaffolddomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		paymentSvc:  p.PaymentSvc,
		identitySvc: p.IdentitySvc,
		scaffoldSvc: p.ScaffoldSvc,
	}

	svc.registerWebhookRoutes()
	svc.registerScaffoldRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerWebhookRoutes() {
	webhooks := s.engine.Group("/api/webhooks")

	webhooks.POST("/stripe", s.HandleStripeWebhook)
	webhooks.POST("/identity", s.HandleIdentityWebhook)
}

func (s *Server) registerScaffoldRoutes() {
	api := s.engine.Group("/api/scaffold")

	api.GET("/options", s.ListScaffoldOptions)
	api.POST("/blueprints", s.CreateBlueprint)
	api.GET("/blueprints", s.ListBlueprints)
	api.GET("/blueprints/:id", s.GetBlueprint)
}
