package server

import (
	"context"
	"net/http"
	"time"

	"gymdesk/internal/auth"
	"gymdesk/internal/config"
	"gymdesk/internal/email"
	"gymdesk/internal/member"
	"gymdesk/internal/membership"
	"gymdesk/internal/plan"
	"gymdesk/internal/policy"
	"gymdesk/internal/staff"
	"gymdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	db         *sqlx.DB
	config     *config.Config
	email      *email.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service, pausePolicy *policy.PausePolicy) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), RequestLoggingMiddleware(), MetricsMiddleware(), corsMiddleware())

	st := store.New(db)
	membershipSvc := membership.NewService(st, pausePolicy, emailService)

	staffHandler := staff.NewHandler(staff.NewService(staff.NewRepository(db), cfg.JWTSecret))
	memberHandler := member.NewHandler(member.NewRepository(db))
	planHandler := plan.NewHandler(plan.NewRepository(db))
	membershipHandler := membership.NewHandler(membershipSvc)

	public := router.Group("/auth")
	{
		public.POST("/login", staffHandler.Login)
		public.POST("/refresh", staffHandler.Refresh)
	}

	kiosk := router.Group("/kiosk")
	kiosk.Use(RateLimitMiddleware(cfg.KioskRateRPS, cfg.KioskRateBurst))
	{
		kiosk.POST("/validate", membershipHandler.Kiosk)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	adminMiddleware := auth.RequireRole(auth.RoleAdmin)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", staffHandler.Me)

		protected.POST("/checkins", membershipHandler.CheckIn)
		protected.POST("/payments", membershipHandler.CreatePayment)
		protected.GET("/plans", planHandler.List)

		protected.GET("/members", memberHandler.List)
		protected.POST("/members", membershipHandler.Register)
		protected.GET("/members/:id", memberHandler.Get)
		protected.PUT("/members/:id", memberHandler.Update)
		protected.GET("/members/:id/access", membershipHandler.Access)
		protected.POST("/members/:id/pause", membershipHandler.SetPause)
		protected.GET("/members/:id/pause", membershipHandler.PauseStatus)
		protected.GET("/members/:id/checkins", membershipHandler.CheckIns)
		protected.GET("/members/:id/payments", membershipHandler.Payments)

		protected.DELETE("/members/:id", adminMiddleware, memberHandler.Delete)
		protected.POST("/members/:id/restore", adminMiddleware, memberHandler.Restore)
		protected.POST("/plans", adminMiddleware, planHandler.Create)
		protected.PUT("/plans/:planID", adminMiddleware, planHandler.Update)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/stats/checkins", membershipHandler.CheckInStats)
		admin.GET("/stats/revenue", membershipHandler.RevenueStats)
		admin.POST("/staff", staffHandler.Create)
	}

	router.GET("/health", Health(map[string]Check{
		"database": {Ping: db.PingContext, Critical: true},
		"queue":    {Ping: emailService.Ping},
	}))
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
