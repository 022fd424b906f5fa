package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/infrastructure/communication"
	"renewtrack.com/renewtrack/infrastructure/devops"
	"renewtrack.com/renewtrack/infrastructure/logging"
	"renewtrack.com/renewtrack/security"
	"renewtrack.com/renewtrack/web/handlers"
	"renewtrack.com/renewtrack/web/middlewares"
)

func buildMailer(cfg *devops.Config) core.Mailer {
	switch cfg.Mail.Provider {
	case "ses":
		mailer, err := communication.NewSESMailer(context.Background(), cfg.Mail.From)
		if err != nil {
			logging.Log.WithError(err).Warn("ses mailer unavailable, digest sends will fail")
			return nil
		}
		return mailer
	default:
		if cfg.Mail.APIKey == "" {
			return nil
		}
		return communication.NewResendMailer(cfg.Mail.APIKey, cfg.Mail.From)
	}
}

func main() {
	cfg, err := devops.Load()
	if err != nil {
		logging.Log.WithError(err).Fatal("configuration")
	}
	logging.Init(cfg.LogLevel, cfg.Environment)

	secret, err := security.DecodeSecret(cfg.SigningSecret)
	if err != nil {
		logging.Log.WithError(err).Fatal("signing secret")
	}

	db, err := core.Connect(cfg.DSN)
	if err != nil {
		logging.Log.WithError(err).Fatal("database connection")
	}
	if err := core.Migrate(db); err != nil {
		logging.Log.WithError(err).Fatal("database migration")
	}

	ops := communication.NewSlack(cfg.Slack.Token, communication.SlackOption{
		InfoChannelID:  cfg.Slack.InfoChannelID,
		ErrorChannelID: cfg.Slack.ErrorChannelID,
	})

	h := handlers.New(db, buildMailer(cfg), ops, cfg.Mail.AdminEmail, secret)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.POST("/api/auth/login", h.Login)
	r.GET("/api/notices/:uuid", h.GetNotice)

	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(secret))
	{
		protected.POST("/auth/password", h.ChangePassword)

		protected.GET("/customers", h.ListCustomers)
		protected.POST("/customers", h.CreateCustomer)
		protected.GET("/customers/:id", h.GetCustomer)
		protected.PUT("/customers/:id", h.UpdateCustomer)
		protected.DELETE("/customers/:id", h.DeleteCustomer)
		protected.POST("/customers/:id/restore", h.RestoreCustomer)

		protected.GET("/services", h.ListServices)
		protected.POST("/services", h.CreateService)
		protected.PUT("/services/:id", h.UpdateService)
		protected.DELETE("/services/:id", h.DeleteService)

		protected.GET("/subscriptions", h.ListSubscriptions)
		protected.POST("/subscriptions", h.CreateSubscription)
		protected.GET("/subscriptions/:id", h.GetSubscription)
		protected.PUT("/subscriptions/:id", h.UpdateSubscription)
		protected.DELETE("/subscriptions/:id", h.DeleteSubscription)

		protected.GET("/renewals", h.ListRenewals)
		protected.POST("/renewals", h.Renew)

		protected.GET("/notices", h.ListNotices)
		protected.POST("/notices", h.IssueNotice)

		protected.GET("/notifications", h.ListNotifications)
		protected.POST("/notifications/read", h.MarkNotificationRead)
		protected.POST("/notifications/email", h.SendDigestEmail)

		protected.GET("/dashboard", h.GetDashboard)
		protected.POST("/reports", h.Report)
		protected.GET("/reports/export", h.ExportReport)
	}

	logging.Log.WithField("addr", cfg.Addr).Info("starting server")
	if err := r.Run(cfg.Addr); err != nil {
		logging.Log.WithError(err).Fatal("server stopped")
	}
}
