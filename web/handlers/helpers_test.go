package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/security"
	"renewtrack.com/renewtrack/utils"
	"renewtrack.com/renewtrack/web/middlewares"
)

var handlerTestSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

type env struct {
	db     *gorm.DB
	router *gin.Engine
	mailer *fakeMailer
	token  string
}

// newEnv stands up the full route table over an in-memory store with one
// seeded admin user, mirroring the wiring in web/main.go.
func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, core.Migrate(db))

	hash, err := security.HashPassword("s3cret")
	require.NoError(t, err)
	require.NoError(t, db.Create(&core.User{Username: "admin", PasswordHash: hash}).Error)

	mailer := &fakeMailer{}
	h := New(db, mailer, nil, "ops@example.com", handlerTestSecret)

	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/notices/:uuid", h.GetNotice)

	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(handlerTestSecret))
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

	token, err := security.CreateIdentityToken("admin", handlerTestSecret, time.Hour)
	require.NoError(t, err)

	return &env{db: db, router: r, mailer: mailer, token: token}
}

func (e *env) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func (e *env) seedCustomer(t *testing.T, name string) core.Customer {
	t.Helper()
	c := core.Customer{Name: name, Email: name + "@example.com"}
	require.NoError(t, e.db.Create(&c).Error)
	return c
}

func (e *env) seedServiceType(t *testing.T, name string) core.ServiceType {
	t.Helper()
	st := core.ServiceType{Name: name, IsActive: true}
	require.NoError(t, e.db.Create(&st).Error)
	return st
}

func (e *env) seedSubscription(t *testing.T, customer core.Customer, service core.ServiceType, domain string, endDate time.Time, price string) core.Subscription {
	t.Helper()
	sub := core.Subscription{
		CustomerID:      customer.ID,
		ServiceTypeID:   service.ID,
		DomainOrService: domain,
		StartDate:       utils.AddDays(endDate, -core.RenewalPeriodDays),
		EndDate:         endDate,
		Price:           decimal.RequireFromString(price),
		Currency:        core.DefaultCurrency,
		Status:          core.DeriveStatus(endDate, utils.Today()),
	}
	require.NoError(t, e.db.Create(&sub).Error)
	return sub
}
