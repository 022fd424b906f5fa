package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/utils"
)

func TestNotificationFeed(t *testing.T) {
	e := newEnv(t)
	customer := e.seedCustomer(t, "Acme")
	service := e.seedServiceType(t, "Hosting")
	today := utils.Today()
	e.seedSubscription(t, customer, service, "old.example", utils.AddDays(today, -2), "10.00")
	e.seedSubscription(t, customer, service, "soon.example", utils.AddDays(today, 12), "10.00")
	e.seedSubscription(t, customer, service, "fine.example", utils.AddDays(today, 200), "10.00")

	w := e.do(t, http.MethodGet, "/api/notifications", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Notifications []map[string]interface{} `json:"notifications"`
			UnreadCount   int                      `json:"unread_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Notifications, 2)
	assert.Equal(t, 2, envelope.Data.UnreadCount)
}

func TestMarkNotificationRead(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/notifications/read", map[string]string{
		"id": "live_1",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)

	// Idempotent.
	w = e.do(t, http.MethodPost, "/api/notifications/read", map[string]string{
		"id": "live_1",
	}, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSendDigestEmail(t *testing.T) {
	e := newEnv(t)
	customer := e.seedCustomer(t, "Acme")
	service := e.seedServiceType(t, "Hosting")
	today := utils.Today()
	e.seedSubscription(t, customer, service, "old.example", utils.AddDays(today, -2), "10.00")
	e.seedSubscription(t, customer, service, "soon.example", utils.AddDays(today, 12), "10.00")

	w := e.do(t, http.MethodPost, "/api/notifications/email", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, true, data["sent"])
	assert.Equal(t, "ops@example.com", data["recipient"])
	assert.Len(t, e.mailer.sent, 1)

	var record core.Notification
	require.NoError(t, e.db.Where("type = ?", "email_sent").First(&record).Error)
}

func TestSendDigestEmailNothingDue(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/notifications/email", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeData(t, w)["sent"])
	assert.Empty(t, e.mailer.sent)
}

func TestSendDigestEmailProviderFailure(t *testing.T) {
	e := newEnv(t)
	e.mailer.err = errors.New("upstream 500")
	customer := e.seedCustomer(t, "Acme")
	service := e.seedServiceType(t, "Hosting")
	e.seedSubscription(t, customer, service, "soon.example", utils.AddDays(utils.Today(), 5), "10.00")

	w := e.do(t, http.MethodPost, "/api/notifications/email", nil, true)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var count int64
	require.NoError(t, e.db.Model(&core.Notification{}).Where("type = ?", "email_sent").Count(&count).Error)
	assert.Zero(t, count)
}
