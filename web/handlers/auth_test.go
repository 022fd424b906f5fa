package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginIssuesToken(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "s3cret",
	}, false)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "admin", data["username"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "nope",
	}, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "ghost",
		"password": "s3cret",
	}, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/customers", nil, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/password", map[string]string{
		"current_password": "s3cret",
		"new_password":     "newpass",
	}, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "newpass",
	}, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "s3cret",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePasswordTooShort(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/password", map[string]string{
		"current_password": "s3cret",
		"new_password":     "abc",
	}, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/password", map[string]string{
		"current_password": "wrong",
		"new_password":     "newpass",
	}, true)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
