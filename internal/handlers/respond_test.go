package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhive/workhive_be/internal/apperr"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("project not found"), fiber.StatusNotFound},
		{apperr.Forbidden("not yours"), fiber.StatusForbidden},
		{apperr.InvalidState("project is not open"), fiber.StatusConflict},
		{apperr.InvalidTransition("open", "completed"), fiber.StatusConflict},
		{apperr.InvalidRange("progress out of range"), fiber.StatusBadRequest},
		{apperr.Persistence(errors.New("boom")), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, httpStatus(tc.err), tc.err.Error())
	}
}

func failApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fail(c, err)
	})
	return app
}

func TestFailEnvelope(t *testing.T) {
	app := failApp(apperr.InvalidTransition("open", "completed"))

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "invalid_transition", body.Code)
	assert.Contains(t, body.Message, `"open"`)
	assert.Contains(t, body.Message, `"completed"`)
}

func TestFailHidesPersistenceCause(t *testing.T) {
	app := failApp(apperr.Persistence(errors.New("password=hunter2 dial failed")))

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Message)
	assert.Equal(t, "persistence_failure", body.Code)
}

func TestFailFiberErrorPassthrough(t *testing.T) {
	app := failApp(fiber.ErrUnauthorized)

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetAuth(t *testing.T) {
	app := fiber.New()
	uid := uuid.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals("userId", uid.String())
		got, err := getAuth(c)
		require.NoError(t, err)
		assert.Equal(t, uid, got)
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/anon", func(c *fiber.Ctx) error {
		_, err := getAuth(c)
		assert.ErrorIs(t, err, fiber.ErrUnauthorized)
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/me", "/anon"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestValidTopic(t *testing.T) {
	assert.True(t, validTopic("project:"+uuid.NewString()))
	assert.False(t, validTopic("project:not-a-uuid"))
	assert.False(t, validTopic("user:"+uuid.NewString()))
	assert.False(t, validTopic(""))
}
