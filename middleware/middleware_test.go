package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"learnhub/actions"
	"learnhub/database"
	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sessionApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTMiddleware(secret), func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		return c.JSON(fiber.Map{"id": sess.UserID, "email": sess.Email, "role": sess.Role})
	})
	return app
}

func body(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(secret, 7, "Ada", models.RoleInstructor, "ada@example.com", "9876543210")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := sessionApp().Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	got := body(t, resp.Body)
	assert.EqualValues(t, 7, got["id"])
	assert.Equal(t, "ada@example.com", got["email"])
	assert.Equal(t, models.RoleInstructor, got["role"])
}

func TestJWTRejects(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 1, "email": "a@example.com",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, _ := expired.SignedString([]byte(secret))
	foreignToken, _ := GenerateJWT("other-secret", 1, "", "", "a@example.com", "")

	cases := map[string]string{
		"missing":   "",
		"no bearer": "Token abc",
		"garbage":   "Bearer abc.def.ghi",
		"expired":   "Bearer " + expiredToken,
		"foreign":   "Bearer " + foreignToken,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := sessionApp().Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestSessionFromWithoutToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Nil(t, SessionFrom(c))
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
}

func TestActionResponse(t *testing.T) {
	cases := []struct {
		res  actions.Result
		code int
		kind string
	}{
		{actions.Result{Success: true, Data: 1}, fiber.StatusCreated, ""},
		{actions.Result{Error: &actions.Error{Kind: actions.Unauthorized, Detail: "Unauthorized"}}, fiber.StatusUnauthorized, "unauthorized"},
		{actions.Result{Error: &actions.Error{Kind: actions.PermissionDenied, Detail: "no"}}, fiber.StatusForbidden, "permission_denied"},
		{actions.Result{Error: &actions.Error{Kind: actions.Validation, Detail: "bad"}}, fiber.StatusUnprocessableEntity, "validation"},
		{actions.Result{Error: &actions.Error{Kind: actions.NotFound, Detail: "gone"}}, fiber.StatusNotFound, "not_found"},
		{actions.Result{Error: &actions.Error{Kind: actions.Persistence, Detail: "Failed to x"}}, fiber.StatusInternalServerError, "persistence"},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error {
			return ActionResponse(c, fiber.StatusCreated, "ok", tc.res)
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.code, resp.StatusCode)

		got := body(t, resp.Body)
		assert.Equal(t, tc.res.Success, got["status"])
		if tc.kind != "" {
			assert.Equal(t, tc.kind, got["kind"])
			assert.Equal(t, tc.res.Error.Detail, got["message"])
		}
	}
}

func TestCheckPermission(t *testing.T) {
	db, err := database.OpenSqlite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Email: "i@example.com", Password: "x"}).Error)
	require.NoError(t, db.Create(&models.Permission{UserID: 1, Permission: models.PermissionManageCourses}).Error)

	app := fiber.New()
	app.Get("/:uid", func(c *fiber.Ctx) error {
		uid, _ := c.ParamsInt("uid")
		c.Locals("userId", uint(uid))
		return c.Next()
	}, CheckPermission(db, models.PermissionManageCourses), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
