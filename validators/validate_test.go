package validators

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string  `json:"name" validate:"required,min=3,plaintext"`
	Mobile string  `json:"mobile" validate:"omitempty,mobile"`
	Score  *int    `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Note   *string `json:"note,omitempty"`
}

type checked struct {
	A string `json:"a"`
	B string `json:"b"`
}

func (c *checked) Check() map[string]string {
	if c.A == "" && c.B == "" {
		return map[string]string{"a": "Either a or b is required!"}
	}
	return nil
}

func TestStructMessages(t *testing.T) {
	score := 101
	errs := Struct(&sample{Name: "ab", Mobile: "12", Score: &score})
	assert.Equal(t, "Must be at least 3 characters long!", errs["name"])
	assert.Equal(t, "Invalid mobile number!", errs["mobile"])
	assert.Equal(t, "Must be less than or equal to 100!", errs["score"])

	assert.Nil(t, Struct(&sample{Name: "Alice", Mobile: "9876543210"}))
	assert.Equal(t, "Contains invalid characters (e.g., <, >, {, })!", Struct(&sample{Name: "a{b}c"})["name"])
}

func TestStructRunsChecker(t *testing.T) {
	assert.Contains(t, Struct(&checked{}), "a")
	assert.Nil(t, Struct(&checked{B: "x"}))
}

func bodyApp() *fiber.App {
	app := fiber.New()
	app.Post("/", Body[sample](), func(c *fiber.Ctx) error {
		return c.JSON(Request[sample](c))
	})
	app.Get("/:id", ID("id"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func post(t *testing.T, app *fiber.App, payload string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestBody(t *testing.T) {
	app := bodyApp()

	code, out := post(t, app, `{"name":"Alice","score":50}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Alice", out["name"])

	code, out = post(t, app, `{"name":"Al"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Equal(t, "Validation failed!", out["message"])
	assert.Contains(t, out["data"], "name")

	code, _ = post(t, app, `{"name":`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestID(t *testing.T) {
	app := bodyApp()
	for path, want := range map[string]int{
		"/12":  fiber.StatusNoContent,
		"/0":   fiber.StatusUnprocessableEntity,
		"/abc": fiber.StatusUnprocessableEntity,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
