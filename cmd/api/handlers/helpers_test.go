package handlers

import (
	"net/http/httptest"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/auth"
	"github.com/promptmyrep/civic/cmd/api/middleware"
)

// newContext builds an echo context for method/target with an optional JSON body.
// A non-nil user is stored as the session user.
func newContext(method, target, body string, user *auth.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(string(middleware.UserKey), user)
	}
	return c, rec
}

func testUser() *auth.User {
	return &auth.User{ID: uuid.MustParse("6f1c1d1e-2b3a-4c5d-8e9f-0a1b2c3d4e5f"), Email: "ada@example.org"}
}
