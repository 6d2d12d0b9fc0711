package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
	"tour-service/internal/domain/entities"
)

type testServer struct {
	echo    *echo.Echo
	auth    *stubAuth
	users   *stubUsers
	tours   *stubTours
	reviews *stubReviews
}

func newTestServer(cfg RouterConfig) *testServer {
	member := &entities.User{Id: primitive.NewObjectID(), Name: "Member", Email: "m@x.com", Password: "$2a$hash", Role: entities.RoleUser, Active: true}
	admin := &entities.User{Id: primitive.NewObjectID(), Name: "Admin", Email: "a@x.com", Role: entities.RoleAdmin, Active: true}

	s := &testServer{
		auth:    &stubAuth{tokens: map[string]*entities.User{"member-token": member, "admin-token": admin}},
		users:   &stubUsers{},
		tours:   &stubTours{},
		reviews: &stubReviews{},
	}
	h := NewHandler(s.auth, s.users, s.tours, s.reviews, zerolog.Nop())
	s.echo = NewRouter(h, cfg, zerolog.Nop())
	return s
}

func (s *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRouter_HealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(RouterConfig{})

	rec := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = s.do(http.MethodGet, "/api/nowhere?x=1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Requested route: /api/nowhere?x=1 not found!", decode(t, rec)["msg"])
}

func TestRouter_AccessGuard(t *testing.T) {
	s := newTestServer(RouterConfig{})

	rec := s.do(http.MethodGet, "/api/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token, authorization denied", decode(t, rec)["msg"])

	rec = s.do(http.MethodGet, "/api/users/me", "", "x-auth-token", "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid", decode(t, rec)["msg"])

	rec = s.do(http.MethodGet, "/api/users/me", "", "x-auth-token", "member-token")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Member", body["name"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, rec.Body.String(), "$2a$hash")

	rec = s.do(http.MethodGet, "/api/auth", "", echo.HeaderAuthorization, "Bearer member-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RestrictTo(t *testing.T) {
	s := newTestServer(RouterConfig{})
	tour := `{"name":"The Forest Hiker","duration":5}`

	rec := s.do(http.MethodPost, "/api/tours", tour, "x-auth-token", "member-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, MsgPermissionDenied, decode(t, rec)["msg"])

	rec = s.do(http.MethodPost, "/api/tours", tour, "x-auth-token", "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The Forest Hiker", decode(t, rec)["name"])

	rec = s.do(http.MethodDelete, "/api/tours/abc", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RegisterValidation(t *testing.T) {
	s := newTestServer(RouterConfig{})

	rec := s.do(http.MethodPost, "/api/users", `{"name":"A","email":"a@x.com","password":"abcdef"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new-token", decode(t, rec)["token"])

	rec = s.do(http.MethodPost, "/api/users", `{"name":"A","email":"nope","password":"abc"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.(map[string]any)["field"].(string)] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])

	rec = s.do(http.MethodPost, "/api/users", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.auth.registerErr = apperrors.NewDuplicateKeyError("This user/email already exists!", nil)
	rec = s.do(http.MethodPost, "/api/users", `{"name":"A","email":"a@x.com","password":"abcdef"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This user/email already exists!", decode(t, rec)["msg"])
}

func TestRouter_LoginFailureIsUnauthorized(t *testing.T) {
	s := newTestServer(RouterConfig{})

	rec := s.do(http.MethodPost, "/api/auth", `{"email":"a@x.com","password":"nope12"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode(t, rec)["msg"])
	assert.Empty(t, rec.Header().Get("Retry-After"))
}

func TestRouter_ThrottledLoginSetsRetryAfter(t *testing.T) {
	s := newTestServer(RouterConfig{})

	rec := s.do(http.MethodPost, "/api/auth", `{"email":"a@x.com","password":"throttled"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "91", rec.Header().Get("Retry-After"))
}

func TestRouter_ErrorDetailDependsOnMode(t *testing.T) {
	cause := errors.New("connection reset")

	prod := newTestServer(RouterConfig{})
	prod.tours.listErr = apperrors.NewServerError("failed to list tours", cause)
	rec := prod.do(http.MethodGet, "/api/tours", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"msg": MsgGenericError}, decode(t, rec))

	dev := newTestServer(RouterConfig{Development: true})
	dev.tours.listErr = apperrors.NewServerError("failed to list tours", cause)
	rec = dev.do(http.MethodGet, "/api/tours", "")
	body := decode(t, rec)
	assert.Equal(t, "failed to list tours", body["msg"])
	assert.Equal(t, "SERVER", body["name"])
	assert.Equal(t, "connection reset", body["detail"])

	prod.tours.listErr = apperrors.NewSafeServerError("There is an error sending this email, please try again later", cause)
	rec = prod.do(http.MethodGet, "/api/tours", "")
	assert.Equal(t, "There is an error sending this email, please try again later", decode(t, rec)["msg"])
}

func TestRouter_TourEndpoints(t *testing.T) {
	s := newTestServer(RouterConfig{})

	rec := s.do(http.MethodGet, "/api/tours?difficulty=easy&price[lte]=500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "easy", s.tours.lastParams.Get("difficulty"))
	assert.Equal(t, "500", s.tours.lastParams.Get("price[lte]"))

	rec = s.do(http.MethodGet, "/api/tours/monthly-plan/2021", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["dataItems"])

	rec = s.do(http.MethodGet, "/api/tours/tour-stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = s.do(http.MethodGet, "/api/tours/tours-within/200/center/34.1,-118.1/unit/mi", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decode(t, rec)["status"])

	id := primitive.NewObjectID().Hex()
	rec = s.do(http.MethodGet, "/api/tours/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Could not find Tour Id: "+id, decode(t, rec)["msg"])
}

func TestRouter_ReviewEndpoints(t *testing.T) {
	s := newTestServer(RouterConfig{})

	rec := s.do(http.MethodGet, "/api/reviews", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(2), body["items"])

	tourID := primitive.NewObjectID().Hex()
	rec = s.do(http.MethodPost, "/api/reviews/"+tourID, `{"description":"Wonderful guides","rating":5}`, "x-auth-token", "member-token")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, tourID, s.reviews.tourID)
	assert.Equal(t, "Member", s.reviews.author.Name)

	rec = s.do(http.MethodPost, "/api/reviews/"+tourID, `{"description":"Wonderful guides","rating":9}`, "x-auth-token", "member-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, "/api/reviews/"+tourID, `{"rating":3}`, "x-auth-token", "member-token")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/reviews/"+tourID, "", "x-auth-token", "member-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Review was deleted", decode(t, rec)["msg"])
}

func TestRouter_PasswordReset(t *testing.T) {
	s := newTestServer(RouterConfig{})

	rec := s.do(http.MethodPost, "/api/users/forgotPassword", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.auth.lastForgot)
	assert.Equal(t, "http://example.com", s.auth.lastForgot.ResetURLBase)

	rec = s.do(http.MethodPatch, "/api/users/resetPassword/raw-token", `{"password":"newpass","passwordConfirm":"newpass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "raw-token", s.auth.lastReset.Token)
	assert.Equal(t, "reset-token", decode(t, rec)["token"])
}

func TestRouter_ForgotPasswordPrefersAppURL(t *testing.T) {
	s := newTestServer(RouterConfig{})
	rec := s.do(http.MethodPost, "http://attacker.test/api/users/forgotPassword", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://attacker.test", s.auth.lastForgot.ResetURLBase)

	h := NewHandler(s.auth, s.users, s.tours, s.reviews, zerolog.Nop()).WithAppURL("https://natours.dev")
	s.echo = NewRouter(h, RouterConfig{}, zerolog.Nop())
	rec = s.do(http.MethodPost, "http://attacker.test/api/users/forgotPassword", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://natours.dev", s.auth.lastForgot.ResetURLBase)
}

func TestRouter_UpdateMe(t *testing.T) {
	s := newTestServer(RouterConfig{})

	rec := s.do(http.MethodPatch, "/api/users/updateMe", `{"name":"Renamed"}`, "x-auth-token", "member-token")
	require.Equal(t, http.StatusOK, rec.Code)
	user, ok := decode(t, rec)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Renamed", user["name"])
}

func TestRouter_GlobalRateLimit(t *testing.T) {
	s := newTestServer(RouterConfig{APIRate: 0.001, APIBurst: 1})

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "").Code)
	rec := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, MsgTooManyRequests, decode(t, rec)["msg"])
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, tokenFromRequest(req))

	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	assert.Equal(t, "abc", tokenFromRequest(req))

	req.Header.Set(echo.HeaderAuthorization, "Basic abc")
	assert.Empty(t, tokenFromRequest(req))

	req.Header.Set("x-auth-token", "xyz")
	assert.Equal(t, "xyz", tokenFromRequest(req))
}
