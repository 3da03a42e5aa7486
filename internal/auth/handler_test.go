package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fitstack/fitness-platform/internal/rbac"
)

// Mock ServiceAPI for handler tests
type mockServiceAPI struct {
	claims      *Claims
	user        *User
	touched     []string
	touchErr    error
	validateErr error
}

func (m *mockServiceAPI) Register(dto RegisterDTO) (*User, error) { return m.user, nil }
func (m *mockServiceAPI) Login(dto LoginDTO, userAgent, ipAddress string) (AuthTokens, error) {
	return AuthTokens{}, nil
}
func (m *mockServiceAPI) Refresh(refreshToken string) (AuthTokens, error) { return AuthTokens{}, nil }
func (m *mockServiceAPI) Logout(accessToken string) error                 { return nil }

func (m *mockServiceAPI) ValidateAccessToken(tokenString string) (*Claims, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return m.claims, nil
}

func (m *mockServiceAPI) GetUserWithPermissions(userID int64) (*User, error) {
	if m.user == nil {
		return nil, ErrUserNotFound
	}
	return m.user, nil
}

func (m *mockServiceAPI) TouchSession(sessionID string) error {
	m.touched = append(m.touched, sessionID)
	return m.touchErr
}

var _ = Describe("AuthMiddleware", func() {
	var (
		svc     *mockServiceAPI
		handler *Handler
		next    http.Handler
		rec     *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		svc = &mockServiceAPI{
			claims: &Claims{UserID: "7", Email: "user@fitstack.io", SessionID: "sess-42"},
			user:   &User{ID: 7, Email: "user@fitstack.io", Permissions: []rbac.Permission{}},
		}
		handler = NewHandler(svc)
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		rec = httptest.NewRecorder()
	})

	request := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		return req
	}

	It("should touch the session named by the token on every request", func() {
		handler.AuthMiddleware(next).ServeHTTP(rec, request())

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.touched).To(Equal([]string{"sess-42"}))
	})

	It("should serve the request even when the activity touch fails", func() {
		svc.touchErr = errors.New("db down")

		handler.AuthMiddleware(next).ServeHTTP(rec, request())

		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should not touch anything when the token is rejected", func() {
		svc.validateErr = ErrInvalidToken

		handler.AuthMiddleware(next).ServeHTTP(rec, request())

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(svc.touched).To(BeEmpty())
	})

	It("should reject requests without a bearer token", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts", nil)

		handler.AuthMiddleware(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(svc.touched).To(BeEmpty())
	})

	It("should hydrate the request context with the user", func() {
		var got *User
		inspect := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		handler.AuthMiddleware(inspect).ServeHTTP(rec, request())

		Expect(got).NotTo(BeNil())
		Expect(got.ID).To(Equal(int64(7)))
	})
})
