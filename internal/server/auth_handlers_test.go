package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SearchIDs(ctx context.Context, q string) ([]uint, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func TestSignup(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret", JWTExpiresHours: 1},
		userRepo: mockRepo,
	}

	app.Post("/signup", s.Signup)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"first_name": "Jane",
				"last_name":  "Doe",
				"email":      "jane@example.com",
				"password":   "Password123!",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, nil)
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate Email",
			body: map[string]string{
				"first_name": "Jane",
				"last_name":  "Doe",
				"email":      "exists@example.com",
				"password":   "Password123!",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "exists@example.com").Return(&models.User{ID: 1}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Missing Fields",
			body: map[string]string{
				"email":    "jane@example.com",
				"password": "Password123!",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Short Password",
			body: map[string]string{
				"first_name": "Jane",
				"last_name":  "Doe",
				"email":      "jane2@example.com",
				"password":   "short",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Email",
			body: map[string]string{
				"first_name": "Jane",
				"last_name":  "Doe",
				"email":      "not-an-email",
				"password":   "Password123!",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestSignupReturnsTokenAndUser(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 12
	}).Return(nil)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret", JWTExpiresHours: 1},
		userRepo: mockRepo,
	}
	app.Post("/signup", s.Signup)

	body, _ := json.Marshal(map[string]string{
		"first_name": "New",
		"last_name":  "User",
		"email":      "new@example.com",
		"password":   "Password123!",
	})
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, uint(12), payload.User.ID)
	assert.Equal(t, "new@example.com", payload.User.Email)
}

func TestSignin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Correct123!"), bcrypt.MinCost)
	require.NoError(t, err)

	app := fiber.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(&models.User{
		ID:       1,
		Email:    "jane@example.com",
		Password: string(hashed),
	}, nil)
	mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret", JWTExpiresHours: 1},
		userRepo: mockRepo,
	}
	app.Post("/signin", s.Signin)

	signin := func(t *testing.T, email, password string) (*http.Response, string) {
		t.Helper()
		body, _ := json.Marshal(map[string]string{"email": email, "password": password})
		req := httptest.NewRequest(http.MethodPost, "/signin", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return resp, string(raw)
	}

	t.Run("valid credentials return a token", func(t *testing.T) {
		resp, body := signin(t, "jane@example.com", "Correct123!")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "token")
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		respGhost, bodyGhost := signin(t, "ghost@example.com", "whatever")
		respWrong, bodyWrong := signin(t, "jane@example.com", "Wrong123!")

		assert.Equal(t, http.StatusUnauthorized, respGhost.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
		assert.Equal(t, bodyGhost, bodyWrong)
		assert.Contains(t, bodyGhost, "Invalid credentials")
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		resp, _ := signin(t, "jane@example.com", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGenerateToken(t *testing.T) {
	s := &Server{config: &config.Config{JWTSecret: "test_secret", JWTExpiresHours: 2}}

	token, err := s.generateToken(&models.User{ID: 42, Email: "jane@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	t.Run("fails without a secret", func(t *testing.T) {
		s := &Server{config: &config.Config{}}
		_, err := s.generateToken(&models.User{ID: 1})
		assert.Error(t, err)
	})
}
