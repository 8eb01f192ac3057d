package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learningcenter/pkg/logger"
	"learningcenter/pkg/middleware"
	"learningcenter/pkg/response"
	"learningcenter/pkg/security"
	"learningcenter/services/auth-service/internal/application/usecase"
	"learningcenter/services/auth-service/internal/domain"
	"learningcenter/services/auth-service/internal/infrastructure/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mapStore map[string]string

func (s mapStore) SaveRefresh(_ context.Context, id, user string, _ time.Duration) error {
	s[id] = user
	return nil
}

func (s mapStore) ConsumeRefresh(_ context.Context, id string) (bool, error) {
	_, ok := s[id]
	delete(s, id)
	return ok, nil
}

func (s mapStore) DeleteRefresh(_ context.Context, id string) error {
	delete(s, id)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *security.TokenManager) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(repository.Models()...))
	repo := repository.NewUserRepository(db)
	require.NoError(t, repo.SeedRoles(context.Background(), domain.Roles()))

	log := logger.Nop()
	tm := security.NewTokenManager("access", "refresh", 0, 0)
	uc := usecase.NewAuthUseCase(repo, mapStore{}, security.NewPasswordHasherWithCost(bcrypt.MinCost), tm, log)
	h := NewAuthHandler(uc, "", false, int(tm.RefreshTTL().Seconds()))
	return NewRouter("auth-service-test", nil, log, h, middleware.NewRateLimiter(nil, log)), tm
}

func post(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticationFlow(t *testing.T) {
	r, tm := newTestRouter(t)
	const base = "/api/v1/authentication"

	w := post(r, base+"/sign-up", gin.H{"username": "ada", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, base+"/sign-up", gin.H{"username": "ada", "password": "secret1", "roles": []string{"ROLE_INSTRUCTOR"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var user userResource
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, []string{"ROLE_INSTRUCTOR"}, user.Roles)

	w = post(r, base+"/sign-up", gin.H{"username": "ada", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(r, base+"/sign-in", gin.H{"username": "ada", "password": "bad-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "invalid_credentials", env.Error.Code)

	w = post(r, base+"/sign-in", gin.H{"username": "ada", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	claims, err := tm.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	w = post(r, base+"/refresh", gin.H{"refreshToken": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	old := tokens.RefreshToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))

	w = post(r, base+"/refresh", gin.H{"refreshToken": old})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(r, base+"/sign-out", gin.H{"refreshToken": tokens.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code)
	w = post(r, base+"/refresh", gin.H{"refreshToken": tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(r, base+"/refresh", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
