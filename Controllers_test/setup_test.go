package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/config"
	"github.com/yeremiapane/comanda-app/database/dbtest"
	"github.com/yeremiapane/comanda-app/router"
	"github.com/yeremiapane/comanda-app/utils"
	"gorm.io/gorm"
)

const jwtSecret = "controllers-test-secret"

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	fx     dbtest.Fixture
	router *gin.Engine
	token  string
	other  string
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.CORSOrigin = "*"
	cfg.JWT.Secret = jwtSecret
	cfg.RateLimit.RPS = 1000
	cfg.RateLimit.Burst = 1000
	cfg.Comanda.MergeMaxRetries = 3
	cfg.Comanda.MergeBaseDelay = time.Millisecond
	return cfg
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	fx := dbtest.Seed(t, db)

	r, err := router.SetupRouter(router.Deps{DB: db, Config: testConfig()})
	require.NoError(t, err)

	token, err := utils.GenerateToken([]byte(jwtSecret), fx.Usuario.ID.String(), fx.Empresa.ID.String(), fx.Usuario.Papel, time.Hour)
	require.NoError(t, err)
	other, err := utils.GenerateToken([]byte(jwtSecret), "outro", fx.Outra.ID.String(), "ADMIN", time.Hour)
	require.NoError(t, err)

	return &testAPI{t: t, db: db, fx: fx, router: r, token: token, other: other}
}

func (a *testAPI) do(method, path, token string, body any) (int, apiResponse) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
