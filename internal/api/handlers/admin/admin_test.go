package admin_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"calorie-chat/internal/api/handlers/admin"
	"calorie-chat/internal/core/match"
	"calorie-chat/internal/core/missing"
	"calorie-chat/internal/pkg/common"
	"calorie-chat/internal/pkg/similarity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *missing.Log) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dishes := []match.DishRecord{
		{ID: 1, Name: "Shawarma", Country: "lebanon", Calories: 820, WeightG: 350},
		{ID: 2, Name: "Tabbouleh", Country: "lebanon", Calories: 180, WeightG: 200},
		{ID: 3, Name: "Kushari", Country: "egypt", Calories: 600, WeightG: 400},
	}
	engine := match.NewEngine(dishes, nil, nil, similarity.NewEditDistance())
	log := missing.NewLog(filepath.Join(t.TempDir(), "missing.json"))

	h := admin.NewHandler(engine, log)
	r := gin.New()
	r.GET("/countries", h.HandleListCountries)
	r.GET("/countries/:code", h.HandleGetCountry)
	r.GET("/missing-dishes", h.HandleMissingDishes)
	r.POST("/missing-dishes/resolve", h.HandleResolveMissingDish)
	return r, log
}

func TestHandleListCountries(t *testing.T) {
	r, _ := newRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/countries", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var countries []common.CountryInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &countries))
	require.Len(t, countries, len(common.SupportedCountries))

	byCode := map[string]common.CountryInfo{}
	for _, c := range countries {
		byCode[c.Code] = c
	}
	assert.Equal(t, 2, byCode["lebanon"].DishCount)
	assert.Equal(t, 1, byCode["egypt"].DishCount)
	assert.Equal(t, 0, byCode["morocco"].DishCount)
}

func TestHandleGetCountry(t *testing.T) {
	r, _ := newRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/countries/Lebanon", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var country common.CountryInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &country))
	assert.Equal(t, "lebanon", country.Code)
	assert.Equal(t, 2, country.DishCount)
}

func TestHandleGetCountry_Unknown(t *testing.T) {
	r, _ := newRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/countries/atlantis", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleMissingDishes_AndResolve(t *testing.T) {
	r, log := newRouter(t)
	log.Record("mystery stew", "lebanon", "")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing-dishes", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		MissingDishes []missing.Entry `json:"missing_dishes"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.MissingDishes, 1)
	assert.Equal(t, "mystery stew", resp.MissingDishes[0].Query)

	body := strings.NewReader(`{"query": "mystery stew", "country": "lebanon"}`)
	req := httptest.NewRequest(http.MethodPost, "/missing-dishes/resolve", body)
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Empty(t, log.Unresolved())
}
