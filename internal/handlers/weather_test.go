package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow/internal/services"
)

func newWeatherRouter(svc *services.WeatherService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/weather", NewWeatherHandler(svc).GetWeather)
	return r
}

func TestWeatherHandler_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "35.5", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"main":{"temp":18.2,"humidity":55},"weather":[{"main":"Clouds","description":"overcast clouds"}]}`))
	}))
	defer upstream.Close()

	r := newWeatherRouter(services.NewWeatherService(upstream.Client(), upstream.URL, "k"))
	w := performJSON(r, http.MethodGet, "/api/weather?lat=35.5&lon=139.7", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[services.Weather](t, w)
	assert.Equal(t, 18, body.TemperatureRounded)
	assert.Equal(t, services.IconCloud, body.Icon)
	assert.Equal(t, "overcast clouds", body.Description)
}

func TestWeatherHandler_FailuresRenderNothing(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	w := performJSON(newWeatherRouter(services.NewWeatherService(upstream.Client(), upstream.URL, "k")),
		http.MethodGet, "/api/weather?lat=1&lon=2", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = performJSON(newWeatherRouter(services.NewWeatherService(nil, "", "")),
		http.MethodGet, "/api/weather?lat=1&lon=2", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "disabled widget")
}

func TestWeatherHandler_BadCoordinates(t *testing.T) {
	r := newWeatherRouter(services.NewWeatherService(nil, "http://unused", "k"))

	for _, query := range []string{"", "?lat=abc&lon=1", "?lat=1", "?lat=95&lon=0"} {
		w := performJSON(r, http.MethodGet, "/api/weather"+query, nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}
