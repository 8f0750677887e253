package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	"github.com/yukikurage/taskflow/internal/services"
)

type WeatherHandler struct {
	weatherService *services.WeatherService
}

func NewWeatherHandler(weatherService *services.WeatherService) *WeatherHandler {
	return &WeatherHandler{
		weatherService: weatherService,
	}
}

// GetWeather returns current conditions at ?lat=&lon=. Any upstream failure
// answers 204 and the widget renders nothing.
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		apierrors.BadRequest(c, "lat must be a number")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		apierrors.BadRequest(c, "lon must be a number")
		return
	}

	weather, err := h.weatherService.Fetch(c.Request.Context(), services.Coordinates{
		Latitude:  lat,
		Longitude: lon,
	})
	switch {
	case errors.Is(err, services.ErrInvalidCoordinates):
		respondError(c, err)
	case errors.Is(err, services.ErrWeatherDisabled):
		c.Status(http.StatusNoContent)
	case err != nil:
		_ = c.Error(err)
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, weather)
	}
}
