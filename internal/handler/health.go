package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health answers liveness probes from load balancers and uptime monitors.
// It touches no downstream dependency so a degraded database or broker does
// not flap the probe.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
