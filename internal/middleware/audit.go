package middleware

import (
	"log"
	"net/http"
	"time"

	"storefront/internal/common"

	"github.com/labstack/echo/v4"
)

// AuditAdminActions logs every state-changing request made through an admin route
func AuditAdminActions() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			actor := "anonymous"
			if viewer, ok := common.GetViewerFromContext(c.Request().Context()); ok {
				actor = viewer.UserID.String()
			}
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			log.Printf("AUDIT: actor=%s action=%s %s resource=%s status=%d duration=%s",
				actor, method, c.Path(), c.Param("id"), status, time.Since(start))
			return err
		}
	}
}
