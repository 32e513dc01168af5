package middleware

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"storefront/internal/common"

	"github.com/labstack/echo/v4"
)

const (
	VersionActive     = "active"
	VersionDeprecated = "deprecated"
	VersionSunset     = "sunset"
)

// APIVersion describes the lifecycle of one URL version prefix
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"`
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// VersionMiddleware routes /vN prefixes and advertises their status in headers
type VersionMiddleware struct {
	versions       map[string]APIVersion
	defaultVersion string
}

var versionPrefix = regexp.MustCompile(`^/(v[1-9][0-9]*)(/|$)`)

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		versions: map[string]APIVersion{
			"v1": {Version: "v1", Status: VersionActive, Message: "Current stable API version"},
		},
		defaultVersion: "v1",
	}
}

// Register adds or replaces a version entry
func (vm *VersionMiddleware) Register(v APIVersion) {
	vm.versions[v.Version] = v
}

// VersionHeader stamps X-API-Version and, for deprecated versions, the sunset headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version)

			if ver, ok := vm.versions[version]; ok {
				if ver.Status == VersionDeprecated && ver.SunsetDate != nil {
					h.Set("X-API-Deprecated", "true")
					h.Set("X-API-Sunset", ver.SunsetDate.Format(time.RFC3339))
					h.Set("Warning", `299 storefront "This API version is deprecated and will be removed on `+ver.SunsetDate.Format("2006-01-02")+`"`)
				}
				if ver.Message != "" {
					h.Set("X-API-Message", ver.Message)
				}
			}
			return next(c)
		}
	}
}

// VersionRoute returns the /<version> group with version headers applied
func (vm *VersionMiddleware) VersionRoute(e *echo.Echo, version string) *echo.Group {
	return e.Group("/"+version, vm.VersionHeader(version))
}

// APIVersionResolver rejects unknown or sunset version prefixes before routing
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := vm.defaultVersion
			if m := versionPrefix.FindStringSubmatch(c.Request().URL.Path); m != nil {
				version = m[1]
				ver, ok := vm.versions[version]
				if !ok || ver.Status == VersionSunset {
					details := map[string]string{"supported_versions": vm.supported()}
					return c.JSON(http.StatusNotFound, common.CreateErrorResponse("UNSUPPORTED_VERSION", "Unsupported API version", details))
				}
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

func (vm *VersionMiddleware) supported() string {
	var out []string
	for v, info := range vm.versions {
		if info.Status != VersionSunset {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
