package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers may set their own header; failed responses are never cached because
// a retry can succeed once the upstream services recover.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.Get(fiber.HeaderCacheControl); existing != "" {
			return err
		}
		if c.Response().StatusCode() >= 400 {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return err
		}

		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case strings.HasPrefix(path, "/v1/sessions"):
		return "no-store" // per-browser state
	case path == "/v1/map" || path == "/v1/map.html" ||
		path == "/v1/isochrones" || path == "/v1/amenities":
		return "public, max-age=3600" // results are memoised per address
	case strings.HasPrefix(path, "/v1/places"):
		return "public, max-age=60"
	case path == "/" || strings.HasPrefix(path, "/docs"):
		return "public, max-age=300"
	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=300"
	}
	return ""
}
