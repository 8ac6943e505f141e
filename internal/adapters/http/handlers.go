package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/mapcompose"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
	"github.com/samirrijal/fifteenmap/internal/core/usecases"
)

type submitRequest struct {
	Address string `json:"address"`
}

// CreateSessionHandler starts a new idle session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := deps.Sessions.Create(c.UserContext())
		c.Set("Location", "/v1/sessions/"+sess.ID)
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// GetSessionHandler returns the current state of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.UserContext(), c.Params("id"))
		if errors.Is(err, usecases.ErrSessionNotFound) {
			return errNotFound(c, "session not found")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(sess)
	}
}

// SubmitSessionHandler runs the pipeline for the submitted address and
// responds with the finished session. Failed runs keep the session body and
// carry the status of their error kind.
func SubmitSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req submitRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		sess, err := deps.Sessions.Submit(c.UserContext(), c.Params("id"), req.Address)
		switch {
		case errors.Is(err, usecases.ErrSessionNotFound):
			return errNotFound(c, "session not found")
		case errors.Is(err, domain.ErrEmptyAddress):
			return errBadRequest(c, "address is required")
		case errors.Is(err, domain.ErrStaleResult):
			return errConflict(c, "superseded by a newer submission")
		case err != nil:
			return errInternal(c, err.Error())
		}

		status := fiber.StatusOK
		if sess.State == domain.StateError && sess.Error != nil {
			status, _ = pipelineStatus(sess.Error.Kind)
		}
		return c.Status(status).JSON(sess)
	}
}

// MapHandler returns the composed map document for ?address=.
func MapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := deps.Maps.Build(c.UserContext(), c.Query("address"))
		if err != nil {
			return errPipeline(c, err)
		}
		return c.JSON(doc)
	}
}

// MapHTMLHandler renders the composed map as a standalone page.
func MapHTMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := deps.Maps.Build(c.UserContext(), c.Query("address"))
		if err != nil {
			return errPipeline(c, err)
		}
		return renderMapHTML(c, doc)
	}
}

// LayerHandler returns a single layer of the map as a GeoJSON FeatureCollection.
func LayerHandler(deps *Dependencies, layer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := deps.Maps.Build(c.UserContext(), c.Query("address"))
		if err != nil {
			return errPipeline(c, err)
		}
		l := doc.Layer(layer)
		if l == nil {
			return errNotFound(c, "layer "+layer+" not found")
		}
		if err := c.JSON(l.Features); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return nil
	}
}

// IsochronesHandler returns the isochrone polygons for ?address=.
func IsochronesHandler(deps *Dependencies) fiber.Handler {
	return LayerHandler(deps, mapcompose.LayerIsochrones)
}

// AmenitiesHandler returns the reachable amenities for ?address=.
func AmenitiesHandler(deps *Dependencies) fiber.Handler {
	return LayerHandler(deps, mapcompose.LayerAmenities)
}

// RecentPlacesHandler lists the most recently computed places. Without a
// database it returns an empty list.
func RecentPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Places == nil {
			return c.JSON([]domain.PlaceRecord{})
		}
		places, err := deps.Places.Recent(c.UserContext(), c.QueryInt("limit", 0))
		if err != nil {
			return errInternal(c, err.Error())
		}
		if places == nil {
			places = []domain.PlaceRecord{}
		}
		return c.JSON(places)
	}
}

// PlaceHandler returns the stored history entry of one address.
func PlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address := strings.TrimSpace(c.Query("address"))
		if address == "" {
			return errBadRequest(c, "address is required")
		}
		if deps.Places == nil {
			return errNotFound(c, "place history not configured")
		}
		rec, err := deps.Places.GetByAddress(c.UserContext(), address)
		if err != nil {
			if errors.Is(err, ports.ErrPlaceNotFound) {
				return errNotFound(c, "place not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(rec)
	}
}
