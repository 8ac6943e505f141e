package http

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/mapcompose"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
)

// gqlIsochrone is the GraphQL view of one isochrone feature.
type gqlIsochrone struct {
	TripTime int    `json:"trip_time"`
	Color    string `json:"color"`
	Geometry string `json:"geometry"`
}

// gqlAmenity is the GraphQL view of one amenity feature.
type gqlAmenity struct {
	ID       string          `json:"id"`
	Amenity  string          `json:"amenity"`
	Name     string          `json:"name"`
	Color    string          `json:"color"`
	Location domain.GeoPoint `json:"location"`
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapStats",
		Fields: graphql.Fields{
			"nodes":     &graphql.Field{Type: graphql.Int},
			"edges":     &graphql.Field{Type: graphql.Int},
			"amenities": &graphql.Field{Type: graphql.Int},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"query":        &graphql.Field{Type: graphql.String},
			"display_name": &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: geoPointType},
		},
	})

	isochroneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Isochrone",
		Fields: graphql.Fields{
			"trip_time": &graphql.Field{Type: graphql.Int},
			"color":     &graphql.Field{Type: graphql.String},
			"geometry":  &graphql.Field{Type: graphql.String, Description: "GeoJSON geometry"},
		},
	})

	amenityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Amenity",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"amenity":  &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"color":    &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
		},
	})

	mapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Map",
		Fields: graphql.Fields{
			"address":     &graphql.Field{Type: graphql.String},
			"place":       &graphql.Field{Type: placeType},
			"center":      &graphql.Field{Type: geoPointType},
			"stats":       &graphql.Field{Type: statsType},
			"computed_at": &graphql.Field{Type: graphql.DateTime},
			"isochrones": &graphql.Field{
				Type: graphql.NewList(isochroneType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return isochronesOf(p.Source.(*domain.MapDocument))
				},
			},
			"amenities": &graphql.Field{
				Type: graphql.NewList(amenityType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return amenitiesOf(p.Source.(*domain.MapDocument)), nil
				},
			},
		},
	})

	placeRecordType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlaceRecord",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"address":      &graphql.Field{Type: graphql.String},
			"display_name": &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: geoPointType},
			"stats":        &graphql.Field{Type: statsType},
			"computed_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"map": &graphql.Field{
				Type:        mapType,
				Description: "Compose the 5/10/15-minute walking map of an address",
				Args: graphql.FieldConfigArgument{
					"address": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					doc, err := deps.Maps.Build(p.Context, p.Args["address"].(string))
					if err != nil {
						return nil, errors.New(domain.Classify(err).UserMessage())
					}
					return doc, nil
				},
			},
			"recentPlaces": &graphql.Field{
				Type:        graphql.NewList(placeRecordType),
				Description: "Most recently computed places",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Places == nil {
						return []domain.PlaceRecord{}, nil
					}
					return deps.Places.Recent(p.Context, p.Args["limit"].(int))
				},
			},
			"place": &graphql.Field{
				Type:        placeRecordType,
				Description: "Stored history entry of an address",
				Args: graphql.FieldConfigArgument{
					"address": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Places == nil {
						return nil, nil
					}
					rec, err := deps.Places.GetByAddress(p.Context, p.Args["address"].(string))
					if errors.Is(err, ports.ErrPlaceNotFound) {
						return nil, nil
					}
					return rec, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func isochronesOf(doc *domain.MapDocument) ([]gqlIsochrone, error) {
	layer := doc.Layer(mapcompose.LayerIsochrones)
	if layer == nil {
		return nil, nil
	}
	out := make([]gqlIsochrone, 0, len(layer.Features.Features))
	for _, f := range layer.Features.Features {
		geom, err := json.Marshal(geojson.NewGeometry(f.Geometry))
		if err != nil {
			return nil, err
		}
		out = append(out, gqlIsochrone{
			TripTime: intProp(f.Properties, "trip_time"),
			Color:    f.Properties.MustString("color", ""),
			Geometry: string(geom),
		})
	}
	return out, nil
}

func amenitiesOf(doc *domain.MapDocument) []gqlAmenity {
	layer := doc.Layer(mapcompose.LayerAmenities)
	if layer == nil {
		return nil
	}
	out := make([]gqlAmenity, 0, len(layer.Features.Features))
	for _, f := range layer.Features.Features {
		var loc orb.Point
		if pt, ok := f.Geometry.(orb.Point); ok {
			loc = pt
		} else {
			loc = f.Geometry.Bound().Center()
		}
		id, _ := f.ID.(string)
		out = append(out, gqlAmenity{
			ID:       id,
			Amenity:  f.Properties.MustString("amenity", ""),
			Name:     f.Properties.MustString("name", ""),
			Color:    f.Properties.MustString("color", ""),
			Location: domain.GeoPointFrom(loc),
		})
	}
	return out
}

// intProp reads an integer property that may have been decoded from JSON as float64.
func intProp(p geojson.Properties, key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
