package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/boddenberg/revomotors-web/internal/domain"
)

// Makes lists every make in the car database.
func (c *Client) Makes(ctx context.Context) (*domain.MakeList, error) {
	var out domain.MakeList
	if err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/cars/makes",
		endpoint: "GET /api/cars/makes",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Models lists the models of carMake.
func (c *Client) Models(ctx context.Context, carMake string) (*domain.ModelList, error) {
	var out domain.ModelList
	if err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/cars/models",
		endpoint: "GET /api/cars/models",
		query:    url.Values{"make": {carMake}},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Years lists the model years of a make/model pair.
func (c *Client) Years(ctx context.Context, carMake, model string) (*domain.YearList, error) {
	var out domain.YearList
	if err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/cars/years",
		endpoint: "GET /api/cars/years",
		query:    url.Values{"make": {carMake}, "model": {model}},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trims lists the trims of a make/model pair.
func (c *Client) Trims(ctx context.Context, carMake, model string) (*domain.TrimList, error) {
	var out domain.TrimList
	if err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/cars/trims",
		endpoint: "GET /api/cars/trims",
		query:    url.Values{"make": {carMake}, "model": {model}},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BodyTypes lists all body types.
func (c *Client) BodyTypes(ctx context.Context) (*domain.BodyTypeList, error) {
	var out domain.BodyTypeList
	if err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/cars/all-body-types",
		endpoint: "GET /api/cars/all-body-types",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
