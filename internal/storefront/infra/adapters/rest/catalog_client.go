// Package rest implements the storefront's service ports on top of the
// retrying apiclient. Each adapter maps typed calls onto the marketplace
// REST endpoints and decodes the JSON shapes the API answers with.
package rest

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jcmexdev/partsmarket/internal/pkg/apiclient"
	"github.com/jcmexdev/partsmarket/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/partsmarket/internal/storefront/core/ports"
)

// Catalog endpoints, relative to the API base URL.
const (
	pathParts       = "/parts"
	pathPartsPublic = "/parts/public"
	pathPartsStore  = "/parts/store"
)

// CatalogClient is the REST adapter for ports.CatalogService.
type CatalogClient struct {
	api *apiclient.Client
}

var _ ports.CatalogService = (*CatalogClient)(nil)

func NewCatalogClient(api *apiclient.Client) *CatalogClient {
	return &CatalogClient{api: api}
}

// partEnvelope matches the create/update response shape: the server wraps the
// entity together with a human-readable message.
type partEnvelope struct {
	Message string      `json:"message"`
	Part    entity.Part `json:"part"`
}

func (c *CatalogClient) ListPublic(ctx context.Context, filter entity.PartFilter) ([]entity.Part, error) {
	path := pathPartsPublic
	if query := encodeFilter(filter); query != "" {
		path += "?" + query
	}

	var parts []entity.Part
	if err := c.api.Get(ctx, path, &parts); err != nil {
		return nil, fmt.Errorf("list public parts: %w", err)
	}
	return parts, nil
}

func (c *CatalogClient) ListMine(ctx context.Context) ([]entity.Part, error) {
	var parts []entity.Part
	if err := c.api.Get(ctx, pathPartsStore, &parts, apiclient.WithAuth()); err != nil {
		return nil, fmt.Errorf("list store parts: %w", err)
	}
	return parts, nil
}

func (c *CatalogClient) Get(ctx context.Context, id string) (*entity.Part, error) {
	var part entity.Part
	if err := c.api.Get(ctx, pathParts+"/"+url.PathEscape(id), &part, apiclient.WithAuth()); err != nil {
		return nil, fmt.Errorf("get part %s: %w", id, err)
	}
	return &part, nil
}

func (c *CatalogClient) Create(ctx context.Context, input entity.PartInput) (*entity.Part, error) {
	var env partEnvelope
	if err := c.api.Post(ctx, pathParts, input, &env, apiclient.WithAuth()); err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}
	return &env.Part, nil
}

func (c *CatalogClient) Update(ctx context.Context, id string, update entity.PartUpdate) (*entity.Part, error) {
	var env partEnvelope
	if err := c.api.Put(ctx, pathParts+"/"+url.PathEscape(id), update, &env, apiclient.WithAuth()); err != nil {
		return nil, fmt.Errorf("update part %s: %w", id, err)
	}
	return &env.Part, nil
}

func (c *CatalogClient) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, pathParts+"/"+url.PathEscape(id), apiclient.WithAuth()); err != nil {
		return fmt.Errorf("delete part %s: %w", id, err)
	}
	return nil
}

// encodeFilter builds the listing query string, skipping empty fields.
func encodeFilter(filter entity.PartFilter) string {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("category", filter.Category)
	set("brand", filter.Brand)
	set("model", filter.Model)
	set("year", filter.Year)
	set("search", filter.Search)
	return values.Encode()
}
