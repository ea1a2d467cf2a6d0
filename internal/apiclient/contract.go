package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

// Contract is a loaded OpenAPI document of the expense API.
type Contract struct {
	doc *openapi3.T
}

func LoadContract(ctx context.Context, data []byte) (*Contract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load API contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid API contract: %w", err)
	}
	return &Contract{doc: doc}, nil
}

// ValidateResponse checks a decoded 2xx payload against the documented
// response of the operation at pattern (e.g. "/api/expenses/{id}").
// Operations or statuses the document does not describe pass.
func (c *Contract) ValidateResponse(ctx context.Context, method, pattern string, status int, payload []byte) error {
	pathItem := c.doc.Paths.Find(pattern)
	if pathItem == nil {
		return nil
	}
	operation := pathItem.GetOperation(method)
	if operation == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, method, pattern, nil)
	if err != nil {
		return err
	}

	route := &routers.Route{
		Spec:      c.doc,
		Path:      pattern,
		PathItem:  pathItem,
		Method:    method,
		Operation: operation,
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	return openapi3filter.ValidateResponse(ctx, &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request: req,
			Route:   route,
		},
		Status: status,
		Header: header,
		Body:   io.NopCloser(bytes.NewReader(payload)),
		Options: &openapi3filter.Options{
			IncludeResponseStatus: false,
			MultiError:            true,
		},
	})
}
