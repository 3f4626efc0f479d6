package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var rawSpec []byte

// RawSpec returns the embedded OpenAPI document.
func RawSpec() []byte {
	return rawSpec
}

var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
})

// GetSwagger returns the parsed and validated OpenAPI document.
// The result is shared and must not be modified.
func GetSwagger() (*openapi3.T, error) {
	return loadSpec()
}

// ServerInterface is the scoring API.
type ServerInterface interface {
	// GET /api/prompts
	ListPrompts(w http.ResponseWriter, r *http.Request)
	// GET /api/prompt/{slug}
	GetPrompt(w http.ResponseWriter, r *http.Request, slug string)
	// POST /api/submit/{slug}
	SubmitResponse(w http.ResponseWriter, r *http.Request, slug string)
}

// InvalidParamFormatError reports a path parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type wrapper struct {
	handler ServerInterface
	onError func(w http.ResponseWriter, r *http.Request, err error)
}

func (wr *wrapper) bindSlug(w http.ResponseWriter, r *http.Request) (string, bool) {
	var slug string
	err := runtime.BindStyledParameterWithOptions("simple", "slug", chi.URLParam(r, "slug"), &slug,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		wr.onError(w, r, &InvalidParamFormatError{ParamName: "slug", Err: err})
		return "", false
	}
	return slug, true
}

func (wr *wrapper) getPrompt(w http.ResponseWriter, r *http.Request) {
	if slug, ok := wr.bindSlug(w, r); ok {
		wr.handler.GetPrompt(w, r, slug)
	}
}

func (wr *wrapper) submitResponse(w http.ResponseWriter, r *http.Request) {
	if slug, ok := wr.bindSlug(w, r); ok {
		wr.handler.SubmitResponse(w, r, slug)
	}
}

// registerAPI mounts si on r under the paths of the OpenAPI document.
func registerAPI(r chi.Router, si ServerInterface, onError func(http.ResponseWriter, *http.Request, error)) {
	wr := &wrapper{handler: si, onError: onError}
	r.Get("/api/prompts", si.ListPrompts)
	r.Get("/api/prompt/{slug}", wr.getPrompt)
	r.Post("/api/submit/{slug}", wr.submitResponse)
}
