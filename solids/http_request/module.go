// Package http_request provides a solid that performs an HTTP request. Its
// manifest declares a 'url' type whose check and loader hooks live here.
package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/dagtype"
	"github.com/zkan/dagster/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the http_request solid.
type Input struct {
	URL    string `hcl:"url"`
	Method string `hcl:"method"`
}

// OnComputeHttpRequest is the handler for the 'http_request' solid's
// on_compute event.
func OnComputeHttpRequest(ctx context.Context, input *Input) (any, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request", "method", input.Method, "url", input.URL)

	req, err := http.NewRequestWithContext(ctx, input.Method, input.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"status_code": cty.NumberIntVal(int64(resp.StatusCode)),
		"body":        cty.StringVal(string(bodyBytes)),
	}), nil
}

// CheckURL validates that a value is an absolute http or https URL.
func CheckURL(ctx context.Context, v cty.Value) dagtype.CheckResult {
	if v.Type() != cty.String || v.IsNull() {
		return dagtype.Failure("value is not a string")
	}
	raw := v.AsString()
	parsed, err := url.Parse(raw)
	if err != nil {
		return dagtype.Failure(fmt.Sprintf("invalid URL: %v", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return dagtype.Failure(fmt.Sprintf("unsupported scheme '%s'", parsed.Scheme))
	}
	if parsed.Host == "" {
		return dagtype.Failure("URL has no host")
	}
	return dagtype.Success(
		dagtype.MetadataEntry{Label: "scheme", Value: cty.StringVal(parsed.Scheme)},
		dagtype.MetadataEntry{Label: "host", Value: cty.StringVal(parsed.Host)},
	)
}

// LoadURL hydrates a configured URL, defaulting the scheme to https when the
// config value omits one.
func LoadURL(ctx context.Context, config cty.Value) (cty.Value, error) {
	if config.Type() != cty.String || config.IsNull() {
		return cty.NilVal, fmt.Errorf("url config must be a string")
	}
	raw := config.AsString()
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return cty.StringVal(raw), nil
}

// Register registers the handler and the 'url' type hooks with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSolid("OnComputeHttpRequest", &registry.RegisteredSolid{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnComputeHttpRequest,
	})
	r.RegisterCheck("CheckURL", CheckURL)
	r.RegisterLoader("LoadURL", LoadURL)
}
