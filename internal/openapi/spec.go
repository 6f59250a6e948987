// Package openapi describes the gateway's fixed HTTP surface as an
// OpenAPI 3.1 document. The surface is static, so the document is built
// once and served verbatim.
package openapi

import (
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// Document builds the OpenAPI description of the admin gateway.
func Document() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Admin Gateway API",
			Description: "Operator authentication, read-only listings, and presence settings for the back office.",
			Version:     "1.0.0",
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	doc.Components.Schemas["Envelope"] = openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("data", openapi3.NewObjectSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithRequired([]string{"success"}).
		NewRef()
	doc.Components.Schemas["PresenceSettings"] = openapi3.NewObjectSchema().
		WithProperty("max_online_users", openapi3.NewIntegerSchema().WithMin(0)).
		WithProperty("enable_queue", openapi3.NewBoolSchema()).
		WithProperty("block_queued_write_heavy", openapi3.NewBoolSchema()).
		NewRef()

	doc.Paths = openapi3.NewPaths()
	addOp(doc, "/health", http.MethodGet, "Liveness and store reachability probe", false, nil)
	addOp(doc, "/admin/login", http.MethodPost, "Exchange email and password for a bearer token", false, nil)
	addOp(doc, "/admin/exchange-key", http.MethodPost, "Exchange the shared operations key for a bearer token", false, nil)
	addOp(doc, "/admin/me", http.MethodGet, "Identity resolved for the presented token", true, nil)
	addOp(doc, "/admin/status", http.MethodGet, "Environment, uptime, store health, and collection counts", true, nil)
	addOp(doc, "/admin/settings/presence", http.MethodGet, "Current presence settings", true, nil)
	addOp(doc, "/admin/settings/presence", http.MethodPut, "Partial presence settings update", true, nil)
	addOp(doc, "/admin/users", http.MethodGet, "List accounts", true, listingParams("q"))
	addOp(doc, "/admin/subscriptions", http.MethodGet, "List subscriptions", true, listingParams("q", "status", "plan"))
	addOp(doc, "/admin/payments", http.MethodGet, "List payments", true, listingParams("q", "status", "gateway"))
	addOp(doc, "/admin/audit-logs", http.MethodGet, "List audit entries", true, listingParams("q", "action"))

	return doc
}

func addOp(doc *openapi3.T, path, method, summary string, guarded bool, params openapi3.Parameters) {
	op := openapi3.NewOperation()
	op.Summary = summary
	op.Parameters = params

	resp := openapi3.NewResponse().WithDescription("Envelope response").WithJSONSchemaRef(
		&openapi3.SchemaRef{Ref: "#/components/schemas/Envelope"})
	op.Responses = openapi3.NewResponses()
	op.Responses.Set("200", &openapi3.ResponseRef{Value: resp})

	if guarded {
		op.Security = openapi3.NewSecurityRequirements().With(openapi3.SecurityRequirement{"bearerAuth": {}})
	}

	doc.AddOperation(path, method, op)
}

func listingParams(names ...string) openapi3.Parameters {
	params := openapi3.Parameters{}
	for _, name := range append(names, "limit", "offset") {
		schema := openapi3.NewStringSchema()
		if name == "limit" || name == "offset" {
			schema = openapi3.NewIntegerSchema()
		}
		params = append(params, &openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter(name).WithSchema(schema),
		})
	}
	return params
}

var (
	specOnce sync.Once
	specJSON []byte
)

// Handler serves the document at GET /openapi.json. The JSON is rendered
// once on first request.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specOnce.Do(func() {
			specJSON, _ = Document().MarshalJSON()
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(specJSON)
	}
}
