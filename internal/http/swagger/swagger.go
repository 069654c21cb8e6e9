// Package swagger serves the storefront OpenAPI document and a Swagger UI
// page for it.
package swagger

import (
	"bytes"
	"net/http"
	"text/template"

	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/storefront/api-contract"
)

const (
	DocsPath = "/docs"
	SpecPath = "/docs/openapi.yml"

	swaggerUIVersion = "5.29.3"
)

// Register mounts the Swagger UI on DocsPath and the raw document on SpecPath.
func Register(r chi.Router) {
	page := mustRenderPage(pageData{
		Title:     "Storefront API",
		SpecURL:   SpecPath,
		UIVersion: swaggerUIVersion,
	})

	r.Get(DocsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(page)
	})

	spec := apicontract.GetSpecBytes()
	r.Get(SpecPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(spec)
	})
}

type pageData struct {
	Title     string
	SpecURL   string
	UIVersion string
}

// persistAuthorization keeps the bearer token entered in "Authorize" across
// page reloads.
var pageTemplate = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@{{.UIVersion}}/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@{{.UIVersion}}/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '{{.SpecURL}}',
      dom_id: '#swagger-ui',
      deepLinking: true,
      persistAuthorization: true,
      displayRequestDuration: true,
    });
  };
</script>
</body>
</html>
`))

func mustRenderPage(data pageData) []byte {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
