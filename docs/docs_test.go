package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag/v2"
)

func TestSwaggerDoc(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths               map[string]map[string]json.RawMessage `json:"paths"`
		SecurityDefinitions map[string]json.RawMessage            `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "Catalog Admin API", doc.Info.Title)
	assert.Contains(t, doc.SecurityDefinitions, "BasicAuth")

	for path, methods := range map[string][]string{
		"/products":              {"get", "post"},
		"/products/{sku}":        {"get", "post"},
		"/products/{sku}/delete": {"get"},
		"/media":                 {"get"},
		"/delete-images":         {"post"},
		"/health":                {"get"},
		"/system/info":           {"get"},
	} {
		require.Contains(t, doc.Paths, path)
		for _, m := range methods {
			assert.Contains(t, doc.Paths[path], m, path)
		}
	}
}
