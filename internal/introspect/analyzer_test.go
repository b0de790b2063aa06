package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSpec = `{
  "openapi": "3.0.0",
  "info": {"title": "Gaud ERP API", "version": "2.1.0"},
  "servers": [{"url": "https://api.example.com"}],
  "paths": {
    "/v1/products": {
      "post": {
        "tags": ["catalog"],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["name"],
                "properties": {
                  "name": {"type": "string"},
                  "price": {"type": "number"}
                }
              }
            }
          }
        }
      }
    },
    "/v1/customers": {
      "get": {"summary": "list customers"},
      "post": {
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/Customer"}
            }
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Customer": {
        "type": "object",
        "required": ["name", "document"],
        "properties": {
          "name": {"type": "string"},
          "document": {"type": "string"},
          "birth_date": {"type": "string", "format": "date"},
          "address": {"$ref": "#/components/schemas/Address"}
        }
      },
      "Address": {
        "type": "object",
        "properties": {
          "street": {"type": "string"},
          "city": {"type": "string"}
        }
      }
    }
  }
}`

func TestAnalyzeSpec(t *testing.T) {
	target, err := AnalyzeSpec([]byte(sampleSpec))
	require.NoError(t, err)

	assert.Equal(t, "Gaud ERP API", target.Title)
	assert.Equal(t, "2.1.0", target.Version)
	assert.Equal(t, "https://api.example.com", target.BaseURL)

	// Paths come out sorted, not in JSON order.
	require.Len(t, target.Endpoints, 2)
	assert.Equal(t, "/v1/customers", target.Endpoints[0].Path)
	assert.Equal(t, "/v1/products", target.Endpoints[1].Path)

	customers := target.Endpoint("/v1/customers")
	require.NotNil(t, customers)
	assert.Equal(t, "Customer", customers.Entity)
	assert.Equal(t, "POST", customers.Method)
	require.Len(t, customers.Fields, 4)

	name := customers.Field("name")
	require.NotNil(t, name)
	assert.True(t, name.Required)
	assert.Equal(t, "string", name.Type)

	birth := customers.Field("birth_date")
	require.NotNil(t, birth)
	assert.False(t, birth.Required)
	assert.Equal(t, "date", birth.Format)

	// Referenced nested objects keep their object type.
	address := customers.Field("address")
	require.NotNil(t, address)
	assert.Equal(t, "object", address.Type)

	products := target.Endpoint("/v1/products")
	require.NotNil(t, products)
	assert.Equal(t, "catalog", products.Entity)
	assert.Equal(t, []string{"name"}, products.RequiredFields())
}

func TestAnalyzeSpec_Deterministic(t *testing.T) {
	first, err := AnalyzeSpec([]byte(sampleSpec))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := AnalyzeSpec([]byte(sampleSpec))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAnalyzeSpec_Invalid(t *testing.T) {
	_, err := AnalyzeSpec([]byte("not json"))
	require.Error(t, err)

	_, err = AnalyzeSpec([]byte(`{"openapi": "3.0.0", "paths": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no paths")

	_, err = AnalyzeSpec([]byte(`{"paths": {"/v1/x": {"get": {}}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entity-creation")
}
