package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productTestSchema = Schema{
	Name: "product",
	Properties: []Property{
		{Name: "name", Type: "string"},
		{Name: "price", Type: "number"},
		{Name: "category", Type: "string"},
		{Name: "product_id", Type: "string"},
	},
}

func TestDecodeResponseDirectObject(t *testing.T) {
	record, err := DecodeResponse(`{"name": "Widget", "price": 9.99}`, productTestSchema)
	require.NoError(t, err)
	assert.Equal(t, "Widget", record["name"])
}

func TestDecodeResponseListPicksMatchingObject(t *testing.T) {
	raw := `[{"unrelated": true}, {"name": "Widget", "price": 9.99, "category": "Gadgets"}]`

	record, err := DecodeResponse(raw, productTestSchema)
	require.NoError(t, err)
	assert.Equal(t, "Gadgets", record["category"])
}

func TestDecodeResponseUnwrapsNestedObject(t *testing.T) {
	raw := `{"product": {"name": "Widget", "price": 9.99, "product_id": "1"}}`

	record, err := DecodeResponse(raw, productTestSchema)
	require.NoError(t, err)
	assert.Equal(t, "1", record["product_id"])
}

func TestDecodeResponseStripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"name\": \"Widget\", \"price\": 9.99}\n```"

	record, err := DecodeResponse(raw, productTestSchema)
	require.NoError(t, err)
	assert.Equal(t, "Widget", record["name"])
}

func TestDecodeResponseRejectsLowOverlap(t *testing.T) {
	_, err := DecodeResponse(`{"name": "Widget", "color": "red", "weight": 3}`, productTestSchema)
	assert.Error(t, err, "one of four schema keys is below the overlap floor")
}

func TestDecodeResponseAcceptsHalfOverlap(t *testing.T) {
	record, err := DecodeResponse(`{"name": "Widget", "price": 9.99, "weight": 3}`, productTestSchema)
	require.NoError(t, err)
	assert.Equal(t, "Widget", record["name"])
}

func TestDecodeResponseInvalidJSON(t *testing.T) {
	_, err := DecodeResponse("the page shows a widget for $9.99", productTestSchema)
	assert.Error(t, err)

	_, err = DecodeResponse("", productTestSchema)
	assert.Error(t, err)
}

func TestRenderSchemaArrayOfObjects(t *testing.T) {
	schema := Schema{
		Name: "product_detail",
		Properties: []Property{
			{Name: "description", Type: "string"},
			{Name: "variants", Type: "array", Items: []Property{
				{Name: "size", Type: "string"},
				{Name: "price_modifier", Type: "number"},
			}},
			{Name: "tags", Type: "array"},
		},
	}

	var rendered map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(RenderSchema(schema)), &rendered))
	assert.Equal(t, "object", rendered["type"])

	props := rendered["properties"].(map[string]interface{})
	variants := props["variants"].(map[string]interface{})
	assert.Equal(t, "array", variants["type"])

	items := variants["items"].(map[string]interface{})
	assert.Equal(t, "object", items["type"])
	itemProps := items["properties"].(map[string]interface{})
	assert.Contains(t, itemProps, "size")
	assert.Contains(t, itemProps, "price_modifier")

	// arrays without item properties default to strings
	tags := props["tags"].(map[string]interface{})
	assert.Equal(t, "string", tags["items"].(map[string]interface{})["type"])
}

func TestStripMarkdownFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, StripMarkdownFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, StripMarkdownFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, StripMarkdownFences(`{"a": 1}`))
}
