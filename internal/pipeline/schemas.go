package pipeline

import "starlift/internal/llm"

// Field schemas handed to the structured extraction service, one per
// candidate shape.

var productSchema = llm.Schema{
	Name: "product",
	Properties: []llm.Property{
		{Name: "name", Type: "string"},
		{Name: "price", Type: "number"},
		{Name: "category", Type: "string"},
		{Name: "product_id", Type: "string"},
	},
}

var bookSchema = llm.Schema{
	Name: "book",
	Properties: []llm.Property{
		{Name: "title", Type: "string"},
		{Name: "price", Type: "string"},
		{Name: "author", Type: "string"},
		{Name: "categories", Type: "array"},
		{Name: "availability", Type: "string"},
		{Name: "rating", Type: "integer"},
		{Name: "description", Type: "string"},
		{Name: "book_url", Type: "string"},
	},
}

var filmSchema = llm.Schema{
	Name: "film",
	Properties: []llm.Property{
		{Name: "title", Type: "string"},
		{Name: "year", Type: "integer"},
		{Name: "director", Type: "string"},
		{Name: "actors", Type: "array"},
		{Name: "awards", Type: "integer"},
		{Name: "nominations", Type: "integer"},
		{Name: "best_picture", Type: "boolean"},
	},
}

var filmEnrichmentSchema = llm.Schema{
	Name: "film",
	Properties: []llm.Property{
		{Name: "title", Type: "string"},
		{Name: "director", Type: "string"},
		{Name: "actors", Type: "array"},
	},
}

var authorSchema = llm.Schema{
	Name: "book author",
	Properties: []llm.Property{
		{Name: "author", Type: "string"},
	},
}

var productDetailSchema = llm.Schema{
	Name: "product detail",
	Properties: []llm.Property{
		{Name: "description", Type: "string"},
		{Name: "variants", Type: "array", Items: []llm.Property{
			{Name: "size", Type: "string"},
			{Name: "flavor", Type: "string"},
			{Name: "price_modifier", Type: "number"},
		}},
		{Name: "reviews", Type: "array", Items: []llm.Property{
			{Name: "rating", Type: "integer"},
			{Name: "text", Type: "string"},
			{Name: "reviewer", Type: "string"},
		}},
		{Name: "similar_products", Type: "array", Items: []llm.Property{
			{Name: "product_id", Type: "string"},
			{Name: "name", Type: "string"},
		}},
	},
}
