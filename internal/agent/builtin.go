package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/pantry/internal/catalog"
	"github.com/MikeSquared-Agency/pantry/internal/store"
)

// RegisterBuiltinTools wires the catalog surfaces into the registry as tools
// the model can invoke. db carries the general query interface for the guarded
// raw-query escape hatch (full schema visibility, not scoped to the catalog).
func RegisterBuiltinTools(r *Registry, mgr *catalog.Manager, db store.DBTX) {
	r.Register(createItemTool(mgr))
	r.Register(updateItemTool(mgr))
	r.Register(deleteItemTool(mgr))
	r.Register(searchItemsTool(mgr))
	r.Register(rankByPriceTool(mgr))
	r.Register(runReadOnlyQueryTool(db))
	r.Register(checkSyncStatusTool(mgr))
	r.Register(resyncInventoryTool(mgr))
	r.Register(renderChartTool())
}

// jsonResult marshals a payload into a success ToolResult for the model.
func jsonResult(tool string, payload any) ToolResult {
	data, err := json.Marshal(map[string]any{"success": true, "result": payload})
	if err != nil {
		return ToolResult{Tool: tool, Error: fmt.Sprintf("encoding result: %v", err)}
	}
	return ToolResult{Tool: tool, Content: string(data)}
}

func failure(tool string, err error) ToolResult {
	if errors.Is(err, store.ErrNotFound) {
		return ToolResult{Tool: tool, Error: "item not found"}
	}
	return ToolResult{Tool: tool, Error: err.Error()}
}

func createItemTool(mgr *catalog.Manager) *Tool {
	return &Tool{
		Name:        "createItem",
		Description: "Add a new item to the catalog. Price is in cents (e.g. 499 for $4.99).",
		Schema: mustJSON(`{
			"type": "object",
			"properties": {
				"name":        {"type": "string", "description": "Item name"},
				"price":       {"type": "integer", "description": "Price in cents, must be >= 0"},
				"description": {"type": "string", "description": "Item description"}
			},
			"required": ["name", "price", "description"]
		}`),
		Execute: func(ctx context.Context, args map[string]any) ToolResult {
			price := intArg(args, "price", 0)
			if price < 0 {
				return ToolResult{Tool: "createItem", Error: "price must be >= 0"}
			}
			it, err := mgr.Create(ctx, store.ItemCreateInput{
				Name:        stringArg(args, "name"),
				Price:       price,
				Description: stringArg(args, "description"),
			})
			if err != nil {
				return failure("createItem", err)
			}
			return jsonResult("createItem", it)
		},
	}
}

func updateItemTool(mgr *catalog.Manager) *Tool {
	return &Tool{
		Name:        "updateItem",
		Description: "Update an existing catalog item. Only the provided fields change.",
		Schema: mustJSON(`{
			"type": "object",
			"properties": {
				"id":          {"type": "string", "description": "ID of the item to update"},
				"name":        {"type": "string", "description": "New name"},
				"price":       {"type": "integer", "description": "New price in cents"},
				"description": {"type": "string", "description": "New description"}
			},
			"required": ["id"]
		}`),
		Execute: func(ctx context.Context, args map[string]any) ToolResult {
			var input store.ItemUpdateInput
			if s, ok := args["name"].(string); ok {
				input.Name = &s
			}
			if f, ok := args["price"].(float64); ok {
				p := int(f)
				if p < 0 {
					return ToolResult{Tool: "updateItem", Error: "price must be >= 0"}
				}
				input.Price = &p
			}
			if s, ok := args["description"].(string); ok {
				input.Description = &s
			}
			it, err := mgr.Update(ctx, stringArg(args, "id"), input)
			if err != nil {
				return failure("updateItem", err)
			}
			return jsonResult("updateItem", it)
		},
	}
}

func deleteItemTool(mgr *catalog.Manager) *Tool {
	return &Tool{
		Name:        "deleteItem",
		Description: "Remove an item from the catalog. Returns the deleted item.",
		Schema: mustJSON(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "ID of the item to delete"}
			},
			"required": ["id"]
		}`),
		Execute: func(ctx context.Context, args map[string]any) ToolResult {
			it, err := mgr.Delete(ctx, stringArg(args, "id"))
			if err != nil {
				return failure("deleteItem", err)
			}
			return jsonResult("deleteItem", it)
		},
	}
}

func searchItemsTool(mgr *catalog.Manager) *Tool {
	return &Tool{
		Name:        "searchItems",
		Description: "Semantic search over the catalog. Use for free-text questions about what the catalog contains. Returns items ranked by similarity; an empty list means no good match.",
		Schema: mustJSON(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Natural language search query"},
				"limit": {"type": "integer", "description": "Maximum results, default 5"}
			},
			"required": ["query"]
		}`),
		Execute: func(ctx context.Context, args map[string]any) ToolResult {
			results, err := mgr.Search(ctx, stringArg(args, "query"), intArg(args, "limit", 0))
			if err != nil {
				return failure("searchItems", err)
			}
			return jsonResult("searchItems", results)
		},
	}
}

func rankByPriceTool(mgr *catalog.Manager) *Tool {
	return &Tool{
		Name:        "rankByPrice",
		Description: "List items ordered by exact price. Use for 'most expensive' or 'cheapest' questions, not semantic search.",
		Schema: mustJSON(`{
			"type": "object",
			"properties": {
				"direction": {"type": "string", "description": "Either 'highest' or 'lowest'"},
				"limit":     {"type": "integer", "description": "Maximum results, default 5"}
			},
			"required": ["direction"]
		}`),
		Execute: func(ctx context.Context, args map[string]any) ToolResult {
			items, err := mgr.RankByPrice(ctx, store.PriceDirection(stringArg(args, "direction")), intArg(args, "limit", 0))
			if err != nil {
				return failure("rankByPrice", err)
			}
			return jsonResult("rankByPrice", items)
		},
	}
}

func runReadOnlyQueryTool(db store.DBTX) *Tool {
	return &Tool{
		Name:        "runReadOnlyQuery",
		Description: "Run a raw read-only SQL query against the database (tables: items, item_embeddings, employees, shifts). Only SELECT statements are accepted.",
		Schema: mustJSON(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "A SELECT statement"}
			},
			"required": ["query"]
		}`),
		Execute: func(ctx context.Context, args map[string]any) ToolResult {
			result, err := store.RunReadOnlyQuery(ctx, db, stringArg(args, "query"))
			if err != nil {
				return ToolResult{Tool: "runReadOnlyQuery", Error: err.Error()}
			}
			return jsonResult("runReadOnlyQuery", result)
		},
	}
}

func checkSyncStatusTool(mgr *catalog.Manager) *Tool {
	return &Tool{
		Name:        "checkSyncStatus",
		Description: "Report whether every catalog item has an up-to-date search embedding.",
		Schema:      mustJSON(`{"type": "object", "properties": {}}`),
		Execute: func(ctx context.Context, args map[string]any) ToolResult {
			status, err := mgr.CheckSync(ctx)
			if err != nil {
				return failure("checkSyncStatus", err)
			}
			return jsonResult("checkSyncStatus", status)
		},
	}
}

func resyncInventoryTool(mgr *catalog.Manager) *Tool {
	return &Tool{
		Name:        "resyncInventory",
		Description: "Rebuild all search embeddings from the current catalog. Use when checkSyncStatus reports drift.",
		Schema:      mustJSON(`{"type": "object", "properties": {}}`),
		Execute: func(ctx context.Context, args map[string]any) ToolResult {
			report, err := mgr.ResyncAll(ctx)
			if err != nil {
				return failure("resyncInventory", err)
			}
			return jsonResult("resyncInventory", report)
		},
	}
}

// chartSpec is the payload the rendering collaborator understands.
type chartSpec struct {
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func renderChartTool() *Tool {
	return &Tool{
		Name:        "renderChart",
		Description: "Produce a chart from labelled numeric data. The chart is rendered by the client; use after gathering data with other tools.",
		Schema: mustJSON(`{
			"type": "object",
			"properties": {
				"type":   {"type": "string", "description": "Chart type: 'bar', 'line', or 'pie'"},
				"title":  {"type": "string", "description": "Chart title"},
				"labels": {"type": "array", "description": "Label per data point"},
				"values": {"type": "array", "description": "Numeric value per data point"}
			},
			"required": ["type", "title", "labels", "values"]
		}`),
		Execute: func(ctx context.Context, args map[string]any) ToolResult {
			spec := chartSpec{
				Type:  stringArg(args, "type"),
				Title: stringArg(args, "title"),
			}
			switch spec.Type {
			case "bar", "line", "pie":
			default:
				return ToolResult{Tool: "renderChart", Error: fmt.Sprintf("unsupported chart type %q", spec.Type)}
			}

			labels, _ := args["labels"].([]any)
			values, _ := args["values"].([]any)
			if len(labels) != len(values) || len(labels) == 0 {
				return ToolResult{Tool: "renderChart", Error: "labels and values must be non-empty and the same length"}
			}
			for _, l := range labels {
				s, ok := l.(string)
				if !ok {
					return ToolResult{Tool: "renderChart", Error: "labels must be strings"}
				}
				spec.Labels = append(spec.Labels, s)
			}
			for _, v := range values {
				f, ok := v.(float64)
				if !ok {
					return ToolResult{Tool: "renderChart", Error: "values must be numbers"}
				}
				spec.Values = append(spec.Values, f)
			}

			payload, err := json.Marshal(spec)
			if err != nil {
				return ToolResult{Tool: "renderChart", Error: fmt.Sprintf("encoding chart: %v", err)}
			}
			return ToolResult{
				Tool:     "renderChart",
				Content:  fmt.Sprintf("chart %q prepared for rendering", spec.Title),
				Artifact: &Artifact{Kind: "chart", Payload: payload},
			}
		},
	}
}
