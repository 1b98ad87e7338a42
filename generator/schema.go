package generator

// Hand-written schemas keep the strict-mode rules of both providers:
// every property required, no additional properties.

func stringArray(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": description,
		"items":       map[string]any{"type": "string"},
	}
}

func object(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

var queriesSchema = Schema{
	Name:        "search_queries",
	Description: "Search engine queries for researching a presentation topic.",
	Definition: object(map[string]any{
		"queries": stringArray("4-5 diverse search queries."),
	}, "queries"),
}

var slidePlanSchema = Schema{
	Name:        "slide_plan",
	Description: "The structured plan for the presentation deck.",
	Definition: object(map[string]any{
		"title":            map[string]any{"type": "string", "description": "The main title of the presentation."},
		"overview_title":   map[string]any{"type": "string", "description": "The title for the overview/agenda slide."},
		"agenda_points":    stringArray("The key point titles shown as the agenda."),
		"key_points":       stringArray("Exactly 4 key topics, each as a slide title."),
		"conclusion_title": map[string]any{"type": "string", "description": "The title for the final slide."},
	}, "title", "overview_title", "agenda_points", "key_points", "conclusion_title"),
}

var factListSchema = Schema{
	Name:        "fact_list",
	Description: "A flat list of facts, each assigned to one slide title.",
	Definition: object(map[string]any{
		"facts": map[string]any{
			"type": "array",
			"items": object(map[string]any{
				"fact":        map[string]any{"type": "string", "description": "A single, summarized key fact."},
				"source":      map[string]any{"type": "string", "description": "The source URL for this fact, or 'Source not found'."},
				"slide_title": map[string]any{"type": "string", "description": "Exactly one of the provided slide titles."},
			}, "fact", "source", "slide_title"),
		},
	}, "facts"),
}

var slideContentSchema = Schema{
	Name:        "slide_content",
	Description: "The generated content for a single presentation slide.",
	Definition: object(map[string]any{
		"title":      map[string]any{"type": "string", "description": "The title of the slide."},
		"bullets":    stringArray("Concise bullet points."),
		"references": stringArray("1-2 source URLs that support the slide's content."),
	}, "title", "bullets", "references"),
}
