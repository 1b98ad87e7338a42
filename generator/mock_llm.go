package generator

import (
	"context"
	"fmt"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// 按 schema 名称返回固定 JSON；与 search.provider=mock 搭配可离线跑通整条流水线。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	if prompt.Schema == nil {
		return "", fmt.Errorf("mock llm: unstructured prompts are not supported")
	}
	switch prompt.Schema.Name {
	case queriesSchema.Name:
		return `{"queries":["overview and key statistics","main causes and drivers","real-world impacts and challenges","solutions and future outlook"]}`, nil
	case slidePlanSchema.Name:
		return `{
  "title": "A Quick Tour of the Topic",
  "overview_title": "Our Roadmap",
  "agenda_points": [],
  "key_points": [
    "Why It Matters - Setting the Stage",
    "Key Drivers - What Shapes It",
    "Real-World Impact - Gains and Costs",
    "Looking Ahead - Trends and Solutions"
  ],
  "conclusion_title": "Key Takeaways - The Path Forward"
}`, nil
	case factListSchema.Name:
		return `{"facts":[]}`, nil
	case slideContentSchema.Name:
		return `{
  "title": "",
  "bullets": [
    "**Offline preview** – generated by the __mock model__ without any external calls",
    "  Configure a real provider to produce researched content"
  ],
  "references": []
}`, nil
	default:
		return "", fmt.Errorf("mock llm: unknown schema %q", prompt.Schema.Name)
	}
}
