package generator

import "context"

// LLMClient 抽象大模型客户端，便于替换/Mock。
// 当 prompt.Schema 非空时，实现应请求结构化（JSON）输出并原样返回 JSON 文本。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
}

// Schema names a JSON schema the model output must satisfy.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}
