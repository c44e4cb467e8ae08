package canonical

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"shopping-list-engine/internal/infrastructure/config"
	"shopping-list-engine/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const canonicalPrompt = `You merge grocery ingredient names for a shopping list.
For every name in the JSON array below, return the canonical shopping name:
singular form, no brand or store names, and variants of the same product combined
(for example "Cherry Tomato" and "Tomatoes" both become "Tomato").
Return ONLY a JSON object whose keys are the input names exactly as given and whose
values are the canonical names. No explanations.

Names: %s`

// OpenRouterClient 以 OpenRouter chat completions 實作 Client
type OpenRouterClient struct {
	client    *resty.Client
	model     string
	maxTokens int
}

// NewOpenRouterClient 創建 OpenRouter 正規化客戶端
func NewOpenRouterClient(cfg *config.Config) *OpenRouterClient {
	client := resty.New().
		SetBaseURL(cfg.Canonical.BaseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Canonical.APIKey)).
		SetHeader("HTTP-Referer", "https://shopping-list-engine.local").
		SetHeader("X-Title", "Shopping List Engine")

	return &OpenRouterClient{
		client:    client,
		model:     cfg.Canonical.Model,
		maxTokens: cfg.Canonical.MaxTokens,
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Canonicalize 送出一批名稱並解析模型回傳的 JSON 物件
func (c *OpenRouterClient) Canonicalize(ctx context.Context, names []string) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}

	list, err := common.ToJSON(names)
	if err != nil {
		return nil, fmt.Errorf("failed to encode names: %w", err)
	}

	req := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": fmt.Sprintf(canonicalPrompt, list),
			},
		},
		"max_tokens":  c.maxTokens,
		"temperature": 0,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var result chatResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	return parseMapping(result.Choices[0].Message.Content)
}

// parseMapping 從模型輸出取出 JSON 物件，只保留非空字串值
func parseMapping(content string) (map[string]string, error) {
	object, ok := common.ExtractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var raw map[string]interface{}
	if err := common.ParseJSON(object, &raw); err != nil {
		// 模型偶爾漏掉鍵的引號
		raw = nil
		if retryErr := common.ParseJSON(common.QuoteJSONKeys(object), &raw); retryErr != nil {
			return nil, fmt.Errorf("invalid JSON object in model output: %w", err)
		}
	}

	out := make(map[string]string, len(raw))
	for name, value := range raw {
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			common.LogDebug("忽略無效的正規化結果", zap.String("name", name))
			continue
		}
		out[name] = strings.TrimSpace(s)
	}
	return out, nil
}
