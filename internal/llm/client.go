// Пакет llm — клиент языковой модели для генерации тем и статей.
// Реализация поверх Gemini API (google.golang.org/genai); интерфейс
// Client позволяет подменять модель фейком в тестах.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"picstore/internal/domain/model"
)

// Client — операции языковой модели, нужные конвейеру статей.
type Client interface {
	// SuggestTopics запрашивает n структурированных тем одной операцией.
	SuggestTopics(ctx context.Context, n int) ([]model.Topic, error)
	// GenerateArticle генерирует полный текст статьи по теме.
	GenerateArticle(ctx context.Context, topic model.Topic) (string, error)
}

// GeminiClient — реализация Client поверх Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient создаёт клиент Gemini.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("не задан ключ Gemini API")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Gemini: %w", err)
	}

	return &GeminiClient{client: client, model: modelName}, nil
}

// topicsResponse — схема структурированного ответа SuggestTopics.
type topicsResponse struct {
	Topics []model.Topic `json:"topics"`
}

// SuggestTopics запрашивает темы через structured output:
// модель обязана вернуть JSON по заданной схеме.
func (c *GeminiClient) SuggestTopics(ctx context.Context, n int) ([]model.Topic, error) {
	prompt := fmt.Sprintf(`Generate %d diverse and current technology topics that would make for engaging articles.
Include topics from different categories like AI, web development, cybersecurity, mobile tech,
blockchain, cloud computing, IoT, and emerging technologies.

For each topic, provide:
- A unique ID (kebab-case)
- An engaging title
- A brief description of what the article would cover
- A category classification

Make sure the topics are current, relevant, and would appeal to tech professionals and enthusiasts.`, n)

	topicProps := map[string]*genai.Schema{
		"id":          {Type: genai.TypeString},
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"category":    {Type: genai.TypeString},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"topics": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type:       genai.TypeObject,
						Properties: topicProps,
						Required:   []string{"id", "title", "description", "category"},
					},
				},
			},
			Required: []string{"topics"},
		},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса тем: %w", err)
	}

	var parsed topicsResponse
	if err := json.Unmarshal([]byte(result.Text()), &parsed); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа модели: %w", err)
	}
	return parsed.Topics, nil
}

// GenerateArticle генерирует статью в формате MDX с frontmatter-шапкой.
func (c *GeminiClient) GenerateArticle(ctx context.Context, topic model.Topic) (string, error) {
	prompt := fmt.Sprintf(`Write a comprehensive, well-structured article about %q in MDX format.

Requirements:
- Use proper MDX syntax with React components
- Include a compelling title and subtitle
- Structure with clear headings (##, ###)
- Add relevant code examples where appropriate using `+"```"+`language syntax
- Include practical examples and real-world applications
- Use callout boxes for important information
- Add a conclusion section
- Make it engaging and informative for tech professionals
- Length should be 800-1200 words
- Focus on: %s

MDX Components you can use:
- <Callout type="info|warning|success">content</Callout>
- <CodeBlock language="javascript|python|bash">code</CodeBlock>
- Standard markdown syntax for lists, links, emphasis

Start with a frontmatter section:
---
title: %q
description: %q
category: %q
publishedAt: %q
---

Then write the full article content.`,
		topic.Title, topic.Description,
		topic.Title, topic.Description, topic.Category,
		time.Now().UTC().Format(time.RFC3339),
	)

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("ошибка генерации статьи: %w", err)
	}
	return articleText(result)
}

// articleText извлекает текст статьи из ответа модели. Ответ без
// кандидатов или с пустым текстом — ошибка: статья со статусом
// completed не может быть пустой.
func articleText(result *genai.GenerateContentResponse) (string, error) {
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("модель вернула пустой ответ")
	}
	return text, nil
}

// Проверка на этапе компиляции
var _ Client = (*GeminiClient)(nil)
