package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"picstore/internal/domain/model"
	"picstore/internal/llm"
)

// topicCount — количество тем, запрашиваемых одной операцией.
const topicCount = 20

// topicIDRe — формат идентификатора темы (kebab-case). Идентификатор
// становится именем файла, поэтому допустимы только строчные буквы,
// цифры и дефисы: никаких разделителей пути.
var topicIDRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// ArticleService — конвейер генерации статей: темы, генерация
// по выбранным темам, сохранение готовых статей в файлы.
type ArticleService struct {
	client llm.Client
	// outDir — директория сохранения готовых статей
	outDir string
	logger *slog.Logger
}

// NewArticleService создаёт сервис статей.
// client может быть nil — тогда endpoints статей отдают 500
// (ключ модели не сконфигурирован).
func NewArticleService(client llm.Client, outDir string, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		client: client,
		outDir: outDir,
		logger: logger.With(slog.String("component", "article_service")),
	}
}

// Topics запрашивает у модели список тем.
func (s *ArticleService) Topics(ctx context.Context) ([]model.Topic, *Error) {
	if s.client == nil {
		return nil, internalErr("Failed to generate topics", nil)
	}

	topics, err := s.client.SuggestTopics(ctx, topicCount)
	if err != nil {
		s.logger.Error("ошибка запроса тем", slog.String("error", err.Error()))
		return nil, internalErr("Failed to generate topics", err)
	}
	return topics, nil
}

// Generate генерирует одну статью по теме.
func (s *ArticleService) Generate(ctx context.Context, topic model.Topic) (string, *Error) {
	if s.client == nil {
		return "", internalErr("Failed to generate article", nil)
	}
	if topic.Title == "" {
		return "", validationErr("Topic title is required")
	}

	content, err := s.client.GenerateArticle(ctx, topic)
	if err != nil {
		s.logger.Error("ошибка генерации статьи",
			slog.String("topic_id", topic.ID),
			slog.String("error", err.Error()),
		)
		return "", internalErr("Failed to generate article", err)
	}
	return content, nil
}

// GenerateBatch генерирует статьи по всем выбранным темам параллельно.
// Барьер — ожидание всех запросов; отказ одной темы помечает только
// её (status=error) и не отменяет соседние запросы. Повторов нет.
func (s *ArticleService) GenerateBatch(ctx context.Context, topics []model.Topic) ([]model.Article, *Error) {
	if s.client == nil {
		return nil, internalErr("Failed to generate articles", nil)
	}
	if len(topics) == 0 {
		return nil, validationErr("At least one topic is required")
	}

	articles := make([]model.Article, len(topics))
	var wg sync.WaitGroup
	for i, topic := range topics {
		articles[i] = model.Article{Topic: topic, Status: model.StatusGenerating}

		wg.Add(1)
		go func(i int, topic model.Topic) {
			defer wg.Done()

			content, err := s.client.GenerateArticle(ctx, topic)
			if err != nil {
				s.logger.Warn("генерация темы завершилась ошибкой",
					slog.String("topic_id", topic.ID),
					slog.String("error", err.Error()),
				)
				articles[i].Status = model.StatusError
				articles[i].Error = err.Error()
				return
			}
			articles[i].Status = model.StatusCompleted
			articles[i].Content = content
		}(i, topic)
	}
	wg.Wait()

	return articles, nil
}

// Save записывает каждую статью со статусом completed в отдельный
// файл <outDir>/<topicID>.mdx. Директория создаётся при отсутствии.
// Идентификаторы тем приходят от клиента и проверяются до записи:
// за пределы outDir файл попасть не может. Возвращает имена
// записанных файлов.
func (s *ArticleService) Save(articles []model.Article) ([]string, *Error) {
	for _, a := range articles {
		if a.Status != model.StatusCompleted {
			continue
		}
		if !topicIDRe.MatchString(a.Topic.ID) {
			return nil, validationErr(fmt.Sprintf("Invalid topic ID: %q", a.Topic.ID))
		}
	}

	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return nil, internalErr("Failed to save articles", err)
	}

	var saved []string
	for _, a := range articles {
		if a.Status != model.StatusCompleted {
			continue
		}

		filename := fmt.Sprintf("%s.mdx", a.Topic.ID)
		path := filepath.Join(s.outDir, filename)
		if err := os.WriteFile(path, []byte(a.Content), 0o644); err != nil {
			return nil, internalErr("Failed to save articles", err)
		}
		saved = append(saved, filename)
	}

	s.logger.Info("Статьи сохранены",
		slog.Int("count", len(saved)),
		slog.String("dir", s.outDir),
	)
	return saved, nil
}
