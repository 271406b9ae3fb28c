package model

// Topic — тема статьи, предложенная языковой моделью.
// Живёт только в рамках сессии, не персистится.
type Topic struct {
	// ID — идентификатор в kebab-case, генерирует модель.
	ID string `json:"id"`
	// Title — заголовок будущей статьи.
	Title string `json:"title"`
	// Description — краткое описание содержания.
	Description string `json:"description"`
	// Category — категория (AI, web development, cybersecurity и т.п.).
	Category string `json:"category"`
}

// ArticleStatus — состояние генерации статьи.
type ArticleStatus string

const (
	// StatusGenerating — запрос к модели выполняется.
	StatusGenerating ArticleStatus = "generating"
	// StatusCompleted — текст получен.
	StatusCompleted ArticleStatus = "completed"
	// StatusError — генерация завершилась ошибкой. Повторов нет.
	StatusError ArticleStatus = "error"
)

// Article — сгенерированная статья. Персистится только явным
// сохранением в файл (save-articles).
type Article struct {
	Topic   Topic         `json:"topic"`
	Status  ArticleStatus `json:"status"`
	Content string        `json:"content,omitempty"`
	// Error — текст ошибки генерации (только при Status == error).
	Error string `json:"error,omitempty"`
}
