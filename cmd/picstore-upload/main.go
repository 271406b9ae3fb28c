// picstore-upload — клиент загрузки изображений в picstore.
// Конвейер: best-effort сжатие, base64, POST /api/v1/upload.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"picstore/internal/imgcodec"
)

var (
	filePath  string
	apiKey    string
	serverURL string
	mimeType  string
	noCodec   bool
)

var rootCmd = &cobra.Command{
	Use:   "picstore-upload",
	Short: "Загрузка изображения в picstore",
	Long: `picstore-upload читает файл изображения, сжимает его (JPEG,
длинная сторона не более 1200 px) и загружает в picstore по API-ключу.

SVG и GIF передаются без перекодирования. Если и после сжатия файл
заметно превышает целевой размер, загрузка не выполняется.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&filePath, "file", "f", "", "путь к файлу изображения (обязательный)")
	rootCmd.Flags().StringVarP(&apiKey, "key", "k", os.Getenv("PICSTORE_API_KEY"), "API-ключ (или переменная PICSTORE_API_KEY)")
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "адрес сервера picstore")
	rootCmd.Flags().StringVar(&mimeType, "mime", "", "MIME-тип (по умолчанию определяется по расширению)")
	rootCmd.Flags().BoolVar(&noCodec, "no-compress", false, "загрузить файл как есть, без сжатия")
	_ = rootCmd.MarkFlagRequired("file")
}

func run(cmd *cobra.Command, args []string) error {
	if apiKey == "" {
		return fmt.Errorf("не задан API-ключ: флаг --key или переменная PICSTORE_API_KEY")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("чтение файла: %w", err)
	}

	fileName := filepath.Base(filePath)
	mt := mimeType
	if mt == "" {
		mt = mime.TypeByExtension(filepath.Ext(fileName))
	}
	if mt == "" {
		mt = http.DetectContentType(data)
	}

	opts := imgcodec.DefaultOptions()

	if !noCodec {
		compressed, report, cerr := imgcodec.Compress(data, fileName, mt, imgcodec.JPEGEncoder{}, opts)
		if cerr != nil {
			return fmt.Errorf("сжатие: %w", cerr)
		}
		data = compressed
		fileName = report.FileName
		mt = report.MimeType

		if report.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "Сжатие пропущено (%s), файл передаётся как есть\n", mt)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Сжатие: %d → %d байт (%.0f%%), попыток: %d\n",
				report.OriginalSize, report.CompressedSize, report.Ratio*100, report.Attempts)
		}
	}

	// Сжатие best-effort: цель могла быть не достигнута. Заведомо
	// слишком большой файл не отправляем.
	if len(data) > opts.MaxBytes+opts.MaxBytes/10 {
		return fmt.Errorf("файл слишком большой даже после сжатия: %d байт (предел %d)",
			len(data), opts.MaxBytes)
	}

	return upload(cmd, data, fileName, mt)
}

// uploadResponse — успешный ответ сервера.
type uploadResponse struct {
	Success    bool    `json:"success"`
	ImageID    string  `json:"imageId"`
	ViewURL    string  `json:"viewUrl"`
	FileSize   int64   `json:"fileSize"`
	FileSizeMB float64 `json:"fileSizeMB"`
	Error      string  `json:"error"`
}

func upload(cmd *cobra.Command, data []byte, fileName, mt string) error {
	body, err := json.Marshal(map[string]string{
		"imageData": base64.StdEncoding.EncodeToString(data),
		"fileName":  fileName,
		"mimeType":  mt,
		"apiKey":    apiKey,
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(serverURL+"/api/v1/upload", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("запрос к серверу: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("разбор ответа (HTTP %d): %w", resp.StatusCode, err)
	}

	if !out.Success {
		return fmt.Errorf("сервер отклонил загрузку (HTTP %d): %s", resp.StatusCode, out.Error)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Загружено: %s (%.2f МБ)\n", out.ImageID, out.FileSizeMB)
	fmt.Fprintf(cmd.OutOrStdout(), "Просмотр:  %s\n", out.ViewURL)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}
