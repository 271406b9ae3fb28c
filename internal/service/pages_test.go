package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"picstore/internal/domain/model"
	"picstore/internal/repository"
)

// datasetRepo строит мок ImageRepository поверх фиксированного набора
// из n записей в порядке убывания uploaded_at. Записи нумеруются
// рангом: img-0 — самая свежая.
func datasetRepo(n int) *mockImageRepo {
	records := make([]*model.ImageRecord, n)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		records[i] = &model.ImageRecord{
			ID:         fmt.Sprintf("img-%d", i),
			FileName:   fmt.Sprintf("file-%d.png", i),
			UploadedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}

	return &mockImageRepo{
		countFn: func(_ context.Context) (int, error) {
			return n, nil
		},
		listFirstFn: func(_ context.Context, limit int) ([]*model.ImageRecord, error) {
			if limit > n {
				limit = n
			}
			return records[:limit], nil
		},
		listAfterFn: func(_ context.Context, after repository.Cursor, limit int) ([]*model.ImageRecord, error) {
			// Строго после якоря в порядке (uploaded_at, id) DESC
			start := 0
			for i, r := range records {
				if r.ID == after.ID {
					start = i + 1
					break
				}
			}
			end := start + limit
			if end > n {
				end = n
			}
			return records[start:end], nil
		},
	}
}

// TestPageService_ListPage_FirstPage проверяет первую страницу.
func TestPageService_ListPage_FirstPage(t *testing.T) {
	svc := NewPageService(datasetRepo(25), time.Second, slog.Default())

	res, serr := svc.ListPage(context.Background(), 1, 10)
	if serr != nil {
		t.Fatalf("ListPage ошибка: %v", serr)
	}

	if len(res.Images) != 10 {
		t.Errorf("len(Images) = %d, ожидался 10", len(res.Images))
	}
	if res.Images[0].ID != "img-0" {
		t.Errorf("первая запись = %q, ожидалась img-0", res.Images[0].ID)
	}
	if res.TotalImages != 25 {
		t.Errorf("TotalImages = %d, ожидался 25", res.TotalImages)
	}
	if res.TotalPages != 3 {
		t.Errorf("TotalPages = %d, ожидался 3", res.TotalPages)
	}
	if res.HasPrevPage {
		t.Error("HasPrevPage = true на первой странице")
	}
	if !res.HasNextPage {
		t.Error("HasNextPage = false при 3 страницах")
	}
}

// TestPageService_ListPage_SecondPage проверяет якорный обход:
// страница 2 при limit=10 на 25 записях — ранги 10..19.
func TestPageService_ListPage_SecondPage(t *testing.T) {
	svc := NewPageService(datasetRepo(25), time.Second, slog.Default())

	res, serr := svc.ListPage(context.Background(), 2, 10)
	if serr != nil {
		t.Fatalf("ListPage ошибка: %v", serr)
	}

	if len(res.Images) != 10 {
		t.Fatalf("len(Images) = %d, ожидался 10", len(res.Images))
	}
	for i, rec := range res.Images {
		want := fmt.Sprintf("img-%d", 10+i)
		if rec.ID != want {
			t.Errorf("Images[%d].ID = %q, ожидался %q", i, rec.ID, want)
		}
	}
	if !res.HasNextPage || !res.HasPrevPage {
		t.Errorf("HasNextPage = %v, HasPrevPage = %v, ожидались true/true",
			res.HasNextPage, res.HasPrevPage)
	}
	if res.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, ожидался 2", res.CurrentPage)
	}
}

// TestPageService_ListPage_LastPage проверяет неполную последнюю страницу.
func TestPageService_ListPage_LastPage(t *testing.T) {
	svc := NewPageService(datasetRepo(25), time.Second, slog.Default())

	res, serr := svc.ListPage(context.Background(), 3, 10)
	if serr != nil {
		t.Fatalf("ListPage ошибка: %v", serr)
	}

	if len(res.Images) != 5 {
		t.Errorf("len(Images) = %d, ожидался 5", len(res.Images))
	}
	if res.HasNextPage {
		t.Error("HasNextPage = true на последней странице")
	}
}

// TestPageService_ListPage_BeyondData проверяет детерминированно
// пустую страницу за пределами данных.
func TestPageService_ListPage_BeyondData(t *testing.T) {
	svc := NewPageService(datasetRepo(25), time.Second, slog.Default())

	res, serr := svc.ListPage(context.Background(), 10, 10)
	if serr != nil {
		t.Fatalf("ListPage ошибка: %v", serr)
	}

	if len(res.Images) != 0 {
		t.Errorf("len(Images) = %d, ожидался 0", len(res.Images))
	}
	if res.CurrentPage != 10 {
		t.Errorf("CurrentPage = %d, ожидался 10", res.CurrentPage)
	}
	if res.HasNextPage {
		t.Error("HasNextPage = true за пределами данных")
	}
}

// TestPageService_ListPage_Defaults проверяет значения по умолчанию
// для некорректных page/limit.
func TestPageService_ListPage_Defaults(t *testing.T) {
	svc := NewPageService(datasetRepo(5), time.Second, slog.Default())

	res, serr := svc.ListPage(context.Background(), 0, 0)
	if serr != nil {
		t.Fatalf("ListPage ошибка: %v", serr)
	}

	if res.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, ожидался 1", res.CurrentPage)
	}
	if len(res.Images) != 5 {
		t.Errorf("len(Images) = %d, ожидался 5 (limit по умолчанию 100)", len(res.Images))
	}
	if res.TotalPages != 1 {
		t.Errorf("TotalPages = %d, ожидался 1", res.TotalPages)
	}
}

// TestPageService_ListPage_Timeout проверяет отображение истёкшего
// дедлайна хранилища в 408.
func TestPageService_ListPage_Timeout(t *testing.T) {
	repo := &mockImageRepo{
		countFn: func(_ context.Context) (int, error) {
			return 0, context.DeadlineExceeded
		},
	}
	svc := NewPageService(repo, time.Second, slog.Default())

	_, serr := svc.ListPage(context.Background(), 1, 10)
	if serr == nil {
		t.Fatal("ожидалась ошибка")
	}
	if serr.Status != http.StatusRequestTimeout {
		t.Errorf("Status = %d, ожидался 408", serr.Status)
	}
}

// TestPageService_ListPage_WalkReproducesDataset проверяет, что
// конкатенация страниц 1..totalPages воспроизводит весь набор
// ровно по одному разу, без пропусков и дубликатов.
func TestPageService_ListPage_WalkReproducesDataset(t *testing.T) {
	const total = 23
	const limit = 7

	svc := NewPageService(datasetRepo(total), time.Second, slog.Default())

	seen := make(map[string]bool)
	var order []string

	first, serr := svc.ListPage(context.Background(), 1, limit)
	if serr != nil {
		t.Fatalf("ListPage(1) ошибка: %v", serr)
	}

	for page := 1; page <= first.TotalPages; page++ {
		res, serr := svc.ListPage(context.Background(), page, limit)
		if serr != nil {
			t.Fatalf("ListPage(%d) ошибка: %v", page, serr)
		}
		for _, rec := range res.Images {
			if seen[rec.ID] {
				t.Errorf("запись %q встретилась повторно на странице %d", rec.ID, page)
			}
			seen[rec.ID] = true
			order = append(order, rec.ID)
		}
	}

	if len(order) != total {
		t.Fatalf("обход вернул %d записей, ожидалось %d", len(order), total)
	}
	for i, id := range order {
		want := fmt.Sprintf("img-%d", i)
		if id != want {
			t.Errorf("order[%d] = %q, ожидался %q", i, id, want)
		}
	}
}
