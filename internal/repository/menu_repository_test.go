package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
	"github.com/VijayGit-Hub/menu-upload-system/internal/repository"
)

// Вспомогательная функция для создания репозитория во временном каталоге.
func setupRepo(t *testing.T) (repository.MenuRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "vendors.json")
	repo, err := repository.NewJSONMenuRepository(path, zap.NewNop())
	require.NoError(t, err)
	return repo, path
}

func TestNewJSONMenuRepository_CreatesEmptyFile(t *testing.T) {
	_, path := setupRepo(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestNewJSONMenuRepository_KeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendors.json")
	existing := `[{"vendorName":"A","imageUrl":"/uploads/a.png","uploadTime":"10:00:00","uploadDate":"2024-01-01"}]`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o600))

	repo, err := repository.NewJSONMenuRepository(path, zap.NewNop())
	require.NoError(t, err)

	records, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].VendorName)
}

func TestSaveAndLoad(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()

	records := []models.MenuRecord{
		{VendorName: "A", VendorID: "A1", ImageURL: "/uploads/a.png", UploadTime: "09:00:00", UploadDate: "2024-05-01"},
		{VendorName: "B", ImageURL: "/uploads/b.png", UploadTime: "09:30:00", UploadDate: "2024-05-02"},
	}
	require.NoError(t, repo.Save(ctx, records))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"vendorName\": \"A\"", "файл должен быть отформатирован")

	// Временные файлы не остаются в каталоге
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestSave_NilWritesEmptyArray(t *testing.T) {
	repo, path := setupRepo(t)
	require.NoError(t, repo.Save(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Поврежденный файл", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := repo.Load(context.Background())
		require.ErrorIs(t, err, repository.ErrCorruptStore)
	})

	t.Run("Пустой файл", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

		records, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Файл удален", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, os.Remove(path))

		_, err := repo.Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка чтения файла хранилища")
	})

	t.Run("Отмененный контекст", func(t *testing.T) {
		repo, _ := setupRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := repo.Load(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestUpdate(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	err := repo.Update(ctx, func(records []models.MenuRecord) ([]models.MenuRecord, error) {
		assert.Empty(t, records)
		return append(records, models.MenuRecord{VendorName: "A"}), nil
	})
	require.NoError(t, err)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "A", loaded[0].VendorName)
}

func TestUpdate_ErrorLeavesStoreUntouched(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []models.MenuRecord{{VendorName: "A"}}))

	fnErr := errors.New("отказ")
	err := repo.Update(ctx, func(_ []models.MenuRecord) ([]models.MenuRecord, error) {
		return nil, fnErr
	})
	require.ErrorIs(t, err, fnErr)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
}

func TestUpdate_CorruptStoreNotOverwritten(t *testing.T) {
	repo, path := setupRepo(t)
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	called := false
	err := repo.Update(context.Background(), func(records []models.MenuRecord) ([]models.MenuRecord, error) {
		called = true
		return records, nil
	})
	require.ErrorIs(t, err, repository.ErrCorruptStore)
	assert.False(t, called)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestUpdate_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	const writers = 20

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := repo.Update(ctx, func(records []models.MenuRecord) ([]models.MenuRecord, error) {
				return append(records, models.MenuRecord{VendorName: string(rune('A' + n))}), nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, writers)
}
