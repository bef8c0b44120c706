package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trashsort-backend/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func createDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.GetMigrator(db).Migrate())

	return db
}

func TestCreateAndGetDocument(t *testing.T) {
	store := database.NewDocumentStore(createDB(t))
	ctx := context.Background()

	created, err := store.CreateDocument(ctx, "classification-a.png")
	require.NoError(t, err)
	assert.NotZero(t, created.Id)
	assert.Equal(t, "classification-a.png", created.FileName)
	assert.Equal(t, []string{}, created.Answers)

	loaded, err := store.GetDocument(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}

func TestGetDocumentNotFound(t *testing.T) {
	store := database.NewDocumentStore(createDB(t))

	_, err := store.GetDocument(context.Background(), 12345)
	assert.ErrorIs(t, err, database.ErrDocumentNotFound)
}

func TestSaveDocumentAppendsAnswers(t *testing.T) {
	store := database.NewDocumentStore(createDB(t))
	ctx := context.Background()

	doc, err := store.CreateDocument(ctx, "classification-a.png")
	require.NoError(t, err)

	doc.Answers = append(doc.Answers, "plastic")
	require.NoError(t, store.SaveDocument(ctx, &doc))

	doc.Answers = append(doc.Answers, "glass")
	require.NoError(t, store.SaveDocument(ctx, &doc))

	loaded, err := store.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"plastic", "glass"}, loaded.Answers)
}

func TestSaveDocumentConflict(t *testing.T) {
	store := database.NewDocumentStore(createDB(t))
	ctx := context.Background()

	created, err := store.CreateDocument(ctx, "classification-a.png")
	require.NoError(t, err)

	first, err := store.GetDocument(ctx, created.Id)
	require.NoError(t, err)
	second, err := store.GetDocument(ctx, created.Id)
	require.NoError(t, err)

	first.Answers = append(first.Answers, "metal")
	require.NoError(t, store.SaveDocument(ctx, &first))

	second.Answers = append(second.Answers, "paper")
	assert.ErrorIs(t, store.SaveDocument(ctx, &second), database.ErrConflict)

	// The stale writer reloads and retries.
	reloaded, err := store.GetDocument(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"metal"}, reloaded.Answers)

	reloaded.Answers = append(reloaded.Answers, "paper")
	require.NoError(t, store.SaveDocument(ctx, &reloaded))
}

func TestSaveDocumentNotFound(t *testing.T) {
	store := database.NewDocumentStore(createDB(t))

	doc := database.Document{Id: 999, FileName: "gone.png", Answers: []string{"plastic"}}
	assert.ErrorIs(t, store.SaveDocument(context.Background(), &doc), database.ErrDocumentNotFound)
}

func TestScanFromOrderAndOffset(t *testing.T) {
	store := database.NewDocumentStore(createDB(t))
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		_, err := store.CreateDocument(ctx, fmt.Sprintf("classification-%d.png", i))
		require.NoError(t, err)
	}

	var ids []uint
	for doc, err := range store.ScanFrom(ctx, 3) {
		require.NoError(t, err)
		ids = append(ids, doc.Id)
	}

	assert.Equal(t, []uint{4, 5, 6, 7, 8, 9, 10}, ids)
}

func TestScanFromEarlyStop(t *testing.T) {
	store := database.NewDocumentStore(createDB(t))
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		_, err := store.CreateDocument(ctx, fmt.Sprintf("classification-%d.png", i))
		require.NoError(t, err)
	}

	seen := 0
	for _, err := range store.ScanFrom(ctx, 0) {
		require.NoError(t, err)
		seen++
		if seen == 4 {
			break
		}
	}
	assert.Equal(t, 4, seen)
}

func TestMalformedAnswersColumn(t *testing.T) {
	db := createDB(t)
	store := database.NewDocumentStore(db)

	row := database.ImageDocument{
		FileName:     "classification-bad.png",
		Answers:      datatypes.JSON([]byte(`{"not": "an array"}`)),
		CreationTime: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&row).Error)

	_, err := store.GetDocument(context.Background(), row.Id)
	assert.ErrorContains(t, err, "malformed answers column")
}

func TestListFileNames(t *testing.T) {
	store := database.NewDocumentStore(createDB(t))
	ctx := context.Background()

	names, err := store.ListFileNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		_, err := store.CreateDocument(ctx, name)
		require.NoError(t, err)
	}

	names, err = store.ListFileNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, names)
}
