package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	backend "trashsort-backend/internal/api"
	"trashsort-backend/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSampling(offset int) backend.SamplingStrategy {
	strategy := backend.DefaultSampling()
	strategy.StartOffset = func() int { return offset }
	strategy.Shuffle = func(n int, swap func(i, j int)) {}
	return strategy
}

func TestListImagesStartOffset(t *testing.T) {
	db, store := createDB(t), createStorage(t)

	classification := map[int]bool{3: true, 7: true, 12: true, 19: true, 25: true, 31: true, 36: true, 40: true}
	seedDocuments(t, db, store, 40, classification)

	// Skipping the first 5 rows excludes document 3; every later match fits
	// in one batch. With shuffling disabled the scan order is preserved.
	router := createRouter(db, store, nil, fixedSampling(5))

	req := httptest.NewRequest(http.MethodGet, "/api/imagesList", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var batch []api.ImageListEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))

	ids := make([]uint, 0, len(batch))
	for _, entry := range batch {
		ids = append(ids, entry.FileId)
	}
	assert.Equal(t, []uint{7, 12, 19, 25, 31, 36, 40}, ids)
}

func TestListImagesOffsetPastAllDocuments(t *testing.T) {
	db, store := createDB(t), createStorage(t)
	seedDocuments(t, db, store, 10, allClassification(10))

	router := createRouter(db, store, nil, fixedSampling(10))

	req := httptest.NewRequest(http.MethodGet, "/api/imagesList", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestDefaultSamplingBounds(t *testing.T) {
	strategy := backend.DefaultSampling()

	for i := 0; i < 1000; i++ {
		offset := strategy.StartOffset()
		assert.GreaterOrEqual(t, offset, 1)
		assert.LessOrEqual(t, offset, 32)
	}

	assert.Equal(t, 8, strategy.MaxBatch)
}
