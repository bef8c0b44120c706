package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"trashsort-backend/internal/classifier"
	"trashsort-backend/internal/database"
	"trashsort-backend/internal/storage"
)

// Capabilities records which optional external services were configured at
// startup. Handlers consult it in one place instead of nil-checking clients
// inline; a missing capability degrades the response, it does not fail it.
type Capabilities struct {
	Database   bool
	Classifier bool
}

type LabelingService struct {
	docs       *database.DocumentStore
	storage    storage.Provider
	classifier classifier.Classifier
	bucket     string
	caps       Capabilities
	sampling   SamplingStrategy
}

func NewLabelingService(db *gorm.DB, store storage.Provider, clf classifier.Classifier, bucket string, sampling SamplingStrategy) *LabelingService {
	s := &LabelingService{
		storage:    store,
		classifier: clf,
		bucket:     bucket,
		caps:       Capabilities{Database: db != nil, Classifier: clf != nil},
		sampling:   sampling,
	}
	if db != nil {
		s.docs = database.NewDocumentStore(db)
	}
	return s
}

func (s *LabelingService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Route("/api", func(r chi.Router) {
		r.Get("/imagesList", RestHandler(s.ListImages))
		r.Get("/image", RestHandler(s.ListImageNames))
		r.Post("/guessClass", RestHandler(s.RecordGuess))
		r.Post("/classify", RestHandler(s.ClassifyImage))
	})
}
