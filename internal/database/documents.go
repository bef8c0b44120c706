package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrConflict         = errors.New("document was modified concurrently")
)

// Document is the validated, decoded form of an ImageDocument row. Rows whose
// answers column is not a JSON string array are rejected at this boundary.
type Document struct {
	Id       uint
	FileName string
	Answers  []string

	version int
}

type DocumentStore struct {
	db *gorm.DB
}

func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) CreateDocument(ctx context.Context, fileName string) (Document, error) {
	row := ImageDocument{
		FileName:     fileName,
		Answers:      datatypes.JSON([]byte("[]")),
		CreationTime: time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Document{}, fmt.Errorf("error creating document for %s: %w", fileName, err)
	}

	return Document{Id: row.Id, FileName: row.FileName, Answers: []string{}}, nil
}

func (s *DocumentStore) GetDocument(ctx context.Context, id uint) (Document, error) {
	var row ImageDocument
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("error loading document %d: %w", id, err)
	}

	return decodeRow(row)
}

// SaveDocument persists the document's answers. The row's version is checked
// in the update; if a concurrent writer bumped it first the save fails with
// ErrConflict and the caller must reload.
func (s *DocumentStore) SaveDocument(ctx context.Context, doc *Document) error {
	answers, err := json.Marshal(doc.Answers)
	if err != nil {
		return fmt.Errorf("could not marshal answers for document %d: %w", doc.Id, err)
	}

	res := s.db.WithContext(ctx).Model(&ImageDocument{}).
		Where("id = ? AND version = ?", doc.Id, doc.version).
		Updates(map[string]any{"answers": datatypes.JSON(answers), "version": doc.version + 1})
	if res.Error != nil {
		return fmt.Errorf("error saving document %d: %w", doc.Id, res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&ImageDocument{}).Where("id = ?", doc.Id).Count(&count).Error; err != nil {
			return fmt.Errorf("error saving document %d: %w", doc.Id, err)
		}
		if count == 0 {
			return ErrDocumentNotFound
		}
		return ErrConflict
	}

	doc.version++
	return nil
}

type DocumentIterator func(yield func(doc Document, err error) bool)

// ScanFrom yields documents ordered by ascending id, skipping the first
// offset rows. The iterator is one-shot; it is the basis for random sampling
// since the store has no native random-access primitive.
func (s *DocumentStore) ScanFrom(ctx context.Context, offset int) DocumentIterator {
	return func(yield func(doc Document, err error) bool) {
		rows, err := s.db.WithContext(ctx).Model(&ImageDocument{}).Order("id ASC").Offset(offset).Rows()
		if err != nil {
			yield(Document{}, fmt.Errorf("error opening document scan: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var row ImageDocument
			if err := s.db.ScanRows(rows, &row); err != nil {
				if !yield(Document{}, fmt.Errorf("error scanning document row: %w", err)) {
					return
				}
				continue
			}

			doc, err := decodeRow(row)
			if !yield(doc, err) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(Document{}, fmt.Errorf("error during document scan: %w", err))
		}
	}
}

func (s *DocumentStore) ListFileNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).Model(&ImageDocument{}).Order("id ASC").Pluck("file_name", &names).Error; err != nil {
		return nil, fmt.Errorf("error listing document names: %w", err)
	}
	return names, nil
}

func decodeRow(row ImageDocument) (Document, error) {
	var answers []string
	if err := json.Unmarshal(row.Answers, &answers); err != nil {
		return Document{}, fmt.Errorf("document %d has a malformed answers column: %w", row.Id, err)
	}
	if answers == nil {
		answers = []string{}
	}

	return Document{Id: row.Id, FileName: row.FileName, Answers: answers, version: row.Version}, nil
}
