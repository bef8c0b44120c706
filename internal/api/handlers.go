package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"trashsort-backend/internal/classifier"
	"trashsort-backend/internal/database"
	"trashsort-backend/pkg/api"
)

// classificationTaskMarker selects documents that belong to the labeling
// task; only blobs whose stored name contains it are served for guessing.
const classificationTaskMarker = "classification"

// ListImages returns a randomized batch of up to MaxBatch classification-task
// images with their base64-encoded bytes.
func (s *LabelingService) ListImages(r *http.Request) (any, error) {
	if !s.caps.Database {
		slog.Info("no document store configured, returning empty image batch")
		return []api.ImageListEntry{}, nil
	}

	ctx := r.Context()
	batch := []api.ImageListEntry{}

	for doc, err := range s.docs.ScanFrom(ctx, s.sampling.StartOffset()) {
		if err != nil {
			slog.Error("error scanning documents", "error", err)
			return nil, CodedErrorf(http.StatusInternalServerError, "error scanning documents")
		}
		if !strings.Contains(doc.FileName, classificationTaskMarker) {
			continue
		}

		data, err := s.storage.GetObject(ctx, s.bucket, doc.FileName)
		if err != nil {
			// A document without a retrievable blob is a data-integrity
			// fault, not something to skip silently.
			slog.Error("error fetching image for document", "file_id", doc.Id, "file_name", doc.FileName, "error", err)
			return nil, CodedErrorf(http.StatusInternalServerError, "error fetching image %s", doc.FileName)
		}

		batch = append(batch, api.ImageListEntry{
			FileName:    doc.FileName,
			FileId:      doc.Id,
			ImageBase64: base64.StdEncoding.EncodeToString(data),
		})
		if len(batch) >= s.sampling.MaxBatch {
			break
		}
	}

	s.sampling.Shuffle(len(batch), func(i, j int) { batch[i], batch[j] = batch[j], batch[i] })

	return batch, nil
}

func (s *LabelingService) ListImageNames(r *http.Request) (any, error) {
	if !s.caps.Database {
		slog.Info("no document store configured, returning empty name list")
		return []string{}, nil
	}

	names, err := s.docs.ListFileNames(r.Context())
	if err != nil {
		slog.Error("error listing document names", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error listing document names")
	}
	if names == nil {
		names = []string{}
	}

	return names, nil
}

// RecordGuess appends a human-submitted answer to a document's answer
// history and returns the updated document.
func (s *LabelingService) RecordGuess(r *http.Request) (any, error) {
	req, err := ParseRequest[api.GuessRequest](r)
	if err != nil {
		return nil, err
	}
	if req.Answer == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "answer is required")
	}

	if !s.caps.Database {
		slog.Info("no document store configured, echoing guess", "file_id", req.FileId)
		return req, nil
	}

	ctx := r.Context()

	doc, err := s.docs.GetDocument(ctx, req.FileId)
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "document %d not found", req.FileId)
		}
		slog.Error("error loading document", "file_id", req.FileId, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error loading document")
	}

	doc.Answers = append(doc.Answers, req.Answer)
	if err := s.docs.SaveDocument(ctx, &doc); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, CodedErrorf(http.StatusConflict, "document %d was modified concurrently", req.FileId)
		}
		slog.Error("error saving document", "file_id", req.FileId, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error saving document")
	}

	return api.ImageDocument{FileId: doc.Id, FileName: doc.FileName, Answers: doc.Answers}, nil
}

// ClassifyImage runs an uploaded image through the configured model, persists
// the metadata document and the raw image, and returns the top prediction.
func (s *LabelingService) ClassifyImage(r *http.Request) (any, error) {
	req, err := ParseRequest[api.ClassifyRequest](r)
	if err != nil {
		return nil, err
	}
	if req.ImageFilename == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "image_filename is required")
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "image_base64 is not valid base64: %v", err)
	}

	if !s.caps.Classifier {
		slog.Info("no classifier configured, skipping classification", "file_name", req.ImageFilename)
		return nil, nil
	}

	ctx := r.Context()

	result, err := s.classifier.Classify(ctx, image, req.ImageFilename)
	if err != nil {
		if errors.Is(err, classifier.ErrInvalidImage) {
			return nil, CodedErrorf(http.StatusBadRequest, "classifier rejected image: %v", err)
		}
		slog.Error("error classifying image", "file_name", req.ImageFilename, "error", err)
		return nil, CodedErrorf(http.StatusBadGateway, "classifier unavailable")
	}

	top, ok := result.TopClass()
	if !ok {
		return nil, CodedErrorf(http.StatusBadGateway, "classifier returned no classes")
	}

	if s.caps.Database {
		if _, err := s.docs.CreateDocument(ctx, req.ImageFilename); err != nil {
			slog.Error("error creating document", "file_name", req.ImageFilename, "error", err)
			return nil, CodedErrorf(http.StatusInternalServerError, "error creating document")
		}
	}

	// The document is created before the blob upload with no compensating
	// delete; an upload failure here leaves a document whose blob was never
	// written.
	if err := s.storage.PutObject(ctx, s.bucket, req.ImageFilename, bytes.NewReader(image)); err != nil {
		slog.Error("error storing image, document may be orphaned", "file_name", req.ImageFilename, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error storing image")
	}

	return api.ClassifyResponse{Score: top.Score, TrashClass: top.Class}, nil
}
