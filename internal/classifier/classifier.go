package classifier

import (
	"context"
	"errors"
)

var (
	// ErrModelUnavailable indicates the hosted model could not be reached or
	// returned a service-side failure.
	ErrModelUnavailable = errors.New("classifier service unavailable")
	// ErrInvalidImage indicates the service rejected the image payload.
	ErrInvalidImage = errors.New("classifier rejected image")
)

type ClassScore struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
}

// Result holds the ranked class predictions for a single image, highest
// scoring class first.
type Result struct {
	Classes []ClassScore `json:"classes"`
}

func (r Result) TopClass() (ClassScore, bool) {
	if len(r.Classes) == 0 {
		return ClassScore{}, false
	}
	return r.Classes[0], true
}

type Classifier interface {
	Classify(ctx context.Context, image []byte, fileName string) (Result, error)
}
