package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const visualRecognitionVersion = "2018-03-19"

// WatsonClassifier submits images to a Watson Visual Recognition v3
// compatible endpoint, invoking a single configured custom model.
type WatsonClassifier struct {
	client  *resty.Client
	modelId string
}

var _ Classifier = (*WatsonClassifier)(nil)

func NewWatsonClassifier(endpoint, apiKey, modelId string) *WatsonClassifier {
	return &WatsonClassifier{
		client: resty.New().
			SetBaseURL(endpoint).
			SetBasicAuth("apikey", apiKey).
			SetTimeout(30 * time.Second),
		modelId: modelId,
	}
}

type classifyResponse struct {
	Images []struct {
		Classifiers []struct {
			Classes []struct {
				Class string  `json:"class"`
				Score float64 `json:"score"`
			} `json:"classes"`
		} `json:"classifiers"`
	} `json:"images"`
}

func (c *WatsonClassifier) Classify(ctx context.Context, image []byte, fileName string) (Result, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("version", visualRecognitionVersion).
		SetFileReader("images_file", fileName, bytes.NewReader(image)).
		SetFormData(map[string]string{"classifier_ids": c.modelId}).
		Post("/v3/classify")
	if err != nil {
		slog.Error("unable to reach visual recognition service", "error", err)
		return Result{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	if res.StatusCode() == http.StatusBadRequest || res.StatusCode() == http.StatusUnsupportedMediaType {
		slog.Error("visual recognition rejected image", "file_name", fileName, "status_code", res.StatusCode(), "body", res.String())
		return Result{}, fmt.Errorf("%w: status %d", ErrInvalidImage, res.StatusCode())
	}
	if !res.IsSuccess() {
		slog.Error("visual recognition returned error", "status_code", res.StatusCode(), "body", res.String())
		return Result{}, fmt.Errorf("%w: status %d", ErrModelUnavailable, res.StatusCode())
	}

	var parsed classifyResponse
	if err := json.Unmarshal(res.Body(), &parsed); err != nil {
		return Result{}, fmt.Errorf("error parsing classifier response: %w", err)
	}

	if len(parsed.Images) == 0 || len(parsed.Images[0].Classifiers) == 0 {
		return Result{}, fmt.Errorf("%w: empty classification result", ErrModelUnavailable)
	}

	var result Result
	for _, class := range parsed.Images[0].Classifiers[0].Classes {
		result.Classes = append(result.Classes, ClassScore{Class: class.Class, Score: class.Score})
	}

	return result, nil
}
