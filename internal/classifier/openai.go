package classifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/openai/openai-go"
)

const classifyPrompt = `You are an image classifier for a waste sorting
application. Classify the submitted image into one of: cardboard, glass,
metal, paper, plastic, trash. Respond with only a JSON array of objects of
the form {"class": "<label>", "score": <0..1>}, ordered by descending score,
and nothing else.`

// OpenAIClassifier is an alternative classifier backend that sends the image
// to an OpenAI vision-capable chat model. The API key is read from
// OPENAI_API_KEY by the client library.
type OpenAIClassifier struct {
	client openai.Client
	model  string
}

var _ Classifier = (*OpenAIClassifier)(nil)

func NewOpenAIClassifier(model string) *OpenAIClassifier {
	return &OpenAIClassifier{
		client: openai.NewClient(),
		model:  model,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, image []byte, fileName string) (Result, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifyPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		slog.Error("unable to reach openai", "error", err)
		return Result{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: empty completion", ErrModelUnavailable)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var classes []ClassScore
	if err := json.Unmarshal([]byte(content), &classes); err != nil {
		slog.Error("model returned unparseable classification", "content", content, "error", err)
		return Result{}, fmt.Errorf("%w: unparseable model output", ErrInvalidImage)
	}

	return Result{Classes: classes}, nil
}
