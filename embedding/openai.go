package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// OpenAI embeds through an OpenAI-compatible embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAI creates an adapter requesting vectors of dim values from model.
func NewOpenAI(baseURL, apiKey, model string, dim int) *OpenAI {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, option.WithHTTPClient(&http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}))
	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, model: model, dim: dim}
}

// Embed implements Embedder.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: o.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	}
	if o.dim > 0 {
		params.Dimensions = param.NewOpt(int64(o.dim))
	}

	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", ErrEmbeddingFailed, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: openai: empty response", ErrEmbeddingFailed)
	}
	data := resp.Data[0].Embedding
	if len(data) != o.dim {
		return nil, fmt.Errorf("%w: openai returned %d values, want %d", ErrEmbeddingFailed, len(data), o.dim)
	}
	vec := make([]float32, len(data))
	for i, v := range data {
		vec[i] = float32(v)
	}
	return Normalize(vec), nil
}

// Dimension implements Embedder.
func (o *OpenAI) Dimension() int { return o.dim }

// Name implements Embedder.
func (o *OpenAI) Name() string { return "openai:" + o.model }
