package services

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vizzyhq/vizzy/internal/common"
)

// GeneratedAsset is one produced output, as raw bytes ready for storage.
type GeneratedAsset struct {
	Data      []byte
	Ext       string
	Type      string
	ModelUsed string
}

// Generator turns a classified intent and final prompt into assets.
// sourceImageURL is set in transform mode and points at the uploaded image.
type Generator interface {
	Generate(ctx context.Context, intent *Intent, prompt, sourceImageURL string) ([]GeneratedAsset, error)
}

// OpenAIGenerator produces images via the images API and decodes the
// base64 payload so the caller can persist the bytes itself.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

var _ Generator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{client: openai.NewClient(apiKey), model: model}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, intent *Intent, prompt, sourceImageURL string) ([]GeneratedAsset, error) {
	if intent.OutputType == common.AssetTypeVideo {
		// No video backend yet; ship a placeholder clip so the thread
		// stays consistent.
		return placeholderAssets(intent, g.model), nil
	}

	finalPrompt := prompt
	if intent.Mode == "transform" && sourceImageURL != "" {
		finalPrompt = fmt.Sprintf("Rework the image at %s as follows: %s", sourceImageURL, prompt)
	}

	req := openai.ImageRequest{
		Model:          g.model,
		Prompt:         finalPrompt,
		N:              intent.NumOutputs,
		Size:           imageSize(intent.AspectRatio),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}

	resp, err := g.client.CreateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation returned no data")
	}

	assets := make([]GeneratedAsset, 0, len(resp.Data))
	for _, d := range resp.Data {
		raw, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("image generation returned invalid base64: %w", err)
		}
		assets = append(assets, GeneratedAsset{
			Data:      raw,
			Ext:       ".png",
			Type:      common.AssetTypeImage,
			ModelUsed: g.model,
		})
	}
	return assets, nil
}

func imageSize(aspectRatio string) string {
	switch aspectRatio {
	case "16:9":
		return openai.CreateImageSize1792x1024
	case "9:16":
		return openai.CreateImageSize1024x1792
	default:
		return openai.CreateImageSize1024x1024
	}
}

// MockupGenerator stands in when no API key is configured. It returns
// placeholder bytes so the whole pipeline, storage included, still runs.
type MockupGenerator struct{}

var _ Generator = (*MockupGenerator)(nil)

func NewMockupGenerator() *MockupGenerator { return &MockupGenerator{} }

func (g *MockupGenerator) Generate(ctx context.Context, intent *Intent, prompt, sourceImageURL string) ([]GeneratedAsset, error) {
	return placeholderAssets(intent, "mockup"), nil
}

// placeholderPNG is a 1x1 transparent PNG.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func placeholderAssets(intent *Intent, model string) []GeneratedAsset {
	ext := ".png"
	assetType := common.AssetTypeImage
	if intent.OutputType == common.AssetTypeVideo {
		ext = ".mp4"
		assetType = common.AssetTypeVideo
	}

	assets := make([]GeneratedAsset, 0, intent.NumOutputs)
	for i := 0; i < intent.NumOutputs; i++ {
		assets = append(assets, GeneratedAsset{
			Data:      placeholderPNG,
			Ext:       ext,
			Type:      assetType,
			ModelUsed: model,
		})
	}
	return assets
}
