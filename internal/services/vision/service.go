package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/common"
)

// DefaultInstruction is the analysis prompt used when the caller does not
// supply one.
const DefaultInstruction = "You are an expert agronomist. Look into the picture and identify what the issue with the plant/crop is."

// Service analyzes crop and plant images with a multimodal model.
// Implements interfaces.VisionService.
type Service struct {
	model   string
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

// NewService creates an image analysis service. The Gemini API key is shared
// with the completion service configuration.
func NewService(visionConfig *common.VisionConfig, geminiConfig *common.GeminiConfig, logger arbor.ILogger) (*Service, error) {
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for image analysis (set GEMINI_API_KEY, KRONIA_GEMINI_API_KEY, or gemini.api_key in config)")
	}

	model := visionConfig.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	timeout, err := time.ParseDuration(geminiConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", geminiConfig.Timeout, err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &Service{
		model:   model,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}

	logger.Info().
		Str("model", model).
		Msg("Vision service initialized successfully")

	return service, nil
}

// Analyze runs the instruction against the image bytes and returns the
// model's textual findings.
func (s *Service) Analyze(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image cannot be empty")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if instruction == "" {
		instruction = DefaultInstruction
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("image_bytes", len(image)).
		Str("mime_type", mimeType).
		Msg("Starting image analysis")

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromBytes(image, mimeType),
				genai.NewPartFromText(instruction),
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.model, contents, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("image_bytes", len(image)).
			Msg("Image analysis failed")
		return "", fmt.Errorf("image analysis failed: %w", err)
	}

	var result strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					result.WriteString(part.Text)
				}
			}
			if result.Len() > 0 {
				break
			}
		}
	}

	if result.Len() == 0 {
		return "", fmt.Errorf("no analysis returned from vision model")
	}

	duration := time.Since(startTime)
	s.logger.Debug().
		Int("analysis_length", result.Len()).
		Dur("duration", duration).
		Msg("Image analysis completed")

	return result.String(), nil
}

// Close releases client resources.
func (s *Service) Close() error {
	s.client = nil
	return nil
}
