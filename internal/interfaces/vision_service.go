package interfaces

import "context"

// VisionService analyzes crop or plant images.
type VisionService interface {
	// Analyze runs the instruction against the image bytes and returns the
	// model's textual findings.
	Analyze(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
}
