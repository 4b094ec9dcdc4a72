package embedding

import "context"

// Provider converts text to a fixed-length vector. The backend is
// selected once at bootstrap; callers never branch on provider type.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
