package pipeline

import "fmt"

// Config holds the pipeline's encoding tunables. The two quality levels
// are externally chosen targets, not derived values: label photos feed
// downstream recognition and keep high fidelity, avatars are displayed
// small and loaded often, so footprint wins.
type Config struct {
	// LabelQuality is the JPEG quality (1-100) for captured label photos.
	LabelQuality int `json:"label_quality"`

	// AvatarQuality is the JPEG quality (1-100) for normalized avatars.
	AvatarQuality int `json:"avatar_quality"`

	// AvatarMaxEdge bounds the longer edge of a normalized avatar, in pixels.
	AvatarMaxEdge int `json:"avatar_max_edge"`
}

// DefaultConfig returns the recommended tunables.
func DefaultConfig() Config {
	return Config{
		LabelQuality:  92,
		AvatarQuality: 80,
		AvatarMaxEdge: 512,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.LabelQuality < 1 || c.LabelQuality > 100 {
		return fmt.Errorf("label_quality must be between 1 and 100, got %d", c.LabelQuality)
	}
	if c.AvatarQuality < 1 || c.AvatarQuality > 100 {
		return fmt.Errorf("avatar_quality must be between 1 and 100, got %d", c.AvatarQuality)
	}
	if c.AvatarMaxEdge < 1 {
		return fmt.Errorf("avatar_max_edge must be positive, got %d", c.AvatarMaxEdge)
	}
	return nil
}
