package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jon4hz/bookshelf/internal/config"
	"github.com/jon4hz/bookshelf/internal/database"
)

const baseURL = "https://www.gravatar.com/avatar/"

var (
	validDefaults = map[string]bool{
		"404":       true,
		"mp":        true,
		"identicon": true,
		"monsterid": true,
		"wavatar":   true,
		"retro":     true,
		"robohash":  true,
		"blank":     true,
	}
	validRatings = map[string]bool{"g": true, "pg": true, "r": true, "x": true}
)

// URL returns the avatar URL for the given email address.
// Returns an empty string if Gravatar is disabled or email is empty.
func URL(email string, cfg *config.GravatarConfig) string {
	if cfg == nil || !cfg.Enabled {
		return ""
	}
	email = database.NormalizeEmail(email)
	if email == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(hash[:])

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Add("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Add("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Add("s", strconv.Itoa(cfg.Size))
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Check reports the first invalid option of an enabled Gravatar configuration.
func Check(cfg *config.GravatarConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if cfg.DefaultImage != "" && !validDefaults[cfg.DefaultImage] {
		return fmt.Errorf("invalid gravatar default image %q", cfg.DefaultImage)
	}
	if cfg.Rating != "" && !validRatings[cfg.Rating] {
		return fmt.Errorf("invalid gravatar rating %q", cfg.Rating)
	}
	// 0 means the gravatar default size
	if cfg.Size != 0 && (cfg.Size < 1 || cfg.Size > 2048) {
		return fmt.Errorf("gravatar size must be between 1 and 2048, got %d", cfg.Size)
	}
	return nil
}
