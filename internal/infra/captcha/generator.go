package captcha

import (
	"fmt"
	"image/color"

	"github.com/mojocn/base64Captcha"

	"github.com/shriya-199/Prolance/internal/core/port"
	"github.com/shriya-199/Prolance/internal/infra/config"
)

// Generator renders string CAPTCHAs as base64-encoded PNG data URIs.
type Generator struct {
	driver *base64Captcha.DriverString
}

// NewGenerator constructs a generator from the captcha settings. Zero
// values fall back to the rendering defaults.
func NewGenerator(cfg config.CaptchaSettings) *Generator {
	length := cfg.Length
	if length <= 0 {
		length = 4
	}
	width := cfg.Width
	if width <= 0 {
		width = 200
	}
	height := cfg.Height
	if height <= 0 {
		height = 50
	}
	noise := cfg.NoiseCount
	if noise < 0 {
		noise = 6
	}
	source := cfg.Source
	if source == "" {
		source = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"
	}

	driver := base64Captcha.NewDriverString(
		height,
		width,
		noise,
		base64Captcha.OptionShowHollowLine,
		length,
		source,
		&color.RGBA{R: 249, G: 250, B: 251, A: 255},
		nil,
		nil,
	)

	return &Generator{driver: driver.ConvertFonts()}
}

// Generate renders a fresh challenge, returning the image as a data URI
// together with the expected answer.
func (g *Generator) Generate() (string, string, error) {
	_, content, answer := g.driver.GenerateIdQuestionAnswer()

	item, err := g.driver.DrawCaptcha(content)
	if err != nil {
		return "", "", fmt.Errorf("draw captcha: %w", err)
	}

	return item.EncodeB64string(), answer, nil
}

var _ port.ChallengeGenerator = (*Generator)(nil)
