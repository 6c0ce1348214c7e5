package config

import (
	"fmt"
	"time"

	"LandmarkGolang/pkg/overlay"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
)

type Env struct {
	AppPort string `env:"APP_PORT" envDefault:"3000" validate:"required,numeric"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	ReplicateAPIToken string `env:"REPLICATE_API_TOKEN" validate:"required"`
	ReplicateBaseURL  string `env:"REPLICATE_BASE_URL" envDefault:"https://api.replicate.com/v1" validate:"required,url"`

	DetectorTimeout time.Duration `env:"DETECTOR_TIMEOUT" envDefault:"60s" validate:"gt=0"`
	DefaultDetector string        `env:"DEFAULT_DETECTOR" envDefault:"mediapipe/face-mesh" validate:"required"`
	FaceMeshURL     string        `env:"FACEMESH_URL" envDefault:"ws://localhost:8001/api/v1/face-mesh/ws" validate:"required,url"`

	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiModelName string `env:"GEMINI_MODEL_NAME" envDefault:"gemini-1.5-flash"`

	AWSRegion          string `env:"AWS_REGION"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" validate:"required_with=AWSAccessKeyID"`

	MaxUploadBytes int64   `env:"MAX_UPLOAD_BYTES" envDefault:"10485760" validate:"gt=0"`
	RateLimit      float64 `env:"RATE_LIMIT" envDefault:"50" validate:"gt=0"`
	RateBurst      int     `env:"RATE_BURST" envDefault:"100" validate:"gt=0"`

	BoxColor string `env:"BOX_COLOR" envDefault:"yellow" validate:"required"`
}

func (e *Env) RekognitionEnabled() bool {
	return e.AWSRegion != ""
}

func (e *Env) GeminiEnabled() bool {
	return e.GeminiAPIKey != ""
}

// ColorTable is the default marker palette with the box color taken from
// BOX_COLOR.
func (e *Env) ColorTable() (*overlay.ColorTable, error) {
	box, err := overlay.ParseColor(e.BoxColor)
	if err != nil {
		return nil, err
	}
	return overlay.DefaultColorTable().WithBox(box), nil
}

// LoadEnv reads the process environment. godotenv should already have run.
func LoadEnv(v *validator.Validate) (*Env, error) {
	cfg := &Env{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if v == nil {
		v = NewValidator()
	}
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if _, err := cfg.ColorTable(); err != nil {
		return nil, fmt.Errorf("invalid environment: BOX_COLOR: %w", err)
	}

	return cfg, nil
}
