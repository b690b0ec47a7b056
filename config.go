package routeprobe

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Settings configures one Engine.Run invocation. Struct tags are
// validated with go-playground/validator/v10, the same library the
// teacher's Handler uses for request validation — reused here for
// startup-time config validation instead of per-request validation.
type Settings struct {
	BaseURL string `validate:"required,url"`

	Seed uint64 `validate:"-"`

	TrialsPerRoute int `validate:"required,gte=1,lte=100000"`

	Concurrency int `validate:"required,gte=1,lte=256"`

	RequestTimeout time.Duration `validate:"required,gte=1000000"` // nanoseconds; >= 1ms

	MaxShrinkRounds int `validate:"gte=0,lte=1000"`

	Include []string `validate:"-"`
	Exclude []string `validate:"-"`
	Methods []string `validate:"-"`
}

// DefaultSettings returns a Settings with reasonable defaults, ready to
// be overridden field-by-field.
func DefaultSettings(baseURL string) Settings {
	return Settings{
		BaseURL:         baseURL,
		TrialsPerRoute:  100,
		Concurrency:     8,
		RequestTimeout:  10 * time.Second,
		MaxShrinkRounds: 50,
	}
}

// StatefulSettings extends Settings with the stateful-mode knobs.
type StatefulSettings struct {
	Settings

	MaxSequenceLength int `validate:"required,gte=1,lte=1000"`
	NumSequences      int `validate:"required,gte=1,lte=100000"`
}

// DefaultStatefulSettings returns the stateful-mode defaults.
func DefaultStatefulSettings(baseURL string) StatefulSettings {
	return StatefulSettings{
		Settings:          DefaultSettings(baseURL),
		MaxSequenceLength: 20,
		NumSequences:      50,
	}
}

var settingsValidator = validator.New()

// ValidateSettings checks s against its struct tags, returning a
// validator.ValidationErrors (renderable via FormatSettingsError) on
// failure.
func ValidateSettings(s Settings) error {
	return settingsValidator.Struct(s)
}

// ValidateStatefulSettings checks s against its struct tags.
func ValidateStatefulSettings(s StatefulSettings) error {
	return settingsValidator.Struct(s)
}
