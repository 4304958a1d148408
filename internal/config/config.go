package config

import (
	"time"

	"github.com/spf13/viper"
)

// SetDefaults registers every configuration key with its default value.
// Any of them can be overridden from the config file or, for the API key,
// the GEMINI_API_KEY environment variable.
func SetDefaults() {
	viper.SetDefault("gen.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("gen.timeout", 90*time.Second)
	viper.SetDefault("gen.language", "Turkish")
	viper.SetDefault("gen.structure_model", "gemini-2.5-flash")
	viper.SetDefault("gen.image_model", "imagen-4.0-generate-001")
	viper.SetDefault("gen.speech_model", "gemini-2.5-flash-preview-tts")
	viper.SetDefault("gen.voice", "Kore")
	viper.SetDefault("gen.speech_backend", "gemini") // or "google"
	viper.SetDefault("gen.google_voice", "tr-TR-Standard-A")
	viper.SetDefault("gen.google_language_code", "tr-TR")

	viper.SetDefault("audio.sample_rate", 24000)
	viper.SetDefault("audio.channels", 1)

	viper.SetDefault("reader.lookahead_delay", 600*time.Millisecond)
	viper.SetDefault("reader.playback_rate", 1.0)

	viper.SetDefault("log.level", "info")
}
