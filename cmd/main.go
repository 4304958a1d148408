package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/audio"
	"github.com/CanerKarul/Masal-Yaraticisi/internal/cli/scheme/colours"
	"github.com/CanerKarul/Masal-Yaraticisi/internal/config"
	"github.com/CanerKarul/Masal-Yaraticisi/internal/gen"
	"github.com/CanerKarul/Masal-Yaraticisi/internal/reader"
)

func main() {

	config.SetDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		fmt.Println("\n" + colours.Warning.Sprint("👋 Goodbye! Sweet dreams! 🌙"))
		os.Exit(0)
	}()

	rootCmd := &cobra.Command{
		Use:   "masal",
		Short: "🪄 Create illustrated, narrated bedtime stories",
		Long: `
┌─────────────────────────────────────┐
│  🪄 Masal Yaratıcısı ✨            │
│  Dream up a theme and listen to     │
│  your very own illustrated story    │
│  read aloud, page by page 👶🌙     │
└─────────────────────────────────────┘

Describe what the story should be about, pick a hero and a page count,
and the story is written, illustrated and narrated for you. Perfect for
bedtime! 🌙
		`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if level, err := logrus.ParseLevel(viper.GetString("log.level")); err == nil {
				logrus.SetLevel(level)
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			showWelcome()
		},
	}

	// Create command
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "✨ Create and read a new story",
		Long:  "Generate a brand new story from your theme and read it page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(ctx, cmd)
		},
	}
	createCmd.Flags().StringP("topic", "t", "", "What the story should be about (required)")
	createCmd.Flags().StringP("hero", "n", "", "Optional name of the hero")
	createCmd.Flags().IntP("pages", "p", 5, "Number of pages (3-10)")
	createCmd.Flags().Bool("offline", false, "Use the offline generator instead of the remote backend")
	createCmd.MarkFlagRequired("topic")

	// Voices command
	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "🎤 List narration voices",
		Long:  "List the voices available with the Google speech backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVoices(ctx)
		},
	}

	rootCmd.AddCommand(createCmd, voicesCmd)

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func showWelcome() {
	fmt.Println()
	colours.Title.Println("🌟 Welcome to Masal Yaratıcısı! 🌟")
	fmt.Println()
	colours.Info.Println("📚 Available commands:")
	fmt.Println("  • masal create -t \"a flying elephant\"  - Create and read a story")
	fmt.Println("  • masal create -t ... -n Ada -p 3       - Pick a hero and a page count")
	fmt.Println("  • masal voices                          - List narration voices")
	fmt.Println()
	colours.Prompt.Println("✨ Ready for a magical story adventure? ✨")
}

func runCreate(ctx context.Context, cmd *cobra.Command) error {
	topic, _ := cmd.Flags().GetString("topic")
	hero, _ := cmd.Flags().GetString("hero")
	pages, _ := cmd.Flags().GetInt("pages")
	offline, _ := cmd.Flags().GetBool("offline")

	generator, release, err := buildGenerator(ctx, offline)
	if err != nil {
		return err
	}
	defer release()

	colours.Info.Println("🪄 Weaving your story... this can take a little while")
	requester := gen.NewStructureRequester(generator)
	s, err := requester.RequestStructure(ctx, topic, hero, pages)
	if err != nil {
		return err
	}

	session := reader.NewSession(s)
	fetcher := gen.NewAssetFetcher(generator)
	orch := reader.NewOrchestrator(session, fetcher, viper.GetDuration("reader.lookahead_delay"))

	player := audio.NewPlayer(viper.GetInt("audio.sample_rate"), viper.GetInt("audio.channels"))
	if err := player.SetRate(viper.GetFloat64("reader.playback_rate")); err != nil {
		return err
	}

	return reader.NewReader(session, orch, player, os.Stdin).Run(ctx)
}

func runVoices(ctx context.Context) error {
	speech, err := gen.NewGoogleSpeech(ctx,
		viper.GetString("gen.google_voice"),
		viper.GetString("gen.google_language_code"),
		viper.GetInt("audio.sample_rate"))
	if err != nil {
		return fmt.Errorf("the voices command needs the Google speech backend: %w", err)
	}
	defer speech.Close()

	voices, err := speech.ListVoices(ctx)
	if err != nil {
		return err
	}

	colours.Title.Println("🎤 Available narration voices:")
	for _, v := range voices {
		fmt.Printf("  • %s\n", v)
	}
	return nil
}

// buildGenerator assembles the generation backend from config: the mock
// for offline use, otherwise the Gemini client, optionally with speech
// rerouted to Google Cloud TTS.
func buildGenerator(ctx context.Context, offline bool) (gen.Generator, func(), error) {
	if offline {
		return gen.NewMockGenerator(), func() {}, nil
	}

	client, err := gen.NewGeminiClient(gen.GeminiConfig{
		APIKey:         viper.GetString("gen.api_key"),
		BaseURL:        viper.GetString("gen.base_url"),
		Timeout:        viper.GetDuration("gen.timeout"),
		StructureModel: viper.GetString("gen.structure_model"),
		ImageModel:     viper.GetString("gen.image_model"),
		SpeechModel:    viper.GetString("gen.speech_model"),
		Voice:          viper.GetString("gen.voice"),
		Language:       viper.GetString("gen.language"),
	})
	if err != nil {
		return nil, nil, err
	}

	if viper.GetString("gen.speech_backend") == "google" {
		speech, err := gen.NewGoogleSpeech(ctx,
			viper.GetString("gen.google_voice"),
			viper.GetString("gen.google_language_code"),
			viper.GetInt("audio.sample_rate"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set up the Google speech backend: %w", err)
		}
		return gen.WithSpeechBackend(client, speech), func() { speech.Close() }, nil
	}

	return client, func() {}, nil
}

// Configuration management with Viper
func init() {
	viper.SetConfigName("masal")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.masal")
	viper.AddConfigPath(".")

	viper.BindEnv("gen.api_key", "GEMINI_API_KEY")

	viper.ReadInConfig()
}
