package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spigell/resume-screener/internal/logger"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// setup creates the logger and loads the configuration shared by all commands.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil || config.LLM == nil || config.Gemini == nil || config.Embedding == nil || config.NLP == nil || config.Skills == nil {
		logger.Fatal("config is incomplete")
	}

	// do not bother error since there is a valid parseable config
	redacted := *config
	gemini := *config.Gemini
	if gemini.APIKey != "" {
		gemini.APIKey = "***"
	}
	redacted.Gemini = &gemini
	pretty, _ := json.MarshalIndent(redacted, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func readResume(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
