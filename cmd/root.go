package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "resume-screener"
	envPrefix = "SCREENER"
)

type Config struct {
	LLM       *LLMConfig       `mapstructure:"llm"`
	Gemini    *GeminiConfig    `mapstructure:"gemini"`
	Embedding *EmbeddingConfig `mapstructure:"embedding"`
	NLP       *NLPConfig       `mapstructure:"nlp"`
	Skills    *SkillsConfig    `mapstructure:"skills"`
}

type LLMConfig struct {
	Mode      string        `mapstructure:"mode"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max-tokens"`
	Endpoint  string        `mapstructure:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
}

type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	Endpoint   string `mapstructure:"endpoint"`
}

type NLPConfig struct {
	Provider           string `mapstructure:"provider"`
	Model              string `mapstructure:"model"`
	Endpoint           string `mapstructure:"endpoint"`
	ClassifierEndpoint string `mapstructure:"classifier-endpoint"`
	ClassifierModel    string `mapstructure:"classifier-model"`
	ClassifierToken    string `mapstructure:"classifier-token"`
}

type SkillsConfig struct {
	TopK         int    `mapstructure:"top-k"`
	TaxonomyFile string `mapstructure:"taxonomy-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener extracts résumé fields and scores a résumé against a job description",
	}

	// envAliases keeps the historical variable names working next to the
	// SCREENER_ prefixed ones.
	envAliases = map[string]string{
		"llm.mode":             "LLM_MODE",
		"llm.model":            "LLM_MODEL",
		"llm.max-tokens":       "LLM_MAX_TOKENS",
		"gemini.api-key":       "GEMINI_API_KEY",
		"gemini.api-key-file":  "GEMINI_API_KEY_FILE",
		"embedding.model":      "EMBEDDING_MODEL",
		"nlp.model":            "SPACY_MODEL",
		"nlp.classifier-model": "BERT_NER_MODEL",
		"skills.top-k":         "TOP_K_SKILLS",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	for key, env := range envAliases {
		if err := viper.BindEnv(key, envPrefix+"_"+envKey(key), env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("llm.mode", "LOCAL")
	viper.SetDefault("llm.model", "flan-t5-small")
	viper.SetDefault("llm.max-tokens", 256)
	viper.SetDefault("llm.endpoint", "http://localhost:11434")
	viper.SetDefault("llm.timeout", 120*time.Second)

	viper.SetDefault("gemini.api-key", "")
	viper.SetDefault("gemini.api-key-file", "")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.embedding-model", "gemini-embedding-001")
	viper.SetDefault("gemini.max-retries", 3)
	viper.SetDefault("gemini.max-log-length", 200)

	viper.SetDefault("embedding.provider", "hash")
	viper.SetDefault("embedding.model", "all-minilm")
	viper.SetDefault("embedding.dimensions", 0)
	viper.SetDefault("embedding.endpoint", "")

	viper.SetDefault("nlp.provider", "rules")
	viper.SetDefault("nlp.model", "en_core_web_sm")
	viper.SetDefault("nlp.endpoint", "")
	viper.SetDefault("nlp.classifier-endpoint", "")
	viper.SetDefault("nlp.classifier-model", "dslim/bert-base-NER")
	viper.SetDefault("nlp.classifier-token", "")

	viper.SetDefault("skills.top-k", 8)
	viper.SetDefault("skills.taxonomy-file", "")
}

func envKey(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func initConfig() {
	// A missing .env file is normal.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless given explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
