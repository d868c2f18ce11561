package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server     Server
	Database   Database
	LLM        LLM
	YouTube    YouTube
	Generation Generation
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type LLM struct {
	Provider     string // "openai" (default) or "gemini"
	OpenAIApiKey string
	GeminiApiKey string
}

type YouTube struct {
	ApiKey string
}

type Generation struct {
	TimeoutSec  int
	QueueSize   int
	Concurrency int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("LLM_PROVIDER", "openai")
	viper.SetDefault("GENERATION_TIMEOUT_SEC", 180)
	viper.SetDefault("WORKER_QUEUE_SIZE", 64)
	viper.SetDefault("WORKER_CONCURRENCY", 2)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.LLM.Provider = viper.GetString("LLM_PROVIDER")
	config.LLM.OpenAIApiKey = viper.GetString("OPENAI_API_KEY")
	config.LLM.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.YouTube.ApiKey = viper.GetString("YOUTUBE_API_KEY")

	config.Generation.TimeoutSec = viper.GetInt("GENERATION_TIMEOUT_SEC")
	config.Generation.QueueSize = viper.GetInt("WORKER_QUEUE_SIZE")
	config.Generation.Concurrency = viper.GetInt("WORKER_CONCURRENCY")

	log.Info().Str("port", config.Server.Port).Str("llm_provider", config.LLM.Provider).Msg("Config loaded")
	return &config, nil
}
