package config

import (
	"sync"
	"time"
)

var (
	ollamaOnce   sync.Once
	ollamaConfig *OllamaConfig
)

type OllamaConfig struct {
	URL            string
	Model          string
	EmbeddingModel string

	// Client-level timeouts for the three completion call sites.
	EmbedTimeout   time.Duration
	AnswerTimeout  time.Duration
	SegmentTimeout time.Duration
	CombineTimeout time.Duration
}

func GetOllamaConfig() *OllamaConfig {
	ollamaOnce.Do(func() {
		loadEnv()
		ollamaConfig = &OllamaConfig{
			URL:            getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:          getEnv("OLLAMA_MODEL", "llama3.1"),
			EmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbedTimeout:   time.Duration(getEnvInt("OLLAMA_EMBED_TIMEOUT_SECONDS", 30)) * time.Second,
			AnswerTimeout:  time.Duration(getEnvInt("OLLAMA_ANSWER_TIMEOUT_SECONDS", 120)) * time.Second,
			SegmentTimeout: time.Duration(getEnvInt("OLLAMA_SEGMENT_TIMEOUT_SECONDS", 360)) * time.Second,
			CombineTimeout: time.Duration(getEnvInt("OLLAMA_COMBINE_TIMEOUT_SECONDS", 1800)) * time.Second,
		}
	})
	return ollamaConfig
}
