package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}
	conf.Ingest.ApplyDefaults()

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	c.Ingest.ApplyDefaults()
	return c
}

type CoreConfig struct {
	Addr     string        `toml:"addr"`
	Log      Log           `toml:"log"`
	Postgres PGConfig      `toml:"postgres"`
	AI       AIConfig      `toml:"ai"`
	Storage  StorageConfig `toml:"storage"`
	Ingest   IngestConfig  `toml:"ingest"`
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("DOCUQUERY_API_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.AI.FromENV()
	c.Storage.FromENV()
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("DOCUQUERY_API_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("DOCUQUERY_API_LOG_LEVEL")
	l.Path = os.Getenv("DOCUQUERY_API_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

type AIConfig struct {
	Token          string `toml:"token"`
	Endpoint       string `toml:"endpoint"`
	ChatModel      string `toml:"chat_model"`
	VisionModel    string `toml:"vision_model"`
	EmbeddingModel string `toml:"embedding_model"`
	// embedding dimension, must match the vector column width
	Dimension int `toml:"dimension"`
	// minimum milliseconds between oracle calls
	CallIntervalMS int `toml:"call_interval_ms"`
}

func (a *AIConfig) FromENV() {
	a.Token = os.Getenv("DOCUQUERY_AI_TOKEN")
	a.Endpoint = os.Getenv("DOCUQUERY_AI_ENDPOINT")
	a.ChatModel = os.Getenv("DOCUQUERY_AI_CHAT_MODEL")
	a.VisionModel = os.Getenv("DOCUQUERY_AI_VISION_MODEL")
	a.EmbeddingModel = os.Getenv("DOCUQUERY_AI_EMBEDDING_MODEL")
	if v := os.Getenv("DOCUQUERY_AI_DIMENSION"); v != "" {
		a.Dimension, _ = strconv.Atoi(v)
	}
}

// StorageConfig names the filesystem trees the engine owns: uploaded
// originals, extracted structured output and the JSON ledgers.
type StorageConfig struct {
	UploadDir string `toml:"upload_dir"`
	OutputDir string `toml:"output_dir"`
	LedgerDir string `toml:"ledger_dir"`
}

func (s *StorageConfig) FromENV() {
	s.UploadDir = os.Getenv("DOCUQUERY_STORAGE_UPLOAD_DIR")
	s.OutputDir = os.Getenv("DOCUQUERY_STORAGE_OUTPUT_DIR")
	s.LedgerDir = os.Getenv("DOCUQUERY_STORAGE_LEDGER_DIR")
}

type IngestConfig struct {
	MaxFileSizeMB     int      `toml:"max_file_size_mb"`
	ChunkSize         int      `toml:"chunk_size"`
	AllowedExtensions []string `toml:"allowed_extensions"`
}

const (
	DefaultMaxFileSizeMB = 15
	DefaultChunkSize     = 4000
)

var defaultAllowedExtensions = []string{".pdf", ".docx", ".doc", ".txt", ".md", ".json", ".png", ".jpg", ".jpeg", ".webp"}

func (i *IngestConfig) ApplyDefaults() {
	if i.MaxFileSizeMB <= 0 {
		i.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	if i.ChunkSize <= 0 {
		i.ChunkSize = DefaultChunkSize
	}
	if len(i.AllowedExtensions) == 0 {
		i.AllowedExtensions = append(i.AllowedExtensions, defaultAllowedExtensions...)
	}
}

func (i IngestConfig) ExtensionAllowed(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range i.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
