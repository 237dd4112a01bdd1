package core

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/docuquery/docuquery/app/store"
	"github.com/docuquery/docuquery/app/store/sqlstore"
	"github.com/docuquery/docuquery/pkg/ai"
	"github.com/docuquery/docuquery/pkg/ai/openai"
	"github.com/docuquery/docuquery/pkg/extract"
	"github.com/docuquery/docuquery/pkg/ledger"
)

type Core struct {
	cfg CoreConfig

	stores     store.Provider
	oracle     ai.Oracle
	ledgers    *ledger.Manager
	extractors map[string]extract.Extractor

	httpEngine *gin.Engine
	metrics    *Metrics
}

// Dependencies carries the injected collaborators. Tests construct a
// Core over in-memory fakes through New; production wiring goes
// through MustSetupCore.
type Dependencies struct {
	Store      store.Provider
	Oracle     ai.Oracle
	Ledger     *ledger.Manager
	Extractors map[string]extract.Extractor
}

func New(cfg CoreConfig, deps Dependencies) *Core {
	cfg.Ingest.ApplyDefaults()
	return &Core{
		cfg:        cfg,
		stores:     deps.Store,
		oracle:     deps.Oracle,
		ledgers:    deps.Ledger,
		extractors: deps.Extractors,
		metrics:    newNopMetrics(),
	}
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	cfg.Ingest.ApplyDefaults()

	for _, dir := range []string{cfg.Storage.UploadDir, cfg.Storage.OutputDir, cfg.Storage.LedgerDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic(err)
		}
	}

	core := &Core{
		cfg:        cfg,
		metrics:    NewMetrics("docuquery", "core"),
		httpEngine: gin.New(),
		ledgers:    ledger.NewManager(cfg.Storage.LedgerDir),
		oracle: openai.New(openai.Config{
			Token:          cfg.AI.Token,
			Endpoint:       cfg.AI.Endpoint,
			ChatModel:      cfg.AI.ChatModel,
			VisionModel:    cfg.AI.VisionModel,
			EmbeddingModel: cfg.AI.EmbeddingModel,
			Dimension:      cfg.AI.Dimension,
			CallInterval:   time.Duration(cfg.AI.CallIntervalMS) * time.Millisecond,
		}),
		extractors: map[string]extract.Extractor{
			".json": extract.PassthroughJSON{OutputDir: cfg.Storage.OutputDir},
		},
	}

	setupSqlStore(core)

	return core
}

func setupSqlStore(core *Core) {
	stores := sqlstore.MustSetup(core.cfg.Postgres)
	if err := stores().Install(); err != nil {
		panic(err)
	}
	core.stores = stores()
}

// RegisterExtractor binds an extraction collaborator to a file
// extension, replacing any previous binding.
func (s *Core) RegisterExtractor(ext string, e extract.Extractor) {
	s.extractors[strings.ToLower(ext)] = e
}

func (s *Core) Extractor(ext string) (extract.Extractor, bool) {
	e, ok := s.extractors[strings.ToLower(ext)]
	return e, ok
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() store.Provider {
	return s.stores
}

func (s *Core) Oracle() ai.Oracle {
	return s.oracle
}

func (s *Core) Ledger() *ledger.Manager {
	return s.ledgers
}
