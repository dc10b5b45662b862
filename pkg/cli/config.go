package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/kevin-biot/mcp-memory/pkg/adapter"
	"github.com/kevin-biot/mcp-memory/pkg/repository"
	"github.com/kevin-biot/mcp-memory/pkg/usecase/memory"
)

// config holds configuration values
type config struct {
	configFile string
	logLevel   string

	// Store
	memoryDir string
	domain    string
	namespace string
	indexPath string

	// Backend behavior
	fallbackOnly  bool
	retryInterval time.Duration
	callTimeout   time.Duration

	// Embedding
	geminiProject  string
	geminiLocation string
}

// fileConfig mirrors the optional YAML config file. File values fill
// fields the flags left empty; flags win.
type fileConfig struct {
	LogLevel       string        `yaml:"logLevel"`
	MemoryDir      string        `yaml:"memoryDir"`
	Domain         string        `yaml:"domain"`
	Namespace      string        `yaml:"namespace"`
	IndexPath      string        `yaml:"indexPath"`
	FallbackOnly   bool          `yaml:"fallbackOnly"`
	RetryInterval  time.Duration `yaml:"retryInterval"`
	GeminiProject  string        `yaml:"geminiProject"`
	GeminiLocation string        `yaml:"geminiLocation"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("MCP_MEMORY_CONFIG"),
			Destination: &cfg.configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("MCP_MEMORY_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "memory-dir",
			Aliases:     []string{"m"},
			Usage:       "Directory for the durable memory log",
			Sources:     cli.EnvVars("MCP_MEMORY_DIR"),
			Destination: &cfg.memoryDir,
		},
		&cli.StringFlag{
			Name:        "domain",
			Aliases:     []string{"d"},
			Usage:       "Owning domain stamped on every stored record",
			Value:       "devops",
			Sources:     cli.EnvVars("MCP_MEMORY_DOMAIN"),
			Destination: &cfg.domain,
		},
		&cli.StringFlag{
			Name:        "namespace",
			Aliases:     []string{"n"},
			Usage:       "Namespace partition of the similarity collections",
			Value:       "default",
			Sources:     cli.EnvVars("MCP_MEMORY_NAMESPACE"),
			Destination: &cfg.namespace,
		},
		&cli.StringFlag{
			Name:        "index-path",
			Usage:       "Directory for the persistent vector index (empty: alongside memory dir)",
			Sources:     cli.EnvVars("MCP_MEMORY_INDEX_PATH"),
			Destination: &cfg.indexPath,
		},
		&cli.BoolFlag{
			Name:        "fallback-only",
			Usage:       "Skip the similarity backend entirely",
			Sources:     cli.EnvVars("MCP_MEMORY_FALLBACK_ONLY"),
			Destination: &cfg.fallbackOnly,
		},
		&cli.DurationFlag{
			Name:        "retry-interval",
			Usage:       "Re-probe a failed backend after this interval (0: permanent fallback)",
			Sources:     cli.EnvVars("MCP_MEMORY_RETRY_INTERVAL"),
			Destination: &cfg.retryInterval,
		},
		&cli.DurationFlag{
			Name:        "call-timeout",
			Usage:       "Timeout for each outbound backend call",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("MCP_MEMORY_CALL_TIMEOUT"),
			Destination: &cfg.callTimeout,
		},
	}
}

// embeddingFlags returns flags for the embedding backend
func embeddingFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini embeddings",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini embeddings",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

// load merges the optional YAML config file into unset fields.
func (cfg *config) load() error {
	if cfg.configFile == "" {
		return nil
	}

	raw, err := os.ReadFile(cfg.configFile)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configFile))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configFile))
	}

	if cfg.memoryDir == "" {
		cfg.memoryDir = fc.MemoryDir
	}
	if fc.Domain != "" && cfg.domain == "devops" {
		cfg.domain = fc.Domain
	}
	if fc.Namespace != "" && cfg.namespace == "default" {
		cfg.namespace = fc.Namespace
	}
	if cfg.indexPath == "" {
		cfg.indexPath = fc.IndexPath
	}
	if fc.FallbackOnly {
		cfg.fallbackOnly = true
	}
	if cfg.retryInterval == 0 {
		cfg.retryInterval = fc.RetryInterval
	}
	if cfg.geminiProject == "" {
		cfg.geminiProject = fc.GeminiProject
	}
	if cfg.geminiLocation == "" {
		cfg.geminiLocation = fc.GeminiLocation
	}
	if fc.LogLevel != "" && cfg.logLevel == "info" {
		cfg.logLevel = fc.LogLevel
	}

	return nil
}

// newMemory builds and initializes the memory manager from configuration.
func (cfg *config) newMemory(ctx context.Context) (*memory.UseCase, error) {
	if err := cfg.load(); err != nil {
		return nil, err
	}
	if cfg.memoryDir == "" {
		return nil, goerr.New("memory-dir is required")
	}

	repo, err := repository.NewFilesystem(cfg.memoryDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create durable log")
	}

	opts := []memory.Option{
		memory.WithRetryInterval(cfg.retryInterval),
	}

	if !cfg.fallbackOnly {
		embedder, err := cfg.newEmbedder(ctx)
		if err != nil {
			return nil, err
		}

		indexPath := cfg.indexPath
		if indexPath == "" {
			indexPath = cfg.memoryDir + "/.index"
		}

		index, err := adapter.NewChromem(indexPath, cfg.namespace, embedder,
			adapter.WithCallTimeout(cfg.callTimeout))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create similarity index")
		}
		opts = append(opts, memory.WithIndex(index))
	}

	uc := memory.New(repo, cfg.domain, opts...)
	if err := uc.Initialize(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize memory manager")
	}

	return uc, nil
}

// newEmbedder creates the embedding adapter
func (cfg *config) newEmbedder(ctx context.Context) (adapter.Embedder, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required (or use --fallback-only)")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	embedder, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create embedder")
	}
	return embedder, nil
}
