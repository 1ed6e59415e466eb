package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/elecmate/mmgen/internal/app/canceljob"
	"github.com/elecmate/mmgen/internal/app/createjob"
	"github.com/elecmate/mmgen/internal/app/exportpdf"
	"github.com/elecmate/mmgen/internal/app/getjob"
	"github.com/elecmate/mmgen/internal/app/listjobs"
	"github.com/elecmate/mmgen/internal/app/processjob"
	"github.com/elecmate/mmgen/internal/content"
	"github.com/elecmate/mmgen/internal/conventions"
	"github.com/elecmate/mmgen/internal/generator"
	"github.com/elecmate/mmgen/internal/generator/knowledge"
	"github.com/elecmate/mmgen/internal/generator/llm"
	"github.com/elecmate/mmgen/internal/httpapi"
	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/report"
	"github.com/elecmate/mmgen/internal/storage"
	"github.com/elecmate/mmgen/internal/storage/io"
	"github.com/elecmate/mmgen/internal/storage/memory"
	"github.com/elecmate/mmgen/internal/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath    string
	listenAddress string
	publicURL     string
	dbPath        string
	inMemory      bool
	downloadsDir  string
	workers       int
	provider      string
	llmModel      string
	chromePath    string
	templatesFile string
	knowledgeFile string
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Run the job service: HTTP API and generation workers.")
	c.Cmd.Flag("config", "Path to the server YAML config (defaults to <data-dir>/config.yaml when present).").StringVar(&c.configPath)
	c.Cmd.Flag("listen-address", "Address the HTTP server listens on.").StringVar(&c.listenAddress)
	c.Cmd.Flag("public-url", "Base URL used to build download URLs.").StringVar(&c.publicURL)
	c.Cmd.Flag("db-path", "Path to the SQLite database file (defaults to <data-dir>/mmgen.db).").StringVar(&c.dbPath)
	c.Cmd.Flag("in-memory", "Keep jobs in memory instead of SQLite.").BoolVar(&c.inMemory)
	c.Cmd.Flag("downloads-dir", "Directory where exported PDFs are stored.").StringVar(&c.downloadsDir)
	c.Cmd.Flag("workers", "Number of jobs generated concurrently.").IntVar(&c.workers)
	c.Cmd.Flag("generator", "Method generator (knowledge, openai).").EnumVar(&c.provider, string(model.GeneratorProviderKnowledge), string(model.GeneratorProviderOpenAI))
	c.Cmd.Flag("llm-model", "Model used by the openai generator.").StringVar(&c.llmModel)
	c.Cmd.Flag("chrome-path", "Chrome binary used to render PDFs.").StringVar(&c.chromePath)
	c.Cmd.Flag("templates-file", "YAML file with job templates (defaults to the embedded ones).").StringVar(&c.templatesFile)
	c.Cmd.Flag("knowledge-file", "YAML file with maintenance schedules (defaults to the embedded ones).").StringVar(&c.knowledgeFile)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}

	repo, err := c.newRepository(ctx, logger)
	if err != nil {
		return err
	}

	templates, err := io.NewCatalogYAMLRepository(catalogFS(c.templatesFile)).ListTemplates(ctx, catalogPath(c.templatesFile, content.TemplatesFile))
	if err != nil {
		return fmt.Errorf("could not load templates: %w", err)
	}

	gen, err := c.newGenerator(ctx, cfg.Generator, logger)
	if err != nil {
		return err
	}

	renderer, err := report.NewChromeRenderer(report.ChromeRendererConfig{
		ExecPath: c.chromePath,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create pdf renderer: %w", err)
	}

	// Services.
	createSvc, err := createjob.NewService(createjob.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}
	getSvc, err := getjob.NewService(getjob.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}
	listSvc, err := listjobs.NewService(listjobs.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}
	cancelSvc, err := canceljob.NewService(canceljob.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}
	exportSvc, err := exportpdf.NewService(exportpdf.ServiceConfig{
		Renderer:     renderer,
		DownloadsDir: cfg.DownloadsDir,
		PublicURL:    cfg.PublicURL,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}
	processSvc, err := processjob.NewService(processjob.ServiceConfig{
		Repository:        repo,
		Generator:         gen,
		Logger:            logger,
		Workers:           cfg.Workers,
		PollInterval:      cfg.PollInterval,
		GenerationTimeout: cfg.GenerationTimeout,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	handler, err := httpapi.NewHandler(httpapi.HandlerConfig{
		CreateJob:    createSvc,
		GetJob:       getSvc,
		ListJobs:     listSvc,
		CancelJob:    cancelSvc,
		ExportPDF:    exportSvc,
		Templates:    templates,
		DownloadsDir: cfg.DownloadsDir,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create http handler: %w", err)
	}

	var g run.Group

	// Context cancellation.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// HTTP server.
	{
		ln, err := net.Listen("tcp", cfg.ListenAddress)
		if err != nil {
			return fmt.Errorf("could not listen on %s: %w", cfg.ListenAddress, err)
		}
		server := &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Add(
			func() error {
				logger.Infof("HTTP server listening on %s (public URL %s)", ln.Addr(), cfg.PublicURL)
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					logger.Errorf("Could not shut down the HTTP server: %s", err)
				}
			},
		)
	}

	// Generation workers.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				return processSvc.Run(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// loadConfig merges the YAML config (when present) with the flags, flags win.
func (c ServeCommand) loadConfig(ctx context.Context) (model.ServerConfig, error) {
	var cfg model.ServerConfig

	path := c.configPath
	if path == "" {
		path = conventions.ConfigPath(c.rootCmd.DataDir)
	}
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		absPath, err := filepath.Abs(path)
		if err != nil {
			return cfg, fmt.Errorf("could not resolve config path: %w", err)
		}
		repo := io.NewConfigYAMLRepository(os.DirFS(filepath.Dir(absPath)))
		cfg, err = repo.GetServerConfig(ctx, filepath.Base(absPath))
		if err != nil {
			return cfg, fmt.Errorf("could not load config %s: %w", path, err)
		}
	case c.configPath != "":
		return cfg, fmt.Errorf("could not read config %s: %w", path, statErr)
	}

	if c.listenAddress != "" {
		cfg.ListenAddress = c.listenAddress
	}
	if c.publicURL != "" {
		cfg.PublicURL = c.publicURL
	}
	if c.downloadsDir != "" {
		cfg.DownloadsDir = c.downloadsDir
	}
	if c.workers > 0 {
		cfg.Workers = c.workers
	}
	if c.provider != "" {
		cfg.Generator.Provider = model.GeneratorProvider(c.provider)
	}
	if c.llmModel != "" {
		cfg.Generator.Model = c.llmModel
	}

	// Defaults.
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = conventions.DefaultListenAddress
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://" + cfg.ListenAddress
	}
	if cfg.DownloadsDir == "" {
		cfg.DownloadsDir = conventions.DownloadsPath(c.rootCmd.DataDir)
	}
	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = model.GeneratorProviderKnowledge
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid server configuration: %w", err)
	}

	return cfg, nil
}

func (c ServeCommand) newRepository(ctx context.Context, logger log.Logger) (storage.JobRepository, error) {
	if c.inMemory {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		return repo, nil
	}

	dbPath := c.dbPath
	if dbPath == "" {
		dbPath = conventions.DBPath(c.rootCmd.DataDir)
	}
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: dbPath,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	return repo, nil
}

func (c ServeCommand) newGenerator(ctx context.Context, cfg model.GeneratorConfig, logger log.Logger) (generator.Generator, error) {
	switch cfg.Provider {
	case model.GeneratorProviderOpenAI:
		m, err := llm.NewOpenAIModel(llm.OpenAIConfig{
			APIKey:  os.Getenv(cfg.APIKeyEnv),
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create openai model (api key from $%s): %w", cfg.APIKeyEnv, err)
		}
		gen, err := llm.NewGenerator(llm.GeneratorConfig{Model: m, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("could not create llm generator: %w", err)
		}
		return gen, nil

	default:
		schedules, err := io.NewCatalogYAMLRepository(catalogFS(c.knowledgeFile)).ListSchedules(ctx, catalogPath(c.knowledgeFile, content.KnowledgeFile))
		if err != nil {
			return nil, fmt.Errorf("could not load knowledge base: %w", err)
		}
		gen, err := knowledge.NewGenerator(knowledge.GeneratorConfig{Schedules: schedules, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("could not create knowledge generator: %w", err)
		}
		return gen, nil
	}
}

// catalogFS returns the filesystem a catalogue is read from: the embedded
// content or the directory of a user file.
func catalogFS(userFile string) fs.FS {
	if userFile == "" {
		return content.FS
	}
	abs, err := filepath.Abs(userFile)
	if err != nil {
		abs = userFile
	}
	return os.DirFS(filepath.Dir(abs))
}

func catalogPath(userFile, embedded string) string {
	if userFile == "" {
		return embedded
	}
	return filepath.Base(userFile)
}
