package cli

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite" // analysis database driver

	"github.com/kestrelhq/kestrel/internal/agent"
	"github.com/kestrelhq/kestrel/internal/config"
	"github.com/kestrelhq/kestrel/internal/llm"
	"github.com/kestrelhq/kestrel/internal/store"
	"github.com/kestrelhq/kestrel/internal/tools"
)

// buildRunner assembles the turn executor from config: model client,
// session store, and tool catalog. The returned cleanup closes whatever
// was opened.
func buildRunner(cfg config.Config) (*agent.Runner, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	registry := llm.NewRegistryFromConfig(cfg.Model, log)
	client, err := registry.Resolve(cfg.Model.Provider)
	if err != nil {
		return nil, nil, fmt.Errorf("no model provider available: %w (set model.apiKey or ANTHROPIC_API_KEY)", err)
	}

	var sessions agent.Store
	if cfg.Session.Store == "sqlite" {
		dbPath := cfg.Session.Path
		if dbPath == "" {
			dbPath = filepath.Join(paths.Data, "kestrel.db")
		}
		db, err := store.Open(dbPath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening session database: %w", err)
		}
		closers = append(closers, func() { db.Close() })
		sessions = store.NewThreadStore(db)
		log.Info().Str("path", dbPath).Msg("using SQLite session store")
	} else {
		sessions = agent.NewMemoryStore()
		log.Info().Msg("using in-memory session store")
	}

	toolReg := agent.NewToolRegistry()
	if cfg.Tools.DatabasePath != "" {
		analysisDB, err := sql.Open("sqlite", cfg.Tools.DatabasePath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("opening analysis database: %w", err)
		}
		closers = append(closers, func() { analysisDB.Close() })
		toolReg.Register(tools.NewSQLQueryTool(analysisDB, log))
		toolReg.Register(tools.NewVisualizationTool(cfg.Artifacts.Dir, log))
		log.Info().
			Str("database", cfg.Tools.DatabasePath).
			Str("artifacts", cfg.Artifacts.Dir).
			Msg("data-analysis tools enabled")
	}

	runner := agent.NewRunner(
		agent.RunnerConfig{
			AgentName:      cfg.Agent.Name,
			Model:          cfg.Model.Name,
			MaxTokens:      cfg.Model.MaxTokens,
			Temperature:    cfg.Model.Temperature,
			MaxIterations:  cfg.Agent.MaxTurnIterations,
			ExtraPrompt:    cfg.Agent.SystemPrompt,
			WorkDir:        cfg.Agent.WorkDir,
			ArtifactMarker: filepath.ToSlash(cfg.Artifacts.Dir) + "/",
		},
		client,
		sessions,
		toolReg,
		log,
	)
	return runner, cleanup, nil
}

// loadConfig loads the config file without validating it, so commands
// can apply flag overrides first.
func loadConfig() (config.Config, error) {
	return config.Load(paths.Config)
}

// validateConfig fails on validation issues, logging each one.
func validateConfig(cfg config.Config) error {
	issues := config.Validate(&cfg)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return nil
}

// loadValidConfig loads the config file and fails on validation issues.
func loadValidConfig() (config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, err
	}
	if err := validateConfig(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
