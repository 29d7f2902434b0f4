// Package wire provides dependency injection for the mender application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/example/mender/internal/adapters/collab"
	"github.com/example/mender/internal/adapters/gitvc"
	"github.com/example/mender/internal/adapters/sink"
	"github.com/example/mender/internal/adapters/sqlite"
	"github.com/example/mender/internal/app"
	"github.com/example/mender/internal/config"
	"github.com/example/mender/internal/db"
	"github.com/example/mender/internal/logging"
	"github.com/example/mender/internal/ports/primary"
)

var (
	cfg             *config.Config
	logger          *zap.Logger
	auditService    primary.AuditService
	analysisService primary.AnalysisService
	healingService  primary.HealingService
	once            sync.Once
)

// AuditService returns the singleton AuditService instance.
func AuditService() primary.AuditService {
	once.Do(initServices)
	return auditService
}

// AnalysisService returns the singleton AnalysisService instance.
func AnalysisService() primary.AnalysisService {
	once.Do(initServices)
	return analysisService
}

// HealingService returns the singleton HealingService instance.
func HealingService() primary.HealingService {
	once.Do(initServices)
	return healingService
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the shared structured logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	return logger
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to resolve working directory: %v", err)
	}
	cfg = config.LoadOrDefault(cwd)

	logger, err = logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	// Unreachable storage is a fatal configuration error: the loop
	// cannot run without its escalation memory.
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Secondary adapters with injected dependencies
	attemptRepo := sqlite.NewAttemptRepository(database, cfg.MaxRetries)

	repoPath := cfg.RepoPath
	if repoPath == "" {
		repoPath = cwd
	}
	vcs := gitvc.New(repoPath)

	decisionPath := cfg.DecisionPath
	if decisionPath == "" {
		decisionPath = filepath.Join(cwd, ".mender", "decision.json")
	}
	decisionSink := sink.NewFileSink(decisionPath)

	fixer := collab.NewCommandFixGenerator(cfg.FixCommand)
	tests := collab.NewCommandTestRunner(cfg.TestCommand)

	// Services (primary ports implementation)
	auditService = app.NewAuditService(attemptRepo, logger)
	analysisService = app.NewAnalysisService(vcs, decisionSink, cfg.MinContextLength, logger)
	healingService = app.NewHealingService(auditService, fixer, tests, decisionSink, cfg.AttemptLimit, cfg.Timeout(), logger)
}
