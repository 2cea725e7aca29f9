// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"fmt"
	"os"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/claims"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/config"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/coordinator"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/hub"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/prompts"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/resources"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/storage"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// dataDir overrides the configured data directory when non-empty.
//
// The returned cleanup function flushes the logger and closes the
// store's database connection; it must be called on shutdown
// (typically via defer). It is always non-nil.
func New(dataDir string) (*server.MCPServer, func(), error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, noop, err
	}

	// Everything observable goes to stderr: stdout belongs to the MCP
	// stdio transport and must stay clean.
	log, err := newLogger()
	if err != nil {
		return nil, noop, fmt.Errorf("creating logger: %w", err)
	}

	store, err := storage.New(storage.Config{DataDir: cfg.DataDir})
	if err != nil {
		_ = log.Sync()
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn("store close", zap.Error(err))
		}
		_ = log.Sync()
	}

	bus := hub.New(log.Named("hub"))
	detector := claims.NewDetector(cfg.Conflict, bus, log.Named("claims"))
	coord := coordinator.New(store, bus, detector, cfg.Wait, log.Named("coordinator"))

	s := server.NewMCPServer(
		"thoughtbox",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register session tools ---

	sessionStart := tools.NewSessionStartTool(coord)
	s.AddTool(sessionStart.Definition(), sessionStart.Handle)

	sessionComplete := tools.NewSessionCompleteTool(coord)
	s.AddTool(sessionComplete.Definition(), sessionComplete.Handle)

	// --- Register reasoning tools ---

	think := tools.NewThinkTool(coord)
	s.AddTool(think.Definition(), think.Handle)

	verifyChain := tools.NewVerifyChainTool(coord)
	s.AddTool(verifyChain.Definition(), verifyChain.Handle)

	diffBranches := tools.NewDiffBranchesTool(coord)
	s.AddTool(diffBranches.Definition(), diffBranches.Handle)

	// --- Register task tools ---

	taskCreate := tools.NewTaskCreateTool(coord)
	s.AddTool(taskCreate.Definition(), taskCreate.Handle)

	taskTransition := tools.NewTaskTransitionTool(coord)
	s.AddTool(taskTransition.Definition(), taskTransition.Handle)

	taskCheckCriterion := tools.NewTaskCheckCriterionTool(coord)
	s.AddTool(taskCheckCriterion.Definition(), taskCheckCriterion.Handle)

	taskNote := tools.NewTaskNoteTool(coord)
	s.AddTool(taskNote.Definition(), taskNote.Handle)

	// --- Register coordination tools ---

	waitForEvent := tools.NewWaitForEventTool(coord)
	s.AddTool(waitForEvent.Definition(), waitForEvent.Handle)

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.SessionsResource(), resourceHandler.HandleSessions)
	s.AddResource(resourceHandler.TasksResource(), resourceHandler.HandleTasks)

	log.Info("server wired",
		zap.String("version", Version),
		zap.String("data_dir", cfg.DataDir),
	)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default until the store
// has been opened.
func noop() {}

// newLogger builds the production logger writing to stderr.
func newLogger() (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zap.InfoLevel,
	)
	return zap.New(core), nil
}

// serverInstructions returns the system instructions that tell the AI
// how to use the reasoning coordination server effectively.
func serverInstructions() string {
	return `You have access to thoughtbox, a shared reasoning coordination MCP server.

## WHEN TO USE thoughtbox

Use it whenever you are reasoning through a problem alongside other agents,
or when your reasoning should leave an auditable trail:
- Multi-agent analysis where different agents investigate in parallel
- Decisions that need a recorded chain of reasoning
- Exploring alternatives that should be compared later

## CORE WORKFLOW

1. session_start — open a session for the topic. Share the session id with
   the other agents working on it.
2. think — contribute thoughts, one assertion per call. Each thought is
   stamped with your agent identity and chained onto the branch with a
   tamper-evident hash. Assertions like "X is Y" / "X is not Y" are
   extracted as claims and checked against what other agents have said.
3. React to conflicts — a think result listing conflicts means another
   agent asserted something incompatible. Read the conflicting claim, and
   either revise your position with a new thought or raise it with the user.
4. session_complete — close the session with a summary of the conclusion.

## BRANCHING

Pass branch_id to think to explore an alternative line without disturbing
the main one. Compare lines with diff_branches (timeline or split view).
verify_chain audits a branch's hash chain and reports the first break if
the trail was tampered with.

## TASKS

Coordination work items live in tasks: task_create (with completion
criteria, one per line), task_transition (open → in_progress → completed,
blocked as a side state, archived as terminal), task_check_criterion, and
task_note. Completion is refused while criteria are unchecked — the error
names the unchecked indices.

## WAITING INSTEAD OF POLLING

wait_for_event long-polls the server for activity: thoughts added,
conflicts detected, task changes, session completion. Filter by session,
task, and event types. A timed_out result just means "no news yet" — call
it again. Never busy-poll the resources.

## RESOURCES

reasoning://sessions lists recent sessions; reasoning://tasks lists tasks
with their criteria and notes.`
}
