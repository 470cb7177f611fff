// Package agent wires the orchestration core together: one Session owns the
// persistent state, the safety gate, the retrieval store, and the plan
// pipeline, and routes each inbound request through the directive router
// before falling back to model planning.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/joescharf/golem/internal/llm"
	"github.com/joescharf/golem/internal/memory"
	"github.com/joescharf/golem/internal/models"
	"github.com/joescharf/golem/internal/plan"
	"github.com/joescharf/golem/internal/safety"
	"github.com/joescharf/golem/internal/store"
	"github.com/joescharf/golem/internal/tools"
)

// Config carries the session's tunables. Zero values fall back to defaults.
type Config struct {
	DefaultModel        string
	DefaultPlannerModel string
	AvailableModels     []string
	AllowedPrefixes     []string
	MaxHistory          int
	ContextWindow       int
	RetrievalK          int
	MemoriesK           int
	Temperature         float64
	PlannerTemperature  float64
	RagEnabled          bool
	DefaultServeFolder  string
	DefaultServePort    int
	WorkDir             string
}

func (c *Config) applyDefaults() {
	if c.MaxHistory <= 0 {
		c.MaxHistory = 20
	}
	if c.ContextWindow <= 0 {
		c.ContextWindow = 6
	}
	if c.RetrievalK <= 0 {
		c.RetrievalK = 3
	}
	if c.MemoriesK <= 0 {
		c.MemoriesK = 6
	}
	if c.DefaultServePort <= 0 {
		c.DefaultServePort = 8000
	}
	if c.DefaultServeFolder == "" {
		c.DefaultServeFolder = "."
	}
}

// Session is the composition root for one conversation. All mutable state is
// guarded by mu; concurrent Process calls serialize against each other but
// independent sessions do not.
type Session struct {
	mu  sync.Mutex
	cfg Config
	log *zap.SugaredLogger

	db     store.Store
	memory *memory.Store
	gate   *safety.Gate
	client llm.Client
	files  tools.Files
	runner *tools.Runner
	exec   *plan.Executor
	server *tools.StaticServer
	search plan.Searcher

	modelName        string
	plannerModelName string
	ragEnabled       bool
	temperature      float64
	plannerTemp      float64
}

// NewSession builds a session from its collaborators and restores persisted
// model selection and preferences.
func NewSession(cfg Config, db store.Store, client llm.Client, embed llm.Embedder, searcher plan.Searcher, log *zap.SugaredLogger) *Session {
	cfg.applyDefaults()
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	runner := tools.NewRunner(cfg.WorkDir, log)
	s := &Session{
		cfg:    cfg,
		log:    log,
		db:     db,
		memory: memory.NewStore(db, embed, log),
		gate:   safety.NewGate(cfg.AllowedPrefixes),
		client: client,
		runner: runner,
		server: &tools.StaticServer{},
		search: searcher,

		modelName:        cfg.DefaultModel,
		plannerModelName: cfg.DefaultPlannerModel,
		ragEnabled:       cfg.RagEnabled,
		temperature:      cfg.Temperature,
		plannerTemp:      cfg.PlannerTemperature,
	}
	s.exec = plan.NewExecutor(plan.Toolbox{
		Files:  s.files,
		Runner: runner,
		Search: searcher,
	}, log)

	s.restore()
	return s
}

// restore loads persisted model selection and preferences, tolerating any
// malformed state.
func (s *Session) restore() {
	ctx := context.Background()
	if v, ok := s.getPrefString(ctx, "model_name"); ok && v != "" {
		s.modelName = v
	}
	if v, ok := s.getPrefString(ctx, "planner_model_name"); ok && v != "" {
		s.plannerModelName = v
	}
	if v, ok := s.getPrefBool(ctx, "rag_enabled"); ok {
		s.ragEnabled = v
	}
	if v, ok := s.getPrefFloat(ctx, "temperature"); ok {
		s.temperature = v
	}
}

// Process handles one inbound request end to end. Any panic escaping the
// pipeline is converted into a user-visible error string; the session stays
// usable for the next request.
func (s *Session) Process(ctx context.Context, input string) (out string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("request panicked", "panic", r)
			out = fmt.Sprintf("Error processing request: %v", r)
		}
	}()

	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	s.appendHistory(ctx, models.RoleUser, input)
	s.setPrefString(ctx, "last_request", input)

	if result, handled := s.route(ctx, input); handled {
		s.appendHistory(ctx, models.RoleAssistant, result)
		return result
	}

	return s.planAndReply(ctx, input)
}

// planAndReply is the model path: ask the planner for a plan, execute it, or
// fall back to a conversational answer from the primary model.
func (s *Session) planAndReply(ctx context.Context, input string) string {
	state := s.snapshot(ctx)
	if s.ragEnabled {
		state.RetrievedMemories = s.memory.Query(ctx, input, s.cfg.RetrievalK)
	}

	history, err := s.db.ListMessages(ctx, s.cfg.ContextWindow)
	if err != nil {
		s.log.Warnw("list history failed", "err", err)
	}

	raw, err := s.client.Invoke(ctx, llm.InvokeRequest{
		Model:       s.plannerModelName,
		Temperature: s.plannerTemp,
		Messages:    buildPlannerMessages(input, history, state),
	})
	if err != nil {
		s.log.Warnw("planner invocation failed", "err", err)
		raw = ""
	}

	if p, ok := plan.Parse(llm.StripFencing(raw)); ok {
		result := s.exec.Execute(ctx, p)
		s.setPrefString(ctx, "last_action", "executed_plan")
		s.appendHistory(ctx, models.RoleAssistant, result)
		return result
	}

	// Conversational path: re-invoke the primary model without plan framing.
	answer, err := s.client.Invoke(ctx, llm.InvokeRequest{
		Model:       s.modelName,
		Temperature: s.temperature,
		Messages:    buildReplyMessages(input, state),
	})
	if err != nil {
		result := fmt.Sprintf("Model invocation failed: %v", err)
		s.appendHistory(ctx, models.RoleAssistant, result)
		return result
	}

	s.appendHistory(ctx, models.RoleAssistant, answer)

	if s.ragEnabled {
		exchange := fmt.Sprintf("USER: %s\nASSISTANT: %s", input, answer)
		if err := s.memory.Add(ctx, exchange, models.MemoryKindChat); err != nil {
			s.log.Debugw("exchange not persisted to memory", "err", err)
		}
	}
	return answer
}

// snapshot captures the state handed to the model as context.
func (s *Session) snapshot(ctx context.Context) stateSnapshot {
	snap := stateSnapshot{
		CurrentModel: s.modelName,
		PlannerModel: s.plannerModelName,
		RagEnabled:   s.ragEnabled,
	}
	if v, ok := s.getPrefString(ctx, "last_served_folder"); ok {
		snap.LastServedFolder = v
	}
	if v, ok := s.getPrefInt(ctx, "last_served_port"); ok {
		snap.LastServedPort = v
	}
	return snap
}

// Close releases session resources (the background server, the store).
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.server.Stop()
	return s.db.Close()
}

// --- history ---

// appendHistory persists one message and enforces FIFO truncation.
func (s *Session) appendHistory(ctx context.Context, role, content string) {
	if err := s.db.AppendMessage(ctx, &models.ChatMessage{Role: role, Content: content}); err != nil {
		s.log.Warnw("append history failed", "err", err)
		return
	}
	if err := s.db.TrimMessages(ctx, s.cfg.MaxHistory); err != nil {
		s.log.Warnw("trim history failed", "err", err)
	}
}

// --- preferences (JSON-encoded values) ---

func (s *Session) setPrefString(ctx context.Context, key, value string) {
	s.setPref(ctx, key, value)
}

func (s *Session) setPref(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.db.SetPreference(ctx, key, string(data)); err != nil {
		s.log.Warnw("set preference failed", "key", key, "err", err)
	}
}

func (s *Session) getPrefString(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.db.GetPreference(ctx, key)
	if err != nil || !ok {
		return "", false
	}
	var v string
	if json.Unmarshal([]byte(raw), &v) != nil {
		return "", false
	}
	return v, true
}

func (s *Session) getPrefInt(ctx context.Context, key string) (int, bool) {
	raw, ok, err := s.db.GetPreference(ctx, key)
	if err != nil || !ok {
		return 0, false
	}
	var v int
	if json.Unmarshal([]byte(raw), &v) != nil {
		return 0, false
	}
	return v, true
}

func (s *Session) getPrefBool(ctx context.Context, key string) (bool, bool) {
	raw, ok, err := s.db.GetPreference(ctx, key)
	if err != nil || !ok {
		return false, false
	}
	var v bool
	if json.Unmarshal([]byte(raw), &v) != nil {
		return false, false
	}
	return v, true
}

func (s *Session) getPrefFloat(ctx context.Context, key string) (float64, bool) {
	raw, ok, err := s.db.GetPreference(ctx, key)
	if err != nil || !ok {
		return 0, false
	}
	var v float64
	if json.Unmarshal([]byte(raw), &v) != nil {
		return 0, false
	}
	return v, true
}
