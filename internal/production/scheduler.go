package production

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/colony/internal/config"
)

// Handler decides what, if anything, to produce for one placed directive.
type Handler interface {
	Handle(ctx *Context, d Directive) (BuildDirective, bool)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx *Context, d Directive) (BuildDirective, bool)

func (f HandlerFunc) Handle(ctx *Context, d Directive) (BuildDirective, bool) { return f(ctx, d) }

// HaulingReporter reports the hauling need of a remote mining directive,
// in carry parts.
type HaulingReporter interface {
	HaulingNeed(d Directive) float64
}

type stage struct {
	name Stage
	run  func(*Context) (BuildDirective, bool)
}

// Scheduler runs the production stages.
type Scheduler struct {
	handlers map[DirectiveCategory]Handler
	hauling  HaulingReporter
	assist   config.AssistConfig
	logger   *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithHandler registers the handler for a directive category.
func WithHandler(cat DirectiveCategory, h Handler) Option {
	return func(s *Scheduler) { s.handlers[cat] = h }
}

// WithHaulingReporter sets the remote hauling reporter.
func WithHaulingReporter(r HaulingReporter) Option {
	return func(s *Scheduler) { s.hauling = r }
}

// WithAssist enables cross-territory assist.
func WithAssist(a config.AssistConfig) Option {
	return func(s *Scheduler) { s.assist = a }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler creates a scheduler. Without handlers the assigned stage
// never proposes anything.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		handlers: make(map[DirectiveCategory]Handler),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Schedule returns at most one build directive for the context's territory.
// Stages run in order and the first to propose a directive wins.
func (s *Scheduler) Schedule(ctx *Context) (BuildDirective, bool) {
	t := ctx.Territory
	if t.Spawn() == nil {
		s.logger.Debug("production skipped", "territory", t.Name, "reason", ErrNoProductionFacility)
		return BuildDirective{}, false
	}

	stages := append(s.localStages(), stage{StageAssist, s.assistPeers})
	bd, ok := s.run(ctx, stages)
	if !ok {
		return BuildDirective{}, false
	}
	bd.ID = uuid.NewString()
	bd.Facility = t.Name
	if bd.Home == "" {
		bd.Home = t.Name
	}
	s.logger.Info("build directive",
		"territory", t.Name,
		"stage", bd.Stage,
		"role", bd.Role,
		"reps", bd.Reps,
		"home", bd.Home,
		"target", bd.Target,
	)
	return bd, true
}

func (s *Scheduler) localStages() []stage {
	return []stage{
		{StageDomestic, s.domestic},
		{StageIncubation, s.incubation},
		{StageAssigned, s.assigned},
		{StageInferred, s.inferred},
	}
}

func (s *Scheduler) run(ctx *Context, stages []stage) (BuildDirective, bool) {
	for _, st := range stages {
		if bd, ok := st.run(ctx); ok {
			if bd.Stage == "" {
				bd.Stage = st.name
			}
			return bd, true
		}
	}
	return BuildDirective{}, false
}
