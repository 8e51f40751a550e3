// Package engine wires the synthesis pipeline together: specificity
// analysis, brand-DNA extraction, Thompson-sampling attribute selection,
// prompt rendering, and feedback-driven posterior updates. Every
// dependency is passed in explicitly; nothing global, nothing ambient.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/modehaus/stylesynth/internal/bandit"
	"github.com/modehaus/stylesynth/internal/branddna"
	"github.com/modehaus/stylesynth/internal/feedback"
	"github.com/modehaus/stylesynth/internal/renderer"
	"github.com/modehaus/stylesynth/internal/specificity"
	"github.com/modehaus/stylesynth/internal/telemetry"
	"github.com/modehaus/stylesynth/internal/vocab"
	"github.com/modehaus/stylesynth/models"
	"github.com/modehaus/stylesynth/store"
	"github.com/modehaus/stylesynth/types"
)

// variationSeedSpace bounds the per-batch variation seed.
const variationSeedSpace = 1 << 16

// Deps are the engine's injectable collaborators. Zero values get sane
// defaults: in-memory store, no-op telemetry, clock-seeded sampler,
// embedded vocabulary.
type Deps struct {
	Repository store.DistributionRepository
	Telemetry  telemetry.Client
	Sampler    bandit.Sampler
	Vocabulary *vocab.Vocabulary
	Fs         afero.Fs
}

// Engine is the adaptive prompt synthesis engine.
type Engine struct {
	cfg       types.EngineConfig
	vocab     *vocab.Vocabulary
	store     *bandit.Store
	selector  *bandit.Selector
	analyzer  *specificity.Analyzer
	updater   *feedback.Updater
	renderer  *renderer.Renderer
	telemetry telemetry.Client
	sampler   bandit.Sampler
}

// Metadata describes how one prompt was synthesized, handed downstream
// alongside the rendered text.
type Metadata struct {
	SpecificityScore     float64                              `json:"specificityScore"`
	CreativityTemp       float64                              `json:"creativityTemp"`
	BrandDNAStrength     float64                              `json:"brandDNAStrength"`
	Mode                 models.CommandMode                   `json:"mode"`
	OverriddenCategories []models.Category                    `json:"overriddenCategories,omitempty"`
	SourceAttributes     map[models.Category]models.Selection `json:"sourceAttributes"`
	ProfileFallback      bool                                 `json:"profileFallback,omitempty"`
}

// PromptOutput is one rendered prompt with its spec and metadata.
type PromptOutput struct {
	Spec     *models.PromptSpec    `json:"spec"`
	Prompt   models.RenderedPrompt `json:"prompt"`
	Metadata Metadata              `json:"metadata"`
}

// Batch is the result of one generation command.
type Batch struct {
	GenerationID string          `json:"generationId"`
	UserID       string          `json:"userId"`
	Command      *models.Command `json:"command"`
	Prompts      []PromptOutput  `json:"prompts"`
}

// New builds an engine from configuration and dependencies.
func New(cfg types.EngineConfig, deps Deps) (*Engine, error) {
	v := deps.Vocabulary
	if v == nil {
		fsys := deps.Fs
		if fsys == nil {
			fsys = afero.NewOsFs()
		}
		loaded, err := vocab.Load(fsys, cfg.VocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		v = loaded
	}

	sampler := deps.Sampler
	if sampler == nil {
		sampler = bandit.NewSampler(cfg.Seed)
	}
	tel := deps.Telemetry
	if tel == nil {
		tel = telemetry.Noop{}
	}

	st := bandit.NewStore(deps.Repository)
	return &Engine{
		cfg:   cfg,
		vocab: v,
		store: st,
		selector: bandit.NewSelector(sampler, bandit.Config{
			Epsilon:       cfg.Epsilon,
			MinCreativity: cfg.MinCreativity,
			MaxCreativity: cfg.MaxCreativity,
		}),
		analyzer: specificity.NewAnalyzer(v, specificity.Config{
			MinCreativity: cfg.MinCreativity,
			MaxCreativity: cfg.MaxCreativity,
		}),
		updater:   feedback.NewUpdater(st, feedback.Config{DecayRate: cfg.DecayRate}),
		renderer:  renderer.New(v),
		telemetry: tel,
		sampler:   sampler,
	}, nil
}

// ImportProfile validates and seeds a user's posteriors from an ingested
// style profile.
func (e *Engine) ImportProfile(ctx context.Context, profile models.StyleProfile) error {
	if err := models.ValidateStruct(profile); err != nil {
		return fmt.Errorf("invalid style profile: %w", err)
	}
	if err := e.store.SeedFromProfile(ctx, profile); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	return nil
}

// Hydrate loads a user's persisted posteriors, if a repository is
// configured.
func (e *Engine) Hydrate(ctx context.Context, userID string) error {
	return e.store.Hydrate(ctx, userID)
}

// Generate runs the full pipeline for one command and returns a batch of
// rendered prompts. It never fails for a missing or empty style profile;
// first-time users fall back to the uninformative default vocabulary.
func (e *Engine) Generate(ctx context.Context, userID, text string, entities models.Entities) (*Batch, error) {
	if userID == "" {
		return nil, types.NewEngineError(types.ErrCodeInvalidInput, "userID is required", nil)
	}

	cmd := models.NewCommand(userID, text, entities)

	// Analyze. Parse failures never abort the machine: the analyzer
	// substitutes the neutral default and the command continues.
	res := e.analyzer.Analyze(text, cmd.Entities)
	cmd.SpecificityScore = res.Score
	cmd.CreativityTemp = res.CreativityTemp
	cmd.Mode = res.Mode
	cmd.Advance(models.StateAnalyzed)
	slog.Debug("command analyzed",
		"user", userID,
		"specificity", res.Score,
		"creativityTemp", res.CreativityTemp,
		"mode", res.Mode,
		"reasoning", res.Reasoning)

	// Resolve brand DNA from the profile, or fall back for new users.
	dna, profileFallback := e.resolveDNA(userID)
	cmd.Advance(models.StateResolved)

	count := cmd.Entities.Count
	if e.cfg.MaxBatchSize > 0 && count > e.cfg.MaxBatchSize {
		count = e.cfg.MaxBatchSize
	}

	batch := &Batch{
		GenerationID: uuid.NewString(),
		UserID:       userID,
		Command:      cmd,
		Prompts:      make([]PromptOutput, 0, count),
	}

	// Sampling reads one consistent snapshot; concurrent feedback
	// writers may land after it without affecting this batch.
	snap := e.store.Snapshot(userID)
	variationSeed := e.sampler.Intn(variationSeedSpace)
	secondaryOptions := e.secondaryOptions()
	tuples := bandit.NewTupleSet()
	opts := bandit.Options{RespectUserIntent: e.cfg.RespectUserIntent}
	strength := bandit.BrandDNAStrength(cmd.SpecificityScore)

	for i := 0; i < count; i++ {
		spec, choices := e.sampleSpec(batch.GenerationID, i, variationSeed, snap, dna, cmd, opts)
		// Ordering barrier: index i is finalized only against all
		// previously finalized indices.
		tuples.EnsureDistinct(spec, choices, secondaryOptions)
		batch.Prompts = append(batch.Prompts, PromptOutput{Spec: spec})
	}
	cmd.Advance(models.StateSampled)

	for i := range batch.Prompts {
		spec := batch.Prompts[i].Spec
		batch.Prompts[i].Prompt = e.renderer.Render(spec)
		batch.Prompts[i].Metadata = Metadata{
			SpecificityScore:     cmd.SpecificityScore,
			CreativityTemp:       cmd.CreativityTemp,
			BrandDNAStrength:     strength,
			Mode:                 cmd.Mode,
			OverriddenCategories: spec.OverriddenCategories(),
			SourceAttributes:     spec.Selections,
			ProfileFallback:      profileFallback,
		}
	}
	cmd.Advance(models.StateRendered)
	cmd.Advance(models.StateDispatched)

	e.telemetry.Track("generation_completed", map[string]any{
		"prompts":          len(batch.Prompts),
		"mode":             string(cmd.Mode),
		"profile_fallback": profileFallback,
	})
	slog.Info("generation batch synthesized",
		"user", userID,
		"generation", batch.GenerationID,
		"prompts", len(batch.Prompts),
		"mode", cmd.Mode)
	return batch, nil
}

// ApplyFeedback closes the learning loop for one feedback event. The
// generation path is fully decoupled: a failed or pending feedback write
// never corrupts sampling state.
func (e *Engine) ApplyFeedback(ctx context.Context, event models.FeedbackEvent) error {
	if err := e.updater.Apply(ctx, event); err != nil {
		return err
	}
	e.telemetry.Track("feedback_applied", map[string]any{
		"positive":   event.Positive(),
		"attributes": len(event.RealizedAttributes),
	})
	return nil
}

// Stats returns a user's accumulated feedback counters.
func (e *Engine) Stats(userID string) bandit.Stats {
	return e.store.Stats(userID)
}

// Store exposes the distribution arena to commands that seed or inspect
// it directly.
func (e *Engine) Store() *bandit.Store {
	return e.store
}

// Close flushes telemetry.
func (e *Engine) Close() error {
	return e.telemetry.Close()
}

// resolveDNA extracts the brand signature, or returns an empty signature
// for users without a usable profile. The engine must always be able to
// produce a prompt; the fallback is logged, not surfaced.
func (e *Engine) resolveDNA(userID string) (*branddna.DNA, bool) {
	profile, ok := e.store.Profile(userID)
	if !ok || profile.IsEmpty() {
		slog.Info("no usable style profile, using uninformative defaults",
			"user", userID, "code", types.ErrCodeMissingProfile)
		return branddna.Extract(models.StyleProfile{}, e.cfg.SignatureTopK), true
	}
	return branddna.Extract(profile, e.cfg.SignatureTopK), false
}

// sampleSpec selects one value per category for a single batch index.
func (e *Engine) sampleSpec(generationID string, batchIndex, variationSeed int, snap bandit.Snapshot, dna *branddna.DNA, cmd *models.Command, opts bandit.Options) (*models.PromptSpec, map[models.Category]bandit.Choice) {
	selections := make(map[models.Category]models.Selection)
	choices := make(map[models.Category]bandit.Choice)

	for _, cat := range models.CategoryOrder() {
		choice := e.selector.Select(cat, e.vocab.Candidates(cat), snap, dna, cmd, opts)
		if choice.Value == "" {
			continue
		}
		choices[cat] = choice
		selections[cat] = models.Selection{
			Value:  choice.Value,
			Weight: choice.Weight,
			Source: choice.Source,
		}
	}

	return &models.PromptSpec{
		ID:            uuid.NewString(),
		GenerationID:  generationID,
		BatchIndex:    batchIndex,
		VariationSeed: variationSeed,
		Selections:    selections,
	}, choices
}

func (e *Engine) secondaryOptions() map[models.Category][]string {
	options := make(map[models.Category][]string, 3)
	for _, cat := range models.SecondaryCategories() {
		options[cat] = e.vocab.Candidates(cat)
	}
	return options
}
