package models

import "strings"

// CommandState tracks a command through the generation lifecycle.
type CommandState string

const (
	StateReceived        CommandState = "received"
	StateAnalyzed        CommandState = "analyzed"
	StateResolved        CommandState = "resolved"
	StateSampled         CommandState = "sampled"
	StateRendered        CommandState = "rendered"
	StateDispatched      CommandState = "dispatched"
	StateFeedbackPending CommandState = "feedback-pending"
	StateRewarded        CommandState = "rewarded"
)

// nextStates encodes the legal lifecycle transitions. Parse failures do
// not abort the machine; the analyzer substitutes a neutral specificity
// and the command still moves to analyzed.
var nextStates = map[CommandState]CommandState{
	StateReceived:        StateAnalyzed,
	StateAnalyzed:        StateResolved,
	StateResolved:        StateSampled,
	StateSampled:         StateRendered,
	StateRendered:        StateDispatched,
	StateDispatched:      StateFeedbackPending,
	StateFeedbackPending: StateRewarded,
}

// CommandMode classifies how constrained a request is.
type CommandMode string

const (
	ModeExploratory CommandMode = "exploratory"
	ModeSpecific    CommandMode = "specific"
)

// Entities is the fixed schema produced by the upstream NLU collaborator.
// Missing fields default to empty slices (Count defaults to 1) rather
// than erroring; call Normalize at the boundary.
type Entities struct {
	Colors       []string `json:"colors" validate:"dive,min=1"`
	Styles       []string `json:"styles" validate:"dive,min=1"`
	Fabrics      []string `json:"fabrics" validate:"dive,min=1"`
	Modifiers    []string `json:"modifiers" validate:"dive,min=1"`
	Construction []string `json:"construction,omitempty" validate:"dive,min=1"`
	Count        int      `json:"count" validate:"gte=0"`
}

// Normalize fills defaults for fields the upstream extractor omitted and
// trims whitespace from every term.
func (e *Entities) Normalize() {
	e.Colors = normalizeTerms(e.Colors)
	e.Styles = normalizeTerms(e.Styles)
	e.Fabrics = normalizeTerms(e.Fabrics)
	e.Modifiers = normalizeTerms(e.Modifiers)
	e.Construction = normalizeTerms(e.Construction)
	if e.Count <= 0 {
		e.Count = 1
	}
}

func normalizeTerms(terms []string) []string {
	if terms == nil {
		return []string{}
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// DescriptorCount counts the extracted descriptors that feed the
// specificity score (colors, styles, fabrics, modifiers).
func (e Entities) DescriptorCount() int {
	return len(e.Colors) + len(e.Styles) + len(e.Fabrics) + len(e.Modifiers)
}

// Command is one generation request moving through the engine. It is
// ephemeral: built per request, never persisted.
type Command struct {
	UserID           string       `json:"userId" validate:"required"`
	Text             string       `json:"text"`
	Entities         Entities     `json:"entities"`
	SpecificityScore float64      `json:"specificityScore" validate:"gte=0,lte=1"`
	CreativityTemp   float64      `json:"creativityTemp" validate:"gte=0"`
	Mode             CommandMode  `json:"mode"`
	State            CommandState `json:"state"`
}

// NewCommand builds a command in the received state with normalized
// entities.
func NewCommand(userID, text string, entities Entities) *Command {
	entities.Normalize()
	return &Command{
		UserID:   userID,
		Text:     text,
		Entities: entities,
		State:    StateReceived,
	}
}

// Advance moves the command to the next lifecycle state. It returns false
// when the transition is not legal from the current state.
func (c *Command) Advance(to CommandState) bool {
	if nextStates[c.State] != to {
		return false
	}
	c.State = to
	return true
}

// ExplicitValue returns the user's explicitly requested value for a
// category, if any. These are the values that bypass sampling when
// respect-user-intent is enabled.
func (c *Command) ExplicitValue(cat Category) (string, bool) {
	var terms []string
	switch cat {
	case CategoryColor:
		terms = c.Entities.Colors
	case CategoryStyle:
		terms = c.Entities.Styles
	case CategoryFabric:
		terms = c.Entities.Fabrics
	case CategoryConstruction:
		terms = c.Entities.Construction
	default:
		return "", false
	}
	if len(terms) == 0 {
		return "", false
	}
	return terms[0], true
}
