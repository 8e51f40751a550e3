package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/modehaus/stylesynth/models"
)

var feedbackFlags struct {
	file        string
	user        string
	generation  string
	event       string
	reward      float64
	ageDays     float64
	attributes  []string
	interactive bool
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Apply user feedback to the learned posteriors",
	Long: `Feedback updates the Beta posteriors of the attributes realized in a
prior generation. Positive rewards (>= 0.5) reinforce them, negative
rewards penalize them, and older events count for less.

Events can come from a JSON file (--file, an object or array of
objects), from flags, or interactively.`,
	Example: `  stylesynth feedback --file events.json
  stylesynth feedback --user brand-123 --generation 9c1f... --reward 0.9 \
      --attr color=emerald --attr fabric=silk`,
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := collectFeedbackEvents()
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return fmt.Errorf("no feedback events given; use --file, flags, or --interactive")
		}

		eng, repo, err := newEngine()
		if err != nil {
			return err
		}
		defer closeEngine(eng, repo)

		ctx := cmd.Context()
		for _, event := range events {
			if err := eng.Hydrate(ctx, event.UserID); err != nil {
				return fmt.Errorf("hydrate posteriors: %w", err)
			}
			if err := eng.ApplyFeedback(ctx, event); err != nil {
				return fmt.Errorf("apply event %s: %w", event.EventID, err)
			}
		}
		fmt.Printf("Applied %d feedback event(s).\n", len(events))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)

	feedbackCmd.Flags().StringVarP(&feedbackFlags.file, "file", "f", "", "JSON file with one event or an array of events")
	feedbackCmd.Flags().StringVarP(&feedbackFlags.user, "user", "u", "", "user or brand identifier")
	feedbackCmd.Flags().StringVarP(&feedbackFlags.generation, "generation", "g", "", "generation the feedback refers to")
	feedbackCmd.Flags().StringVar(&feedbackFlags.event, "event", "", "event identifier (defaults to a new UUID)")
	feedbackCmd.Flags().Float64VarP(&feedbackFlags.reward, "reward", "r", 1.0, "reward in [0,1]; >= 0.5 reinforces")
	feedbackCmd.Flags().Float64Var(&feedbackFlags.ageDays, "age-days", 0, "age of the event in days")
	feedbackCmd.Flags().StringSliceVar(&feedbackFlags.attributes, "attr", nil, "realized attribute as category=value (repeatable)")
	feedbackCmd.Flags().BoolVarP(&feedbackFlags.interactive, "interactive", "i", false, "build the event interactively")
}

func collectFeedbackEvents() ([]models.FeedbackEvent, error) {
	if feedbackFlags.file != "" {
		return readFeedbackFile(feedbackFlags.file)
	}
	if feedbackFlags.interactive {
		event, err := promptFeedbackEvent()
		if err != nil {
			return nil, err
		}
		return []models.FeedbackEvent{event}, nil
	}
	if feedbackFlags.user == "" && feedbackFlags.generation == "" {
		return nil, nil
	}

	attrs, err := parseAttributes(feedbackFlags.attributes)
	if err != nil {
		return nil, err
	}
	eventID := feedbackFlags.event
	if eventID == "" {
		eventID = uuid.NewString()
	}
	return []models.FeedbackEvent{{
		EventID:            eventID,
		GenerationID:       feedbackFlags.generation,
		UserID:             feedbackFlags.user,
		RealizedAttributes: attrs,
		Reward:             feedbackFlags.reward,
		AgeInDays:          feedbackFlags.ageDays,
	}}, nil
}

// readFeedbackFile accepts either a single event object or an array.
func readFeedbackFile(path string) ([]models.FeedbackEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feedback file: %w", err)
	}
	var events []models.FeedbackEvent
	if err := json.Unmarshal(data, &events); err == nil {
		return events, nil
	}
	var single models.FeedbackEvent
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse feedback file %s: %w", path, err)
	}
	return []models.FeedbackEvent{single}, nil
}

func parseAttributes(pairs []string) (map[models.Category]string, error) {
	attrs := make(map[models.Category]string, len(pairs))
	for _, pair := range pairs {
		cat, value, ok := strings.Cut(pair, "=")
		if !ok || cat == "" || value == "" {
			return nil, fmt.Errorf("invalid --attr %q, want category=value", pair)
		}
		attrs[models.Category(strings.TrimSpace(cat))] = strings.TrimSpace(value)
	}
	return attrs, nil
}

func promptFeedbackEvent() (models.FeedbackEvent, error) {
	event := models.FeedbackEvent{EventID: uuid.NewString(), RealizedAttributes: map[models.Category]string{}}

	userPrompt := promptui.Prompt{Label: "User ID", Validate: nonEmpty}
	user, err := userPrompt.Run()
	if err != nil {
		return event, err
	}
	event.UserID = user

	genPrompt := promptui.Prompt{Label: "Generation ID", Validate: nonEmpty}
	gen, err := genPrompt.Run()
	if err != nil {
		return event, err
	}
	event.GenerationID = gen

	rewardPrompt := promptui.Prompt{
		Label:   "Reward (0..1)",
		Default: "1.0",
		Validate: func(input string) error {
			v, err := strconv.ParseFloat(input, 64)
			if err != nil || v < 0 || v > 1 {
				return fmt.Errorf("reward must be a number in [0,1]")
			}
			return nil
		},
	}
	rewardStr, err := rewardPrompt.Run()
	if err != nil {
		return event, err
	}
	event.Reward, _ = strconv.ParseFloat(rewardStr, 64)

	for {
		attrPrompt := promptui.Prompt{Label: "Realized attribute (category=value, empty to finish)"}
		pair, err := attrPrompt.Run()
		if err != nil {
			if err == promptui.ErrInterrupt {
				return event, err
			}
			break
		}
		if strings.TrimSpace(pair) == "" {
			break
		}
		attrs, err := parseAttributes([]string{pair})
		if err != nil {
			fmt.Println(err)
			continue
		}
		for cat, value := range attrs {
			event.RealizedAttributes[cat] = value
		}
	}
	return event, nil
}

func nonEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("value must not be empty")
	}
	return nil
}
