package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modehaus/stylesynth/internal/engine"
	"github.com/modehaus/stylesynth/models"
)

var generateFlags struct {
	user         string
	count        int
	colors       []string
	styles       []string
	fabrics      []string
	modifiers    []string
	construction []string
	jsonOut      bool
}

var generateCmd = &cobra.Command{
	Use:   "generate [request text]",
	Short: "Synthesize a batch of weighted image-generation prompts",
	Long: `Generate analyzes the request text, samples attributes from the user's
learned posteriors biased by their brand DNA, and renders one weighted
prompt per requested image.

Entity flags mark values the request names explicitly; with
respectUserIntent enabled they bypass sampling entirely.`,
	Example: `  stylesynth generate --user brand-123 "a flowing summer dress" --count 4
  stylesynth generate --user brand-123 "evening gown" --colors "navy blue" --fabrics silk`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, repo, err := newEngine()
		if err != nil {
			return err
		}
		defer closeEngine(eng, repo)

		ctx := cmd.Context()
		if err := eng.Hydrate(ctx, generateFlags.user); err != nil {
			return fmt.Errorf("hydrate posteriors: %w", err)
		}

		entities := models.Entities{
			Colors:       generateFlags.colors,
			Styles:       generateFlags.styles,
			Fabrics:      generateFlags.fabrics,
			Modifiers:    generateFlags.modifiers,
			Construction: generateFlags.construction,
			Count:        generateFlags.count,
		}
		batch, err := eng.Generate(ctx, generateFlags.user, strings.Join(args, " "), entities)
		if err != nil {
			return err
		}

		if generateFlags.jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(batch)
		}
		printBatch(batch)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateFlags.user, "user", "u", "", "user or brand identifier")
	generateCmd.Flags().IntVarP(&generateFlags.count, "count", "n", 1, "number of prompts to synthesize")
	generateCmd.Flags().StringSliceVar(&generateFlags.colors, "colors", nil, "explicitly requested colors")
	generateCmd.Flags().StringSliceVar(&generateFlags.styles, "styles", nil, "explicitly requested styles")
	generateCmd.Flags().StringSliceVar(&generateFlags.fabrics, "fabrics", nil, "explicitly requested fabrics")
	generateCmd.Flags().StringSliceVar(&generateFlags.modifiers, "modifiers", nil, "descriptive modifiers from the request")
	generateCmd.Flags().StringSliceVar(&generateFlags.construction, "construction", nil, "explicitly requested construction details")
	generateCmd.Flags().BoolVar(&generateFlags.jsonOut, "json", false, "emit the batch as JSON")
	generateCmd.Flags().Bool("respect-intent", true, "explicit entity values bypass sampling")
	_ = viper.BindPFlag("engine.respectUserIntent", generateCmd.Flags().Lookup("respect-intent"))
	_ = generateCmd.MarkFlagRequired("user")
}

func printBatch(batch *engine.Batch) {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	negStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	fmt.Println(headerStyle.Render(fmt.Sprintf("Generation %s (%d prompts)", batch.GenerationID, len(batch.Prompts))))
	for _, out := range batch.Prompts {
		meta := out.Metadata
		fmt.Printf("\n%s\n", headerStyle.Render(fmt.Sprintf("[%d] %s", out.Spec.BatchIndex+1, out.Spec.ID)))
		fmt.Printf("  %s\n", promptStyle.Render(out.Prompt.PositiveText))
		if out.Prompt.NegativeText != "" {
			fmt.Printf("  %s\n", negStyle.Render("negative: "+out.Prompt.NegativeText))
		}
		fmt.Printf("  %s\n", metaStyle.Render(fmt.Sprintf(
			"mode=%s specificity=%.2f creativity=%.2f dna=%.2f overrides=%d",
			meta.Mode, meta.SpecificityScore, meta.CreativityTemp,
			meta.BrandDNAStrength, len(meta.OverriddenCategories))))
	}
}
