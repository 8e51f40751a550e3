package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/modehaus/stylesynth/internal/branddna"
	"github.com/modehaus/stylesynth/models"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage ingested style profiles",
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a style profile and seed the user's posteriors",
	Long: `Import reads a style profile JSON document, produced by portfolio
analysis, and seeds Beta priors from its per-category observation counts.
Confident observations seed optimistic priors; low-confidence ones stay
close to uniform.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read profile file: %w", err)
		}
		var profile models.StyleProfile
		if err := json.Unmarshal(data, &profile); err != nil {
			return fmt.Errorf("parse profile file %s: %w", args[0], err)
		}

		eng, repo, err := newEngine()
		if err != nil {
			return err
		}
		defer closeEngine(eng, repo)

		if err := eng.ImportProfile(cmd.Context(), profile); err != nil {
			return err
		}
		fmt.Printf("Imported profile for %s (version %d, %d images analyzed).\n",
			profile.UserID, profile.Version, profile.ImagesAnalyzed)
		return nil
	},
}

var profileShowUser string

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a user's brand DNA and feedback statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, repo, err := newEngine()
		if err != nil {
			return err
		}
		defer closeEngine(eng, repo)

		ctx := cmd.Context()
		if err := eng.Hydrate(ctx, profileShowUser); err != nil {
			return fmt.Errorf("hydrate posteriors: %w", err)
		}

		profile, ok := eng.Store().Profile(profileShowUser)
		if !ok {
			fmt.Printf("No style profile imported for %s.\n", profileShowUser)
		} else {
			printDNA(branddna.Extract(profile, GetConfig().Engine.SignatureTopK))
		}

		stats := eng.Stats(profileShowUser)
		fmt.Printf("\nFeedback: %.1f positive, %.1f negative (%.0f%% positive rate)\n",
			stats.PositiveFeedback, stats.NegativeFeedback, stats.SelectionRate*100)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileShowCmd)

	profileShowCmd.Flags().StringVarP(&profileShowUser, "user", "u", "", "user or brand identifier")
	_ = profileShowCmd.MarkFlagRequired("user")
}

func printDNA(dna *branddna.DNA) {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

	fmt.Println(headerStyle.Render("Brand DNA"))
	fmt.Printf("  Primary aesthetic: %s\n", valueStyle.Render(dna.PrimaryAesthetic))
	printTraits("Secondary aesthetics", dna.SecondaryAesthetics)
	printTraits("Signature colors", dna.SignatureColors)
	printTraits("Signature fabrics", dna.SignatureFabrics)
	printTraits("Signature construction", dna.SignatureConstruction)
	printTraits("Primary garments", dna.PrimaryGarments)
}

func printTraits(label string, traits []branddna.Trait) {
	if len(traits) == 0 {
		return
	}
	fmt.Printf("  %s:", label)
	for _, trait := range traits {
		fmt.Printf(" %s (%.2f)", trait.Value, trait.Weight)
	}
	fmt.Println()
}
