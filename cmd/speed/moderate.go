package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/config"
)

var (
	moderateStatus    string
	moderateNotes     string
	moderateModerator string
)

func init() {
	moderateCmd.Flags().StringVar(&moderateStatus, "status", "", "Decision: approved or rejected (required)")
	moderateCmd.Flags().StringVar(&moderateNotes, "notes", "", "Moderation notes")
	moderateCmd.Flags().StringVar(&moderateModerator, "moderator", "", "Moderator identity (default: moderator_id from global config)")
	moderateCmd.MarkFlagRequired("status")
	rootCmd.AddCommand(moderateCmd)
}

var moderateCmd = &cobra.Command{
	Use:   "moderate <id>",
	Short: "Approve or reject a pending article",
	Long: `Approve or reject a pending article.

Only pending articles can be moderated; approved and rejected are final.

Examples:
  speed moderate 3f2a... --status approved
  speed moderate 3f2a... --status rejected --notes "not empirical"`,
	Args: cobra.ExactArgs(1),
	RunE: runModerate,
}

func runModerate(cmd *cobra.Command, args []string) error {
	moderator := moderateModerator
	if moderator == "" {
		moderator = config.GetModeratorID()
	}

	d := article.Decision{
		Status:      article.Status(strings.ToLower(strings.TrimSpace(moderateStatus))),
		ModeratorID: moderator,
		Notes:       moderateNotes,
	}
	if err := d.Validate(); err != nil {
		exitForError("invalid decision", err)
	}

	repoRoot := mustFindRepository()
	store, db := mustOpenStore(repoRoot)
	defer db.Close()

	a, err := store.Moderate(args[0], d)
	if err != nil {
		exitForError("moderating article", err)
	}

	if humanOutput {
		fmt.Printf("%s %s by %s\n", a.ID, a.Status, a.ModeratedBy)
	} else {
		outputJSON(a)
	}
	return nil
}
