package main

import (
	"encoding/json"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type dbOpener func() (*gorm.DB, error)

// operator is the identity forumctl reads with; it sees hidden content.
var operator = &services.Actor{Username: "forumctl", Role: models.RoleAdmin}

func newRootCmd(open dbOpener) *cobra.Command {
	var forumID string

	root := &cobra.Command{
		Use:           "forumctl",
		Short:         "Forum moderation and maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&forumID, "forum", "", "forum id to operate on")

	forum := func() (string, error) {
		if forumID == "" {
			return "", fmt.Errorf("--forum is required")
		}
		return forumID, nil
	}

	root.AddCommand(
		newMigrateCmd(open),
		newBlockCmd(open, forum),
		newUnblockCmd(open, forum),
		newReportsCmd(open, forum),
		newActivityCmd(open, forum),
	)
	return root
}

func newMigrateCmd(open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every forum table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated", len(database.Models()), "tables")
			return nil
		},
	}
}

func newBlockCmd(open dbOpener, forum func() (string, error)) *cobra.Command {
	var by, reason string

	cmd := &cobra.Command{
		Use:   "block <username>",
		Short: "Block a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forumID, err := forum()
			if err != nil {
				return err
			}
			db, err := open()
			if err != nil {
				return err
			}

			created, err := services.NewBlockService(db, nil).Block(forumID, args[0], by, reason)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already blocked\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "blocked %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "forumctl", "admin username recorded on the block")
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown to moderators")
	return cmd
}

func newUnblockCmd(open dbOpener, forum func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <username>",
		Short: "Lift a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forumID, err := forum()
			if err != nil {
				return err
			}
			db, err := open()
			if err != nil {
				return err
			}

			removed, err := services.NewBlockService(db, nil).Unblock(forumID, args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not blocked\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unblocked %s\n", args[0])
			return nil
		},
	}
}

func newReportsCmd(open dbOpener, forum func() (string, error)) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List reports as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forumID, err := forum()
			if err != nil {
				return err
			}
			db, err := open()
			if err != nil {
				return err
			}

			mod := services.NewModerationService(db, services.NewBlockService(db, nil), 0, nil)
			reports, _, err := mod.ListReports(forumID, status, limit, 0)
			if err != nil {
				return err
			}
			return writeJSON(cmd, reports)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, reviewed, dismissed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of reports")
	return cmd
}

func newActivityCmd(open dbOpener, forum func() (string, error)) *cobra.Command {
	var withStats bool

	cmd := &cobra.Command{
		Use:   "activity <username>",
		Short: "Print a user's activity feed as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forumID, err := forum()
			if err != nil {
				return err
			}
			db, err := open()
			if err != nil {
				return err
			}

			activity := services.NewActivityService(db)
			events, err := activity.ActivityFor(forumID, operator, args[0])
			if err != nil {
				return err
			}
			if !withStats {
				return writeJSON(cmd, events)
			}
			stats, err := activity.StatsFor(forumID, operator, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]interface{}{"events": events, "stats": stats})
		},
	}
	cmd.Flags().BoolVar(&withStats, "stats", false, "include derived stats")
	return cmd
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
