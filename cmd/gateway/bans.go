package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-mclib/gateway/internal/banstore"
)

func subjectKindFromFlag(s string) (banstore.SubjectKind, error) {
	switch s {
	case "ip":
		return banstore.SubjectIP, nil
	case "uuid":
		return banstore.SubjectUUID, nil
	case "username":
		return banstore.SubjectUsername, nil
	default:
		return "", fmt.Errorf("unknown ban subject %q, want ip|uuid|username", s)
	}
}

func newBansCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bans",
		Short: "Manage the persistent ban list",
	}
	cmd.AddCommand(newBansAddCmd(flags))
	cmd.AddCommand(newBansRemoveCmd(flags))
	cmd.AddCommand(newBansListCmd(flags))
	return cmd
}

func openBanStore(flags *globalFlags) (*banstore.Store, error) {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	banFile := cfg.BanFile
	if banFile == "" {
		banFile = "bans.json"
	}
	return banstore.Open(banFile)
}

func newBansAddCmd(flags *globalFlags) *cobra.Command {
	var reason string
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "add <ip|uuid|username> <value>",
		Short: "Add a ban entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := subjectKindFromFlag(args[0])
			if err != nil {
				return err
			}
			store, err := openBanStore(flags)
			if err != nil {
				return err
			}
			var expiresAt time.Time
			if duration > 0 {
				expiresAt = time.Now().Add(duration)
			}
			if err := store.Add(kind, args[1], reason, expiresAt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "banned %s %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "ban reason")
	cmd.Flags().DurationVar(&duration, "duration", 0, "ban duration; 0 means permanent")
	return cmd
}

func newBansRemoveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <ip|uuid|username> <value>",
		Short: "Remove a ban entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := subjectKindFromFlag(args[0])
			if err != nil {
				return err
			}
			store, err := openBanStore(flags)
			if err != nil {
				return err
			}
			if err := store.Remove(kind, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unbanned %s %s\n", args[0], args[1])
			return nil
		},
	}
}

func newBansListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all ban entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBanStore(flags)
			if err != nil {
				return err
			}
			for _, entry := range store.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", entry.Subject, entry.Value, entry.Reason, entry.ExpiresAt)
			}
			return nil
		},
	}
}
