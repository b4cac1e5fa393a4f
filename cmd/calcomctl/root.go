package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/storage"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/application"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
)

// storeOpener opens the backing store for a single command invocation.
type storeOpener func(ctx context.Context) (*storage.Stores, error)

// newRootCmd builds the command tree. open is called lazily by each
// subcommand so that --help works without a reachable store.
func newRootCmd(open storeOpener) *cobra.Command {
	root := &cobra.Command{
		Use:   "calcomctl",
		Short: "Administer calcom-server credentials and profiles",
		Long: `calcomctl operates directly on the calcom-server store selected by
STORE_BACKEND (sqlite or redis). It reads the same environment variables as
the server, except that identity provider settings are not needed.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newAdminCmd(open),
		newCredentialsCmd(open),
		newLegacyCmd(open),
	)
	return root
}

// withStores opens the store, runs fn and closes the store again.
func withStores(cmd *cobra.Command, open storeOpener, fn func(ctx context.Context, s *storage.Stores) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	stores, err := open(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	return fn(ctx, stores)
}

func newAdminCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Grant or revoke the administrator flag on a user profile",
	}

	setAdmin := func(grant bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			uid := args[0]
			return withStores(cmd, open, func(ctx context.Context, s *storage.Stores) error {
				profile, err := s.Profiles.Get(ctx, uid)
				if err != nil {
					return err
				}
				if profile == nil {
					profile = &model.Profile{SubjectID: uid}
				}

				profile.IsAdmin = &grant
				if !grant || profile.Admin != nil {
					// Either flag grants access, so revoking clears both.
					profile.Admin = &grant
				}
				profile.UpdatedAt = time.Now().UTC()

				if err := s.Profiles.Put(ctx, *profile); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", uid, profile.HasAdminCapability())
				return nil
			})
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "grant <uid>",
			Short: "Allow the user to act on other users' credentials",
			Args:  cobra.ExactArgs(1),
			RunE:  setAdmin(true),
		},
		&cobra.Command{
			Use:   "revoke <uid>",
			Short: "Remove administrator access from the user",
			Args:  cobra.ExactArgs(1),
			RunE:  setAdmin(false),
		},
	)
	return cmd
}

func newCredentialsCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Inspect or remove a user's stored Cal.com credential",
	}

	newService := func(s *storage.Stores, w io.Writer) *application.CredentialService {
		return application.NewCredentialService(s.Credentials, s.Legacy, slog.New(slog.NewTextHandler(w, nil)))
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status <uid>",
			Short: "Show whether the user has a usable credential (migrates legacy records)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				uid := args[0]
				return withStores(cmd, open, func(ctx context.Context, s *storage.Stores) error {
					cred, err := newService(s, cmd.ErrOrStderr()).Load(ctx, uid)
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					if cred == nil {
						fmt.Fprintf(out, "%s connected=false\n", uid)
						return nil
					}
					fmt.Fprintf(out, "%s connected=true username=%s migrated=%t encrypted=%t\n",
						uid, cred.ExternalUsername, cred.MigratedFromLegacy, s.Encrypted)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <uid>",
			Short: "Delete the user's stored credential",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				uid := args[0]
				return withStores(cmd, open, func(ctx context.Context, s *storage.Stores) error {
					if err := newService(s, cmd.ErrOrStderr()).Remove(ctx, uid); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s removed\n", uid)
					return nil
				})
			},
		},
	)
	return cmd
}

func newLegacyCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Manage legacy-format credential records",
	}

	var apiKey, username string
	importCmd := &cobra.Command{
		Use:   "import <uid>",
		Short: "Write a legacy record; it is migrated on the user's next request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid := args[0]
			return withStores(cmd, open, func(ctx context.Context, s *storage.Stores) error {
				err := s.Legacy.Put(ctx, model.LegacyCredential{
					SubjectID:      uid,
					APIKey:         apiKey,
					CalComUsername: username,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s legacy record written\n", uid)
				return nil
			})
		},
	}
	importCmd.Flags().StringVar(&apiKey, "api-key", "", "Cal.com API key")
	importCmd.Flags().StringVar(&username, "username", "", "Cal.com username")
	_ = importCmd.MarkFlagRequired("api-key")
	_ = importCmd.MarkFlagRequired("username")

	cmd.AddCommand(importCmd)
	return cmd
}
