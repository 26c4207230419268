package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nomadx/internal/auth"
	"nomadx/internal/database"
	"nomadx/internal/export"
	"nomadx/internal/models"
	"nomadx/internal/scope"
	"nomadx/internal/service"
)

var profileFlags struct {
	id, email, role, name, phone string
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Create a user profile with a role",
	Long: `Create the profile that assigns a role to an account id.

An existing profile keeps its stored role; a warning is logged when it differs.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		users := service.NewUserService(e.db, e.logger)
		err = users.CreateProfile(cmd.Context(), &models.UserProfile{
			ID:          profileFlags.id,
			Email:       profileFlags.email,
			Role:        models.Role(profileFlags.role),
			DisplayName: profileFlags.name,
			Phone:       profileFlags.phone,
		})
		if err != nil {
			return err
		}

		role, err := users.GetRole(cmd.Context(), profileFlags.id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile %s has role %s\n", profileFlags.id, role)
		return nil
	},
}

var tokenFlags struct {
	id, email, name, phone string
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed access token for an account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, closer, err := loadConfig()
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		token, err := auth.NewService(cfg.API.Auth).Issue(models.Account{
			ID:          tokenFlags.id,
			Email:       tokenFlags.email,
			DisplayName: tokenFlags.name,
			PhoneNumber: tokenFlags.phone,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var exportAgency string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write bookings to an Excel workbook",
	Long:  "Write all bookings, or one agency's bookings with --agency, to the configured export directory.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		caller := scope.Caller{Role: models.RoleAdmin}
		if exportAgency != "" {
			caller = scope.Caller{Role: models.RoleAgency, AccountID: exportAgency}
		}
		q, _ := scope.Bookings(caller)

		bookings, err := e.db.ListBookings(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to list bookings: %w", err)
		}

		path, err := export.SaveBookings(e.cfg.Exports.Path, bookings, time.Now())
		if err != nil {
			return err
		}
		e.logger.Info().Str("path", path).Int("bookings", len(bookings)).Msg("bookings exported")
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var backupSkipCleanup bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the sqlite database and prune old backups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		backups := database.NewBackupService(e.db, e.cfg.Backup, e.logger)
		path, err := backups.PerformBackup(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)

		if backupSkipCleanup {
			return nil
		}
		removed, err := backups.CleanupOldBackups()
		if err != nil {
			return errors.Join(errors.New("backup written but cleanup failed"), err)
		}
		e.logger.Info().Int("removed", removed).Msg("old backups pruned")
		return nil
	},
}

func init() {
	pf := profileCmd.Flags()
	pf.StringVar(&profileFlags.id, "id", "", "account id (required)")
	pf.StringVar(&profileFlags.email, "email", "", "account email (required)")
	pf.StringVar(&profileFlags.role, "role", string(models.RoleCustomer), "customer, agency or admin")
	pf.StringVar(&profileFlags.name, "name", "", "display name")
	pf.StringVar(&profileFlags.phone, "phone", "", "phone number")
	_ = profileCmd.MarkFlagRequired("id")
	_ = profileCmd.MarkFlagRequired("email")

	tf := tokenCmd.Flags()
	tf.StringVar(&tokenFlags.id, "id", "", "account id (required)")
	tf.StringVar(&tokenFlags.email, "email", "", "account email")
	tf.StringVar(&tokenFlags.name, "name", "", "display name")
	tf.StringVar(&tokenFlags.phone, "phone", "", "phone number")
	_ = tokenCmd.MarkFlagRequired("id")

	exportCmd.Flags().StringVar(&exportAgency, "agency", "", "only export this agency's bookings")
	backupCmd.Flags().BoolVar(&backupSkipCleanup, "skip-cleanup", false, "keep backups older than the retention period")
}
