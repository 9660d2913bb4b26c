package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnavshah/roster-api-go/pkg/models"
	"github.com/arnavshah/roster-api-go/pkg/schedule"
	"github.com/arnavshah/roster-api-go/pkg/window"
)

var (
	adminUser, adminPassword string

	assignUser, assignCode, assignFrom, assignTo string
	clearUser                                    string
	clearMonth, clearYear                        int
)

// adminWindow logs in with the admin credentials; API keys cannot write
func (e *env) adminWindow(cmd *cobra.Command) (*window.Window, error) {
	user, pass := adminUser, adminPassword
	if user == "" {
		user = e.cfg.Auth.AdminUsername
	}
	if pass == "" {
		pass = e.cfg.Auth.AdminPassword
	}
	if err := e.client.Login(cmd.Context(), user, pass); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return e.window()
}

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a work type to a person over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseDate(assignFrom)
		if err != nil {
			return err
		}
		to := from
		if assignTo != "" {
			if to, err = parseDate(assignTo); err != nil {
				return err
			}
		}
		e, err := setup()
		if err != nil {
			return err
		}
		w, err := e.adminWindow(cmd)
		if err != nil {
			return err
		}
		a, err := w.Create(cmd.Context(), models.AssignmentInput{
			UserID:       assignUser,
			WorkTypeCode: assignCode,
			StartDate:    from,
			EndDate:      to,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s: %s %s %s..%s\n", a.ID, a.UserID, a.WorkTypeCode,
			a.StartDate.Format("2006-01-02"), a.EndDate.Format("2006-01-02"))
		return nil
	},
}

var unassignCmd = &cobra.Command{
	Use:   "unassign <assignment-id>",
	Short: "Delete an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		w, err := e.adminWindow(cmd)
		if err != nil {
			return err
		}
		if err := w.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every assignment of a person touching a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := schedule.NewMonth(clearMonth, clearYear)
		if err != nil {
			return err
		}
		e, err := setup()
		if err != nil {
			return err
		}
		w, err := e.adminWindow(cmd)
		if err != nil {
			return err
		}
		if err := w.DeleteByUserAndMonth(cmd.Context(), clearUser, m.Month, m.Year); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s for %s\n", clearUser, m)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{assignCmd, unassignCmd, clearCmd} {
		c.Flags().StringVar(&adminUser, "admin-user", "", "admin username (default from config)")
		c.Flags().StringVar(&adminPassword, "admin-password", "", "admin password (default from config)")
		rootCmd.AddCommand(c)
	}

	assignCmd.Flags().StringVarP(&assignUser, "user", "u", "", "person id")
	assignCmd.Flags().StringVarP(&assignCode, "code", "t", "", "work type code")
	assignCmd.Flags().StringVar(&assignFrom, "from", "", "first day (YYYY-MM-DD)")
	assignCmd.Flags().StringVar(&assignTo, "to", "", "last day (YYYY-MM-DD), defaults to --from")
	_ = assignCmd.MarkFlagRequired("user")
	_ = assignCmd.MarkFlagRequired("code")
	_ = assignCmd.MarkFlagRequired("from")

	clearCmd.Flags().StringVarP(&clearUser, "user", "u", "", "person id")
	_ = clearCmd.MarkFlagRequired("user")
	monthFlags(clearCmd, &clearMonth, &clearYear)
}
