package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

var areaCmd = &cobra.Command{
	Use:   "area",
	Short: "List and select areas",
}

var areaListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		areas, err := e.client.ListAreas(cmd.Context())
		if err != nil {
			return err
		}
		current, _ := e.session.Scope()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, a := range areas {
			mark := " "
			if a.ID == current.AreaID {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, a.ID, a.Name)
		}
		return tw.Flush()
	},
}

var areaUseCmd = &cobra.Command{
	Use:   "use <area-id>",
	Short: "Select the area used by the other commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		areas, err := e.client.ListAreas(cmd.Context())
		if err != nil {
			return err
		}
		for _, a := range areas {
			if a.ID == args[0] || a.Name == args[0] {
				if err := e.session.Use(a); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "using area %s (%s)\n", a.Name, a.ID)
				return nil
			}
		}
		return &models.NotFoundError{Kind: "area", ID: args[0]}
	},
}

var areaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the selected area",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		scope, err := e.session.Scope()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", e.session.AreaName(), scope.AreaID)
		return nil
	},
}

func init() {
	areaCmd.AddCommand(areaListCmd, areaUseCmd, areaShowCmd)
	rootCmd.AddCommand(areaCmd)
}
