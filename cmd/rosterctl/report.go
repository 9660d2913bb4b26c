package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/roster-api-go/pkg/export"
	"github.com/arnavshah/roster-api-go/pkg/schedule"
)

var (
	reportMonth, reportYear int
	reportXLSX              string
	reportGrid              bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Count assigned days per person and work type",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := schedule.NewMonth(reportMonth, reportYear)
		if err != nil {
			return err
		}
		e, err := setup()
		if err != nil {
			return err
		}
		data, err := e.loadMonth(cmd, m)
		if err != nil {
			return err
		}
		r := schedule.Report(data.index, data.personnel, data.catalog, m)

		if reportXLSX != "" {
			if err := writeWorkbook(data, r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", reportXLSX)
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprint(tw, "\t")
		for _, code := range r.Codes {
			fmt.Fprintf(tw, "%s\t", code)
		}
		fmt.Fprintln(tw, "Total\t")
		for _, row := range r.Rows {
			fmt.Fprintf(tw, "%s\t", row.Person.Name)
			for _, code := range r.Codes {
				fmt.Fprintf(tw, "%d\t", row.Counts[code])
			}
			fmt.Fprintf(tw, "%d\t\n", row.Total)
		}
		fmt.Fprint(tw, "Total\t")
		for _, code := range r.Codes {
			fmt.Fprintf(tw, "%d\t", r.Totals[code])
		}
		fmt.Fprintf(tw, "%d\t\n", r.Total)
		return tw.Flush()
	},
}

func writeWorkbook(data *monthData, r schedule.MonthReport) error {
	ex := export.NewExporter()
	var (
		f   *excelize.File
		err error
	)
	if reportGrid {
		f, err = ex.Grid(data.month, schedule.Grid(data.index, data.personnel, data.month), data.catalog)
	} else {
		f, err = ex.Report(r, data.catalog)
	}
	if err != nil {
		return err
	}
	out, err := os.Create(reportXLSX)
	if err != nil {
		f.Close()
		return err
	}
	if err := export.Write(f, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func init() {
	monthFlags(reportCmd, &reportMonth, &reportYear)
	reportCmd.Flags().StringVarP(&reportXLSX, "xlsx", "o", "", "write an xlsx workbook instead of printing")
	reportCmd.Flags().BoolVar(&reportGrid, "grid", false, "with --xlsx, write the month grid instead of the counts")
	rootCmd.AddCommand(reportCmd)
}
