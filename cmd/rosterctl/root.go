package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnavshah/roster-api-go/pkg/client"
	"github.com/arnavshah/roster-api-go/pkg/config"
	"github.com/arnavshah/roster-api-go/pkg/logging"
	"github.com/arnavshah/roster-api-go/pkg/models"
	"github.com/arnavshah/roster-api-go/pkg/schedule"
	"github.com/arnavshah/roster-api-go/pkg/session"
	"github.com/arnavshah/roster-api-go/pkg/window"
)

var (
	cfgPath string
	areaArg string
)

var rootCmd = &cobra.Command{
	Use:          "rosterctl",
	Short:        "Inspect and edit the personnel roster of a roster server",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&areaArg, "area", "", "area id, overrides the selected area")
}

// env is what every subcommand works with
type env struct {
	cfg     *config.Config
	client  *client.Client
	session *session.Session
}

func setup() (*env, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return nil, err
	}
	if err := cfg.Client.Validate(); err != nil {
		return nil, err
	}
	sess, err := session.Open(cfg.Client.StateFile)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, client: client.New(cfg.Client), session: sess}, nil
}

// scope prefers --area over the stored session
func (e *env) scope() (models.AreaScope, error) {
	if areaArg != "" {
		return models.AreaScope{AreaID: areaArg}, nil
	}
	return e.session.Scope()
}

func (e *env) window() (*window.Window, error) {
	scope, err := e.scope()
	if err != nil {
		return nil, err
	}
	return window.New(e.client, scope, window.WithLogger(logging.New("rosterctl"))), nil
}

// monthFlags registers --month and --year defaulting to the current month
func monthFlags(cmd *cobra.Command, month, year *int) {
	now := time.Now()
	cmd.Flags().IntVarP(month, "month", "m", int(now.Month()), "month (1-12)")
	cmd.Flags().IntVarP(year, "year", "y", now.Year(), "year")
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: "date", Message: "dates must be YYYY-MM-DD"}
	}
	return t, nil
}

// monthData is the projection behind the grid, availability and report commands
type monthData struct {
	month     schedule.Month
	personnel []models.Person
	catalog   schedule.Catalog
	index     *schedule.Index
}

func (e *env) loadMonth(cmd *cobra.Command, m schedule.Month) (*monthData, error) {
	ctx := cmd.Context()
	w, err := e.window()
	if err != nil {
		return nil, err
	}
	scope, _ := e.scope()
	personnel, err := e.client.ListPeople(ctx, scope.AreaID)
	if err != nil {
		return nil, err
	}
	types, err := e.client.ListWorkTypes(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := w.Load(ctx, m.Month, m.Year, ""); err != nil {
		return nil, err
	}
	idx := w.Index(personnel)
	for _, o := range idx.Overwrites() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s overlaps %s on %d/%d/%d\n", o.Kept, o.Lost, o.Key.Day, int(o.Key.Month), o.Key.Year)
	}
	return &monthData{month: m, personnel: personnel, catalog: schedule.NewCatalog(types), index: idx}, nil
}
