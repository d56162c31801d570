package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/nba-comps/internal/datasource"
	"github.com/yourusername/nba-comps/internal/projection"
	"github.com/yourusername/nba-comps/internal/season"
)

const reportPlaces = 1

var (
	playerID    int64
	seasonID    string
	neighbors   int
	jsonOutput  bool
	persist     bool
	importStats string
	importNames string
)

func init() {
	projectCmd.Flags().Int64Var(&playerID, "player", 0, "Player ID")
	projectCmd.Flags().StringVar(&seasonID, "season", "", "Base season, e.g. 2016-17")
	projectCmd.Flags().IntVarP(&neighbors, "neighbors", "k", 0, "Number of neighbors (default from config)")
	projectCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the projection as JSON")
	_ = projectCmd.MarkFlagRequired("player")
	_ = projectCmd.MarkFlagRequired("season")

	batchCmd.Flags().StringVar(&seasonID, "season", "", "Season whose cohort to project (default latest loaded)")
	batchCmd.Flags().IntVarP(&neighbors, "neighbors", "k", 0, "Number of neighbors (default from config)")
	batchCmd.Flags().BoolVar(&persist, "persist", false, "Save the run to the database")
	batchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print projections as JSON")

	evaluateCmd.Flags().StringVar(&seasonID, "season", "", "Base season to evaluate")
	evaluateCmd.Flags().IntVarP(&neighbors, "neighbors", "k", 0, "Number of neighbors (default from config)")
	evaluateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the evaluation as JSON")
	_ = evaluateCmd.MarkFlagRequired("season")

	importCmd.Flags().StringVar(&importStats, "stats", "", "Per-season stats CSV (default data.stats_path)")
	importCmd.Flags().StringVar(&importNames, "players", "", "Player directory CSV (default data.players_path)")
}

func validSeason(id string) error {
	if _, err := season.StartYear(id); err != nil {
		return fmt.Errorf("invalid --season: %w", err)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project one player's next season",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validSeason(seasonID); err != nil {
			return err
		}

		p, err := loadProjector(cmd.Context())
		if err != nil {
			return err
		}

		result, err := p.Project(cmd.Context(), playerID, seasonID, neighbors)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(result)
		}
		return projection.WriteReport(os.Stdout, result, reportPlaces)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Project every player of a season",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := loadProjector(ctx)
		if err != nil {
			return err
		}

		target := seasonID
		if target == "" {
			seasons := p.Store().Seasons()
			if len(seasons) == 0 {
				return fmt.Errorf("no seasons loaded")
			}
			target = seasons[len(seasons)-1]
		} else if err := validSeason(target); err != nil {
			return err
		}

		batch, err := p.ProjectSeason(ctx, target, neighbors)
		if err != nil {
			return err
		}

		if persist {
			r, err := openRepositories(ctx)
			if err != nil {
				return err
			}
			if err := r.Projection.SaveBatch(ctx, batch); err != nil {
				return fmt.Errorf("failed to save projection run: %w", err)
			}
			appLog.WithField("run_id", batch.RunID).Info("Projection run saved")
		}

		if jsonOutput {
			return printJSON(batch.Projections)
		}

		fmt.Printf("Run %s: season %s, k=%d, %d projected, %d failed in %v\n",
			batch.RunID, batch.Season, batch.K, len(batch.Projections), len(batch.Failures), batch.Duration)
		if len(batch.Failures) > 0 {
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PLAYER\tSEASON\tREASON")
			for _, f := range batch.Failures {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", f.Identity.PlayerID, f.Identity.SeasonID, f.Reason)
			}
			return tw.Flush()
		}
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure projection error against the following season's actual lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validSeason(seasonID); err != nil {
			return err
		}

		p, err := loadProjector(cmd.Context())
		if err != nil {
			return err
		}

		eval, err := p.Evaluate(cmd.Context(), seasonID, neighbors)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(eval)
		}

		fmt.Printf("Evaluation %s -> %s (k=%d): %d players, %d failed\n",
			eval.BaseSeason, eval.TargetSeason, eval.K, eval.Players, eval.Failed)

		stats := make([]string, 0, len(eval.Errors))
		for s := range eval.Errors {
			stats = append(stats, s)
		}
		sort.Strings(stats)

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STAT\tMAE\tRMSE")
		for _, s := range stats {
			e := eval.Errors[s]
			fmt.Fprintf(tw, "%s\t%.3f\t%.3f\n", s, e.MAE, e.RMSE)
		}
		return tw.Flush()
	},
}

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "Summarise the loaded record store",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProjector(cmd.Context())
		if err != nil {
			return err
		}

		st := p.Store()
		gp := st.GamesPlayedStats()

		fmt.Printf("Source: %s\n", cfg.Data.Source)
		fmt.Printf("Records: %d (min games played %d)\n", st.Len(), cfg.Data.MinGamesPlayed)
		fmt.Printf("Games played: mean %.1f, std dev %.1f, three-sigma floor %.1f\n",
			gp.Mean, gp.StdDev, gp.ThreeSigmaFloor)

		sizes := st.CohortSizes()
		fmt.Println()
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SEASON\tPLAYERS\tNEXT")
		for _, s := range p.Chain().Seasons() {
			next, err := p.Chain().Successor(s)
			if err != nil {
				next = "-"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", s, sizes[s], next)
		}
		return tw.Flush()
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import player-season CSV files into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		stats := importStats
		if stats == "" {
			stats = cfg.Data.StatsPath
		}
		names := importNames
		if names == "" {
			names = cfg.Data.PlayersPath
		}
		if stats == "" {
			return fmt.Errorf("no stats file given (--stats or data.stats_path)")
		}

		source := datasource.NewCSVSource(stats, names, datasource.Options{
			SkipMalformed: cfg.Data.SkipMalformed,
			Logger:        appLog,
		})
		records, err := source.Load(ctx)
		if err != nil {
			return err
		}

		r, err := openRepositories(ctx)
		if err != nil {
			return err
		}

		n, err := r.PlayerSeason.UpsertBatch(ctx, records)
		if err != nil {
			return fmt.Errorf("failed to import records: %w", err)
		}

		fmt.Printf("Imported %d player-seasons from %s\n", n, stats)
		return nil
	},
}
