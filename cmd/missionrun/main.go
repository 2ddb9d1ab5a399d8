// Command missionrun is the CLI entry point of spec.md §6: build a
// mission from a YAML declaration and either run it end to end or
// validate it and report unresolved variables.
//
// Grounded on spatialmodel-inmap's and jhkimqd-chaos-utils's use of
// github.com/spf13/cobra for subcommand dispatch — the teacher has no
// CLI library at all (main.go opens a hardcoded file path directly).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avmission/missionperf/internal/builder"
	"github.com/avmission/missionperf/internal/csvout"
	"github.com/avmission/missionperf/internal/flightpoint"
	"github.com/avmission/missionperf/internal/variables"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "missionrun",
		Short: "Build and run mission performance declarations",
	}
	root.AddCommand(newRunCmd(), newValidateCmd())
	return root
}

type commonFlags struct {
	declPath string
	varsPath string
	mission  string
	propName string
	verbose  bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.declPath, "mission-file", "", "mission declaration YAML (required)")
	cmd.Flags().StringVar(&f.varsPath, "vars-file", "", "variable file YAML (optional)")
	cmd.Flags().StringVar(&f.mission, "mission", "", "mission name to build (required if the file declares more than one)")
	cmd.Flags().StringVar(&f.propName, "propulsion", "", "declared propulsion resource to fly with (required)")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "debug-level run logging")
	cmd.MarkFlagRequired("mission-file")
}

func (f *commonFlags) build() (*builder.Builder, *builder.Document, string, *zap.SugaredLogger, error) {
	data, err := os.ReadFile(f.declPath)
	if err != nil {
		return nil, nil, "", nil, fmt.Errorf("read %s: %w", f.declPath, err)
	}
	doc, err := builder.Parse(data)
	if err != nil {
		return nil, nil, "", nil, err
	}

	store := variables.New()
	if f.varsPath != "" {
		if err := variables.LoadFile(f.varsPath, store); err != nil {
			return nil, nil, "", nil, err
		}
	}

	logger, err := newLogger(f.verbose)
	if err != nil {
		return nil, nil, "", nil, err
	}

	name := f.mission
	if name == "" {
		names := doc.MissionNames()
		if len(names) != 1 {
			return nil, nil, "", nil, fmt.Errorf("--mission required: declaration has %d missions", len(names))
		}
		name = names[0]
	}
	if err := doc.RequireMission(name); err != nil {
		return nil, nil, "", nil, err
	}

	return builder.New(doc, store, logger), doc, name, logger, nil
}

// newLogger builds the driver/CLI's shared SugaredLogger, matching
// stignarnia-co-atc's and avtonoy-co-atc's one-logger-per-run pattern.
func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Sugar(), nil
}

func newRunCmd() *cobra.Command {
	var f commonFlags
	var csvPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build and run a mission, optionally writing a flight-point CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, name, logger, err := f.build()
			if err != nil {
				return err
			}
			defer logger.Sync()

			m, err := b.BuildMission(name)
			if err != nil {
				return err
			}
			if f.propName == "" {
				return fmt.Errorf("--propulsion is required")
			}
			prop, err := b.BuildPropulsion(f.propName)
			if err != nil {
				return err
			}

			res, err := m.Run(flightpoint.New(), prop)
			if err != nil {
				return err
			}

			fmt.Printf("run_id:       %s\n", res.RunID)
			fmt.Printf("total_fuel:   %.6g kg\n", res.TotalFuel)
			fmt.Printf("total_time:   %.6g s\n", res.TotalTime)
			fmt.Printf("reserve_fuel: %.6g kg\n", res.ReserveFuel)
			fmt.Printf("block_fuel:   %.6g kg\n", res.BlockFuel)
			fmt.Printf("tow:          %.6g kg\n", res.TOW)
			for part, totals := range res.PerPart {
				fmt.Printf("  %-24s distance=%.6g m duration=%.6g s fuel=%.6g kg\n",
					part, totals.Distance, totals.Duration, totals.Fuel)
			}

			if csvPath != "" {
				if err := writeCSV(csvPath, res.Points); err != nil {
					return err
				}
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&csvPath, "csv", "", "write flight-point trace to this CSV path")
	return cmd
}

func writeCSV(path string, points []flightpoint.FlightPoint) error {
	return csvout.Write(path, points)
}

func newValidateCmd() *cobra.Command {
	var f commonFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Build a mission without running it, reporting unresolved variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, name, logger, err := f.build()
			if err != nil {
				return err
			}
			defer logger.Sync()

			_, buildErr := b.BuildMission(name)

			fmt.Printf("mission: %s\n", name)
			fmt.Printf("required variables (%d):\n", len(b.Required()))
			for _, rv := range b.Required() {
				fmt.Printf("  %s\n", rv.String())
			}
			if buildErr != nil {
				return buildErr
			}
			fmt.Println("ok")
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
