package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/natserract/eircode/pkg/batch"
	"github.com/natserract/eircode/pkg/config"
	"github.com/natserract/eircode/pkg/eircode"
	"github.com/natserract/eircode/pkg/store/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once config is loaded.
type app struct {
	client *eircode.Client
	logger *zap.Logger
	out    io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "eircode",
		Short:         "Look up Irish addresses with the Autoaddress Eircode API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			client, err := eircode.NewFromConfig(cfg, logger)
			if err != nil {
				return err
			}
			a.client = client
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.AddCommand(
		newFindCmd(a),
		newPostcodeCmd(a),
		newVerifyCmd(a),
		newEcadCmd(a),
		newBatchCmd(a),
	)
	return root
}

func newFindCmd(a *app) *cobra.Command {
	var (
		addressID   string
		limit       int
		language    string
		country     string
		vanity      bool
		profileName string
	)
	cmd := &cobra.Command{
		Use:   "find ADDRESS",
		Short: "Search for an address or postcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := eircode.FindAddressOptions{
				Language:      eircode.Language(language),
				Country:       eircode.Country(country),
				IncludeVanity: vanity,
			}
			if cmd.Flags().Changed("address-id") {
				opts.AddressID = eircode.String(addressID)
			}
			if cmd.Flags().Changed("limit") {
				opts.Limit = eircode.Int(limit)
			}
			if cmd.Flags().Changed("profile") {
				opts.AddressProfileName = eircode.String(profileName)
			}
			data, err := a.client.FindAddress(cmd.Context(), args[0], opts)
			return a.print(data, err)
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "address id returned by an earlier lookup")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	cmd.Flags().StringVar(&language, "language", "", "result language: en or ga")
	cmd.Flags().StringVar(&country, "country", "", "country to search: ie or gb")
	cmd.Flags().BoolVar(&vanity, "vanity", false, "return the vanity address when one exists")
	cmd.Flags().StringVar(&profileName, "profile", "", "address profile name used to format results")
	return cmd
}

func newPostcodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "postcode EIRCODE",
		Short: "Resolve an Eircode to its address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client.PostcodeLookup(cmd.Context(), args[0])
			return a.print(data, err)
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "verify EIRCODE ADDRESS",
		Short: "Check that an address matches an Eircode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client.VerifyAddress(cmd.Context(), args[0], args[1], eircode.VerifyAddressOptions{
				Language: eircode.Language(language),
			})
			return a.print(data, err)
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "result language: en or ga")
	return cmd
}

func newEcadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ecad ECAD_ID",
		Short: "Fetch the ECAD record for an ecad id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client.GetEcadData(cmd.Context(), args[0])
			return a.print(data, err)
		},
	}
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		concurrency int
		rps         float64
		store       bool
	)
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Look up every postcode (or ecad:ID) listed one per line in FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			jobs, err := batch.ParseJobs(f)
			if err != nil {
				return err
			}

			opts := []batch.Option{
				batch.WithConcurrency(concurrency),
				batch.WithRate(rps, 1),
			}
			if store {
				db, err := openStore(cmd.Context(), a.logger)
				if err != nil {
					return err
				}
				defer db.Close()
				opts = append(opts, batch.WithSink(db))
			}

			svc := batch.NewService(a.client, a.logger, opts...)
			metrics, results := svc.Run(cmd.Context(), jobs)

			for _, r := range results {
				line := batchLine{Kind: string(r.Job.Kind), Value: r.Job.Value, Data: r.Data}
				if r.Err != nil {
					line.Error = r.Err.Error()
				}
				if err := json.NewEncoder(a.out).Encode(line); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Batch: %d succeeded, %d failed, %d not stored\n",
				metrics.Succeeded, metrics.Failed, metrics.SinkFailed)
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 5, "lookups in flight at once")
	cmd.Flags().Float64Var(&rps, "rps", 0, "maximum lookups per second, 0 for no limit")
	cmd.Flags().BoolVar(&store, "store", false, "record results in Postgres (DB_* env vars)")
	return cmd
}

type batchLine struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func openStore(ctx context.Context, logger *zap.Logger) (*postgres.DB, error) {
	dbCfg, err := postgres.NewConfig()
	if err != nil {
		return nil, err
	}
	db, err := postgres.New(ctx, dbCfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// print writes data as indented JSON. An API error still prints the body
// before the error is returned.
func (a *app) print(data any, err error) error {
	if data != nil {
		b, mErr := json.MarshalIndent(data, "", "  ")
		if mErr != nil {
			return mErr
		}
		fmt.Fprintln(a.out, string(b))
	}
	return err
}
