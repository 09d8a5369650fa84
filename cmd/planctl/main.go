// Command planctl answers fulfillment questions from the command line, either
// against the configured Postgres store or offline from a seed file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/config"
	"bakery-fulfillment/internal/db"
	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/planner"
	"bakery-fulfillment/internal/registry"
	"bakery-fulfillment/internal/seed"
	"bakery-fulfillment/internal/service/fulfillment"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	source   string
	seedFile string
	at       string
	timezone string
	rollover string
	product  string
	subtotal int64
}

func main() {
	if err := newRootCmd(config.FromEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "planctl",
		Short:        "Plan bakery deliveries and pickups",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.source, "source", "seed", "Configuration source: seed or postgres")
	root.PersistentFlags().StringVar(&opts.seedFile, "seed-file", "", "Bakery YAML for --source=seed (defaults to the built-in demo bakery)")
	root.PersistentFlags().StringVar(&opts.at, "at", "", "Order instant in RFC3339 (defaults to now)")
	root.PersistentFlags().StringVar(&opts.timezone, "timezone", cfg.BusinessTimezone, "Business timezone")
	root.PersistentFlags().StringVar(&opts.rollover, "rollover", cfg.CutoffRollover, "Cutoff rollover policy: always or same-week")

	deliveryCmd := &cobra.Command{
		Use:   "delivery [product-id]",
		Short: "Earliest delivery for one product",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var productID string
			if len(args) == 1 {
				productID = args[0]
			}
			return run(cmd, cfg, opts, func(ctx context.Context, svc *fulfillment.Service, at time.Time) (any, error) {
				return svc.NextDeliveryDate(ctx, productID, at)
			})
		},
	}

	cartCmd := &cobra.Command{
		Use:   "cart product-id[:quantity]...",
		Short: "Delivery date for a whole cart",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseItems(args)
			if err != nil {
				return err
			}
			return run(cmd, cfg, opts, func(ctx context.Context, svc *fulfillment.Service, at time.Time) (any, error) {
				return svc.GetCartDeliveryDate(ctx, items, at)
			})
		},
	}

	pickupCmd := &cobra.Command{
		Use:   "pickup location-id",
		Short: "Earliest pickup at one location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, opts, func(ctx context.Context, svc *fulfillment.Service, at time.Time) (any, error) {
				return svc.NextPickupDate(ctx, args[0], opts.product, at)
			})
		},
	}
	pickupCmd.Flags().StringVar(&opts.product, "product", "", "Product whose rule applies")

	locationsCmd := &cobra.Command{
		Use:   "locations [product-id[:quantity]...]",
		Short: "Pickup locations able to serve a cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseItems(args)
			if err != nil {
				return err
			}
			return run(cmd, cfg, opts, func(ctx context.Context, svc *fulfillment.Service, at time.Time) (any, error) {
				return svc.GetAvailablePickupLocations(ctx, items, at)
			})
		},
	}

	zoneCmd := &cobra.Command{
		Use:   "zone zip",
		Short: "Delivery zone serving a ZIP code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, opts, func(ctx context.Context, svc *fulfillment.Service, _ time.Time) (any, error) {
				return svc.ResolveZone(ctx, args[0])
			})
		},
	}

	feeCmd := &cobra.Command{
		Use:   "fee zip",
		Short: "Delivery fee quote for a ZIP code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, opts, func(ctx context.Context, svc *fulfillment.Service, _ time.Time) (any, error) {
				return svc.CalculateDeliveryFee(ctx, args[0], opts.subtotal)
			})
		},
	}
	feeCmd.Flags().Int64Var(&opts.subtotal, "subtotal", 0, "Order subtotal in cents")

	root.AddCommand(deliveryCmd, cartCmd, pickupCmd, locationsCmd, zoneCmd, feeCmd)
	return root
}

type query func(ctx context.Context, svc *fulfillment.Service, at time.Time) (any, error)

func run(cmd *cobra.Command, cfg config.Config, opts *options, q query) error {
	ctx := cmd.Context()
	logger := cfg.Logger("planctl").Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})

	clock, err := businesstime.New(opts.timezone)
	if err != nil {
		return err
	}
	rollover, err := planner.ParseRolloverPolicy(opts.rollover)
	if err != nil {
		return err
	}
	var at time.Time
	if opts.at != "" {
		if at, err = time.Parse(time.RFC3339, opts.at); err != nil {
			return fmt.Errorf("%w: at must be RFC3339: %v", domain.ErrInvalidInput, err)
		}
	}

	src, closeFn, err := openSource(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	svc := fulfillment.New(src, planner.New(clock, planner.WithRollover(rollover)), nil, logger)
	out, err := q(ctx, svc, at)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func openSource(ctx context.Context, cfg config.Config, opts *options, logger zerolog.Logger) (registry.Source, func(), error) {
	switch opts.source {
	case "seed":
		data, err := loadSeed(opts.seedFile)
		if err != nil {
			return nil, nil, err
		}
		return &registry.Static{
			Schedules:       data.Schedules,
			PickupLocations: data.PickupLocations,
			Closures:        data.Closures,
			ProductRules:    data.ProductRules,
			Zones:           data.Zones,
			FeeRules:        data.FeeRules,
		}, func() {}, nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			return nil, nil, err
		}
		return registry.NewPostgres(pool, logger), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, opts.source)
}

func loadSeed(path string) (seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return seed.Data{}, err
	}
	defer f.Close()
	return seed.Load(f)
}

// parseItems reads `product` or `product:quantity` arguments.
func parseItems(args []string) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0, len(args))
	for _, arg := range args {
		id, qty, found := strings.Cut(arg, ":")
		item := domain.CartItem{ProductID: id, Quantity: 1}
		if found {
			n, err := strconv.Atoi(qty)
			if err != nil {
				return nil, fmt.Errorf("%w: quantity %q for %s", domain.ErrInvalidInput, qty, id)
			}
			item.Quantity = n
		}
		items = append(items, item)
	}
	return items, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
