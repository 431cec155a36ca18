package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/config"
	"github.com/FelipeCgrillo/liquidapp/internal/database/redis"
	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/wizard"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type uploadOptions struct {
	claimID     string
	mode        string
	concurrency int
	wait        time.Duration
	latitude    float64
	longitude   float64
	hasLocation bool
}

func uploadCmd() *cobra.Command {
	opts := uploadOptions{}
	cmd := &cobra.Command{
		Use:   "subir [vista=]archivo...",
		Short: "Upload claim photos and follow their analysis",
		Long: `Upload one or more photos for a claim. Each argument is either a file path or
vista=path, where vista is the view the photo covers (frontal, lateral_derecho,
trasera, lateral_izquierdo). Without a view the file name is used.

In sync mode every upload waits for its analysis. In queued mode analyses run on
the server and results arrive over Redis.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasLocation = cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon")
			return runUpload(cmd.Context(), cmd.OutOrStdout(), opts, args, followClaim)
		},
	}

	cmd.Flags().StringVar(&opts.claimID, "siniestro", "", "claim id (required)")
	cmd.Flags().StringVar(&opts.mode, "modo", string(models.DeliverySync), "analysis delivery: sync or queued")
	cmd.Flags().IntVar(&opts.concurrency, "concurrencia", 2, "uploads in flight at once")
	cmd.Flags().DurationVar(&opts.wait, "espera", 3*time.Minute, "how long to wait for queued analyses")
	cmd.Flags().Float64Var(&opts.latitude, "lat", 0, "capture latitude")
	cmd.Flags().Float64Var(&opts.longitude, "lon", 0, "capture longitude")
	_ = cmd.MarkFlagRequired("siniestro")

	return cmd
}

func parseCaptureArg(arg string) (tag, path string) {
	if before, after, ok := strings.Cut(arg, "="); ok && before != "" && after != "" {
		return before, after
	}
	base := filepath.Base(arg)
	return strings.TrimSuffix(base, filepath.Ext(base)), arg
}

// eventFollower forwards realtime analysis events of a claim into updates
// until ctx ends.
type eventFollower func(ctx context.Context, claimID uuid.UUID, updates chan<- wizard.Update) error

func runUpload(ctx context.Context, out io.Writer, opts uploadOptions, args []string, follow eventFollower) error {
	claimID, err := uuid.Parse(opts.claimID)
	if err != nil {
		return fmt.Errorf("invalid claim id %q: %w", opts.claimID, err)
	}
	mode := models.DeliveryMode(opts.mode)
	if mode != models.DeliverySync && mode != models.DeliveryQueued {
		return fmt.Errorf("unknown mode %q, expected sync or queued", opts.mode)
	}

	backend := wizard.NewHTTPBackend(viper.GetString("api-url"), viper.GetDuration("timeout"))
	machine := wizard.NewStateMachine()

	updates := make(chan wizard.Update)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		_ = machine.Run(runCtx, updates)
	}()

	if mode == models.DeliveryQueued {
		if err := follow(runCtx, claimID, updates); err != nil {
			slog.Warn("Realtime analysis events unavailable, queued results will not arrive", "error", err)
		}
	}

	dispatcher := wizard.NewDispatcher(runCtx, backend, func(evidenceID uuid.UUID, err error) {
		slog.Warn("Queued analysis request failed", "evidencia_id", evidenceID, "error", err)
		machine.ApplyAnalysis(evidenceID, wizard.NoResult())
	})
	session := &wizard.Session{
		ClaimID:     claimID,
		Mode:        mode,
		Coordinator: wizard.NewCoordinator(backend, backend, backend, backend, dispatcher),
		Machine:     machine,
	}

	var location *models.Geolocation
	if opts.hasLocation {
		location = &models.Geolocation{Latitude: opts.latitude, Longitude: opts.longitude}
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(max(opts.concurrency, 1))
	for i, arg := range args {
		tag, path := parseCaptureArg(arg)
		order := i + 1
		g.Go(func() error {
			// one failed photo does not stop the others
			data, err := os.ReadFile(path)
			if err != nil {
				slog.Error("Cannot read capture", "file", path, "error", err)
				return nil
			}
			localID, err := session.Submit(gctx, wizard.Capture{
				Tag:         tag,
				PreviewRef:  path,
				FileName:    filepath.Base(path),
				Data:        data,
				Geolocation: location,
				CapturedAt:  time.Now(),
			}, order)
			if err != nil {
				slog.Error("Upload failed", "file", path, "local_id", localID, "error", err)
				return nil
			}
			slog.Info("Uploaded", "file", path, "vista", tag)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if mode == models.DeliveryQueued {
		waitSettled(runCtx, machine, opts.wait)
	}
	dispatcher.Wait()

	printItems(out, machine)
	return nil
}

func followClaim(ctx context.Context, claimID uuid.UUID, updates chan<- wizard.Update) error {
	client, err := redis.NewRedisClient(config.RedisConfig{
		Host:     viper.GetString("redis-host"),
		Port:     viper.GetString("redis-port"),
		Password: viper.GetString("redis-password"),
	}, "campo")
	if err != nil {
		return err
	}

	events, err := client.Subscriber().Subscribe(ctx, claimID)
	if err != nil {
		client.Close()
		return err
	}

	go func() {
		defer client.Close()
		for evt := range events {
			select {
			case updates <- wizard.UpdateFromEvent(evt):
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func waitSettled(ctx context.Context, machine *wizard.StateMachine, limit time.Duration) {
	deadline := time.NewTimer(limit)
	defer deadline.Stop()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for machine.Unsettled() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			slog.Warn("Stopped waiting for analyses", "pendientes", machine.Unsettled())
			return
		case <-ticker.C:
		}
	}
}

func printItems(out io.Writer, machine *wizard.StateMachine) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VISTA\tEVIDENCIA\tESTADO\tSEVERIDAD\tFRAUDE")
	for _, item := range machine.Items() {
		evidenceID := "-"
		if item.Evidence != nil {
			evidenceID = item.Evidence.ID.String()
		}
		severity, fraud := "-", "-"
		if result, ok := item.Analysis.Result(); ok {
			severity = string(result.Severity)
			fraud = fmt.Sprintf("%s (%.2f)", result.FraudLevel, result.FraudScore)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", item.Tag, evidenceID, item.Status(), severity, fraud)
	}
	_ = w.Flush()

	if machine.CanAdvance(wizard.RequiredViews) {
		fmt.Fprintln(out, "Las cuatro vistas requeridas están analizadas.")
	} else {
		fmt.Fprintf(out, "Faltan vistas con análisis resuelto: %s\n", strings.Join(wizard.RequiredViews, ", "))
	}
}
