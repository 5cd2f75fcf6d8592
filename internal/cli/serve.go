package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/storefront/internal/app"
)

func serveCmd() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and message consumers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application := app.New()
			wait := application.Start()
			<-wait

			ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), shutdownTimeout)
			defer cancel()
			application.Stop(ctx)

			return nil
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown deadline")

	return cmd
}
