package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/anthonyhasrouny/portfolio/pkg/cache"
	"github.com/anthonyhasrouny/portfolio/pkg/ratelimit"
	"github.com/spf13/cobra"
)

func newLimitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Manage the shared quote rate limit store (redis backend)",
	}
	cmd.AddCommand(newLimitsResetCmd())
	return cmd
}

func newLimitsResetCmd() *cobra.Command {
	var (
		redisURL string
		client   string
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear quote rate limit windows",
		Long: `Clear quote rate limit windows stored in redis. With --client only that
caller's window is removed; otherwise every window is removed.

The redis URL defaults to $REDIS_URL.`,
		Example: `  quotectl limits reset --redis-url redis://localhost:6379/0
  quotectl limits reset --client 203.0.113.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if redisURL == "" {
				redisURL = os.Getenv("REDIS_URL")
			}
			if redisURL == "" {
				return errors.New("--redis-url or REDIS_URL is required")
			}

			rc, err := cache.NewClient(cmd.Context(), redisURL)
			if err != nil {
				return err
			}
			defer rc.Close()

			var removed int
			if client != "" {
				// Identities are raw header values and may contain glob characters.
				removed, err = rc.Delete(cmd.Context(), ratelimit.KeyPrefix+client)
			} else {
				removed, err = rc.DeletePattern(cmd.Context(), ratelimit.KeyPrefix+"*")
			}
			if err != nil {
				return fmt.Errorf("reset rate limits: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d rate limit window(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL of the shared rate limit store")
	cmd.Flags().StringVar(&client, "client", "", "Only reset this caller (first X-Forwarded-For hop)")
	return cmd
}
