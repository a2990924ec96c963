package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/quoteclient"
	"github.com/spf13/cobra"
)

const defaultEndpoint = "http://localhost:8080/api/v1/quote"

func newSubmitCmd() *cobra.Command {
	var (
		file     string
		endpoint string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate a quote request and post it to the quote API",
		Long: `Validate a quote request locally and, when it passes, post it once to the
quote API. Failed submissions are not retried.

The endpoint defaults to $QUOTE_API_ENDPOINT, then ` + defaultEndpoint + `.`,
		Example: `  quotectl submit -f request.json
  quotectl submit -f request.json --endpoint https://api.anthonyhasrouny.com/api/v1/quote`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if endpoint == "" {
				endpoint = os.Getenv("QUOTE_API_ENDPOINT")
			}
			if endpoint == "" {
				endpoint = defaultEndpoint
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			err = quoteclient.New(endpoint).Submit(ctx, req)
			switch {
			case err == nil:
				fmt.Fprintln(cmd.OutOrStdout(), "Quote request sent. Expect a reply within 24 hours.")
				return nil
			case domain.IsValidation(err):
				printFieldErrors(cmd.ErrOrStderr(), err)
				return errInvalidRequest
			}

			if serr, ok := quoteclient.IsSubmitError(err); ok {
				for _, f := range serr.Fields {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Field, f.Message)
				}
				return fmt.Errorf("%s (HTTP %d)", serr.Message, serr.Status)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a JSON quote request (- for stdin)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Quote API endpoint URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall request timeout")
	return cmd
}
