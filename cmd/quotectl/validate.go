package main

import (
	"errors"
	"fmt"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/quoteclient"
	"github.com/spf13/cobra"
)

var errInvalidRequest = errors.New("quote request is invalid")

func newValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a quote request file without sending it",
		Example: `  quotectl validate -f request.json
  cat request.json | quotectl validate -f -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if _, err := quoteclient.New("").Validate(req); err != nil {
				if domain.IsValidation(err) {
					printFieldErrors(cmd.ErrOrStderr(), err)
					return errInvalidRequest
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Quote request is valid")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a JSON quote request (- for stdin)")
	return cmd
}
