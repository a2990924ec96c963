package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/models"
)

// readRequest decodes a quote request from path, or stdin when path is "-".
func readRequest(path string, stdin io.Reader) (models.QuoteRequest, error) {
	var req models.QuoteRequest
	if path == "" {
		return req, errors.New("a request file is required (-f request.json, or -f - for stdin)")
	}

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request %s: %w", path, err)
	}
	return req, nil
}

// printFieldErrors lists each failing field under the summary message.
func printFieldErrors(w io.Writer, err error) {
	fmt.Fprintln(w, domain.MessageOf(err))
	for _, f := range domain.FieldsOf(err) {
		fmt.Fprintf(w, "  %s: %s\n", f.Field, f.Message)
	}
}
