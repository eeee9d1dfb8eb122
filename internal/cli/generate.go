package cli

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simone-trubian/medscribe/internal/core/domain"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		note      string
		file      string
		mediaType string
		raw       bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Send one note to the model and print the interpreted result",
		Example: `  medscribe generate --note "Pt 54M c/o CP x2h, BP 150/95"
  medscribe generate --file visit.pdf
  medscribe --config dev.toml generate --file note.txt --raw`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := domain.NoteInput{TypedText: note}
			if file != "" {
				up, err := readUpload(file, mediaType, a.cfg.Intake.MaxUploadBytes)
				if err != nil {
					return err
				}
				input.Upload = up
			}

			svc, err := a.noteService()
			if err != nil {
				return err
			}

			gen, err := svc.Generate(cmd.Context(), input)
			if err != nil {
				var ierr *domain.InputError
				if errors.As(err, &ierr) {
					return ierr
				}
				return fmt.Errorf("generate (request %s): %w", gen.RequestID, err)
			}

			if raw {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), gen.Completion.RawText)
				return err
			}
			return renderOutcome(cmd.OutOrStdout(), gen.Outcome)
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "note text")
	cmd.Flags().StringVar(&file, "file", "", "note file (.txt or .pdf); takes precedence over --note")
	cmd.Flags().StringVar(&mediaType, "media-type", "", "media type of --file (default: from extension)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw completion instead of the interpreted view")
	return cmd
}

func readUpload(path, mediaType string, maxBytes int64) (*domain.Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, &domain.InputError{Kind: domain.InputTooLarge}
	}

	if mediaType == "" {
		mediaType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}
	return &domain.Upload{
		Filename:  filepath.Base(path),
		MediaType: mediaType,
		Data:      data,
	}, nil
}
