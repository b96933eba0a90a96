package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxnote/voxnote/internal/model"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Conversion history commands",
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryLogCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the signed-in account's conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Accounts.RequireSession()
			if err != nil {
				return err
			}

			records, err := app.History.List(cmd.Context(), session.EmailKey)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(records)
			return nil
		},
	}
}

func newHistoryLogCmd() *cobra.Command {
	var kind, text, lang string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a conversion for the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Accounts.RequireSession()
			if err != nil {
				return err
			}

			conversionKind, err := parseKind(kind)
			if err != nil {
				return err
			}

			record, err := app.History.Append(cmd.Context(), session.EmailKey, conversionKind, text, lang)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(record)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Conversion kind: stt, tts (required)")
	cmd.Flags().StringVar(&text, "text", "", "Converted text (required)")
	cmd.Flags().StringVar(&lang, "lang", "", "Language tag, e.g. en-US")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func parseKind(kind string) (model.ConversionKind, error) {
	switch kind {
	case "stt", string(model.KindSpeechToText):
		return model.KindSpeechToText, nil
	case "tts", string(model.KindTextToSpeech):
		return model.KindTextToSpeech, nil
	default:
		return "", fmt.Errorf("unknown conversion kind %q: use stt or tts", kind)
	}
}
