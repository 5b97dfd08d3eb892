package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/prompt-relay/internal/app"
)

var errEmptyPrompt = errors.New("prompt is empty")

// NewSendCmd creates the send command
func NewSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [prompt...]",
		Short: "Send one prompt and print the completion",
		Long:  "Send one prompt and print the completion. Arguments are joined with spaces; with no arguments the prompt is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			return runWithApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				text, err := a.Relay.Send(ctx, prompt)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			})
		},
	}

	return cmd
}

func readPrompt(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		prompt := strings.Join(args, " ")
		if strings.TrimSpace(prompt) == "" {
			return "", errEmptyPrompt
		}
		return prompt, nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errEmptyPrompt
	}
	return prompt, nil
}
