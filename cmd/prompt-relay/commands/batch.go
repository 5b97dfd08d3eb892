package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kitbuilder587/prompt-relay/internal/app"
	"github.com/kitbuilder587/prompt-relay/internal/domain"
)

const maxPromptLine = 1024 * 1024

// NewBatchCmd creates the batch command
func NewBatchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Send prompts one per line, in order",
		Long:  "Read prompts one per non-empty line from stdin (or --file) and send them in order through a single relay, so the request spacing applies between them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open prompts file: %w", err)
				}
				defer f.Close()
				in = f
			}

			prompts, err := readPrompts(in)
			if err != nil {
				return err
			}
			if len(prompts) == 0 {
				return errEmptyPrompt
			}

			return runWithApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return sendAll(ctx, a, prompts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one prompt per line (default stdin)")

	return cmd
}

func readPrompts(in io.Reader) ([]string, error) {
	var prompts []string

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxPromptLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		prompts = append(prompts, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}

	return prompts, nil
}

func sendAll(ctx context.Context, a *app.App, prompts []string, out, errOut io.Writer) error {
	failed, written := 0, 0
	for i, prompt := range prompts {
		text, err := a.Relay.Send(ctx, prompt)
		if err != nil {
			// без ключа или после отмены дальше слать бессмысленно
			if errors.Is(err, domain.ErrConfiguration) || ctx.Err() != nil {
				return err
			}
			failed++
			fmt.Fprintf(errOut, "prompt %d: %v\n", i+1, err)
			a.Logger.Warn("batch prompt failed", zap.Int("index", i+1), zap.Error(err))
			continue
		}

		if written > 0 {
			fmt.Fprintln(out, "---")
		}
		fmt.Fprintln(out, text)
		written++
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d prompts failed", failed, len(prompts))
	}
	return nil
}
