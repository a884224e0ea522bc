package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jean-pierre/jpc/internal/config"
	"github.com/jean-pierre/jpc/internal/llm"
	"github.com/jean-pierre/jpc/internal/snapshot"
)

const (
	chatMaxFiles    = 10
	chatMaxBytes    = 256_000
	chatPromptChars = 2000
	chatMaxTokens   = 2048
)

var chatRaw bool

var chatCmd = &cobra.Command{
	Use:   "chat <prompt>",
	Short: "Ask the remote model a question about the project",
	Long: `Send a prompt with a short project context to the remote model.

Without remote_endpoint configured the prompt is echoed back.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")

		s, err := loadSession()
		if err != nil {
			return err
		}

		snap, err := snapshot.Gather(snapshot.Options{
			Dir:      s.cfg.ProjectRoot,
			MaxFiles: chatMaxFiles,
			MaxBytes: chatMaxBytes,
		})
		if err != nil {
			return err
		}

		content := fmt.Sprintf("User: %s\n\nContext (truncated): %s", prompt, snapshot.RenderForPrompt(snap, chatPromptChars))

		remote := llm.NewRemote(s.cfg.RemoteEndpoint, config.ResolveAPIKey(s.cfg), s.cfg.Model)

		ctx, cancel := interruptContext()
		defer cancel()

		response, err := remote.Generate(ctx, content, chatMaxTokens)
		if err != nil {
			return err
		}

		if chatRaw {
			fmt.Fprintln(cmd.OutOrStdout(), response)
			return nil
		}
		newDisplay(cmd).Markdown(response)
		return nil
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatRaw, "raw", false, "print the response without markdown rendering")
	rootCmd.AddCommand(chatCmd)
}
