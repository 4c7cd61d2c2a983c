package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for modkit.

To load completions:

Bash:
  $ source <(modkit completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ modkit completion bash > /etc/bash_completion.d/modkit
  # macOS:
  $ modkit completion bash > $(brew --prefix)/etc/bash_completion.d/modkit

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ modkit completion zsh > "${fpath[1]}/_modkit"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ modkit completion fish | source

  # To load completions for each session, execute once:
  $ modkit completion fish > ~/.config/fish/completions/modkit.fish

PowerShell:
  PS> modkit completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> modkit completion powershell > modkit.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}
