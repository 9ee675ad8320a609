package cli

import "github.com/spf13/cobra"

// completionCommand prints shell completion for wiring, including the
// harness file argument of render, check and inspect.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wiring.

Harness arguments complete to .yaml and .yml files.

To load completions:

Bash:
  $ source <(wiring completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ wiring completion bash > /etc/bash_completion.d/wiring
  # macOS:
  $ wiring completion bash > $(brew --prefix)/etc/bash_completion.d/wiring

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ wiring completion zsh > "${fpath[1]}/_wiring"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ wiring completion fish | source

  # To load completions for each session, execute once:
  $ wiring completion fish > ~/.config/fish/completions/wiring.fish

PowerShell:
  PS> wiring completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> wiring completion powershell > wiring.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeHarness completes the single harness argument to YAML files.
func completeHarness(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}
