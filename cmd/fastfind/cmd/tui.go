package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/fastfind/internal/ui"
)

func newTUICmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "tui [root]",
		Short: "Browse matches interactively",
		Long: `Run a search and browse the matches in a two-pane terminal viewer.

The left pane lists matches, the right pane shows the selected match with the
lines before and after it.

Keys:
  up/k, down/j     move the selection (down wraps to the top)
  pgup, pgdown     move a page
  /                edit the content pattern, enter to search, esc to cancel
  enter            run the search again
  q, ctrl+c        quit`,
		Example: `  fastfind tui ./src -n '\.go$' -c 'context\.Context'`,
		Args:    maxOneRoot,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, cfg, err := opts.resolve(cmd, rootArg(args))
			if err != nil {
				return err
			}
			return ui.Run(cmd.Context(), ui.Config{
				Request:        req,
				NamePattern:    opts.name,
				ContentPattern: opts.content,
				IgnoreCase:     cfg.Search.IgnoreCase,
				NoColor:        cfg.Output.Color == "never",
			})
		},
	}

	opts.register(cmd, false)
	return cmd
}
