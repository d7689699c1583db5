package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/lock"
	"github.com/rileyhilliard/cq/internal/store"
	"github.com/rileyhilliard/cq/internal/ui"
)

// unlockCmd removes store locks left behind by a crashed cq process.
var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Release stuck store locks",
	Long: `Writes to the template, preset and sequence directories hold a lock so
two cq processes never interleave. A process killed mid-write can leave its
lock behind; stale locks expire on their own after a couple of minutes, and
this command removes them right away.

Only use this when no other cq process is running.`,
	Args: cobra.NoArgs,
	RunE: runUnlock,
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}

func runUnlock(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var released []string
	for _, sub := range []string{store.TemplatesDir, store.PresetsDir, store.SequencesDir} {
		dir := filepath.Join(a.store.Dir, sub)
		if _, err := os.Stat(lock.Path(dir)); err != nil {
			continue
		}
		holder := lock.Holder(dir)
		if err := lock.ForceRelease(dir); err != nil {
			return err
		}
		released = append(released, sub)
		if !machineMode {
			fmt.Fprintf(out, "%s Released %s lock %s\n",
				ui.SuccessStyle().Render(ui.SymbolSuccess), sub,
				ui.MutedStyle().Render("(held by "+holder+")"))
		}
	}

	if machineMode {
		if released == nil {
			released = []string{}
		}
		return WriteJSONSuccess(out, map[string]any{"released": released})
	}
	if len(released) == 0 {
		fmt.Fprintln(out, "No locks held.")
	}
	return nil
}
