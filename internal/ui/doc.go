// Package ui renders cq's terminal output: streamed command events, queue
// summaries, list tables and interactive prompts.
//
// Colors are plain ANSI codes styled with Lip Gloss. SetColorMode picks the
// profile from the output.color setting; "never" (or --no-color) switches
// every style to plain text.
//
//	r := ui.NewRenderer(os.Stdout, os.Stderr, ui.RenderOptions{Timestamps: true})
//	result, err := runner.RunQueue(ctx, items, opts, r)
//	if err != nil {
//		log.Debug("queue ended early: %v", err)
//	}
//	fmt.Print(ui.RenderQueueSummary(result, len(items)))
package ui
