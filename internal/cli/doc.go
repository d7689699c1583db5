// Package cli implements the cq command-line interface.
//
// Commands are Cobra commands registered on rootCmd from init functions.
// Every command that touches templates or runs anything first calls loadApp,
// which reads the config (flag, project file, global file, then defaults
// with CQ_* environment overrides), validates it, applies the color mode and
// opens the store.
//
//	cq run <template>          - Expand a template and run its queue
//	cq exec <command>          - Expand and run one command line
//	cq expand <template>       - Preview a template with bindings applied
//	cq tokens <template>       - List the tokens a template uses
//	cq template ...            - Manage saved templates
//	cq preset ...              - Manage saved binding sets
//	cq sequence ...            - Manage and run ordered template lists
//	cq logs [clean]            - List or prune daily session logs
//	cq which <program>         - Locate a program the way runs see it
//	cq init / cq config set    - Create and edit config files
//
// Global flags (--config, --no-color, --verbose, --json) are defined on the
// root command. Run flags (--preset, --set, --wd, ...) are shared by run,
// exec and sequence run through RunFlags.
package cli
