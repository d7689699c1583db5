// Package template expands cq command templates into literal command lines.
//
// A template is plain text containing placeholder tokens:
//
//	{name}     replaced by the bound value for name
//	{Q:name}   same, but wrapped in double quotes when the value contains a space
//
// Token names are trimmed and matched case-insensitively after alias
// normalization, so {COM1}, {comport1} and { ComPort1 } all resolve to the
// canonical name "comport1". A token that has no binding is left in the
// output exactly as written, which makes a missing value visible in the
// command preview instead of silently dropping it.
//
// Multi-line template bodies are split into queue items, one per runnable
// line. Blank lines and comment lines (#, //, ::, REM) are skipped, and a
// line written as "description = command" carries a human-readable label.
package template
