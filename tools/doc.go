// Package tools provides the builtin tool set for the runtime: Read,
// Write, Edit, Bash, Glob, Grep, and ExitPlanMode. Each tool declares
// its capability kind and reports the filesystem paths a call touches;
// mutating tools additionally build a confirmation preview for the
// operator.
package tools
