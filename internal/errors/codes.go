// Package errors provides centralized error code definitions for the
// effect-inference engine. All error codes follow a consistent taxonomy so
// an orchestrator can present them as structured, AI- and tool-friendly
// diagnostics rather than opaque strings (grounded on the teacher's
// internal/errors/codes.go taxonomy, renumbered to this engine's own
// phases).
package errors

// Error code constants organized by phase. Each constant represents a
// specific error condition from spec.md §7.
const (
	// ============================================================================
	// Unification errors (UNI###)
	// ============================================================================

	// UNI001 indicates two structurally incompatible types (cannot_unify).
	UNI001 = "UNI001"

	// UNI002 indicates two structurally incompatible unions
	// (cannot_unify_unions).
	UNI002 = "UNI002"

	// UNI003 indicates an occurs-check failure (occurs_check_failed).
	UNI003 = "UNI003"

	// UNI004 indicates a forall arity mismatch during scheme unification.
	UNI004 = "UNI004"

	// ============================================================================
	// Row / effect unification errors (ROW###)
	// ============================================================================

	// ROW001 indicates a non-empty row was unified against the empty row
	// (cannot_unify_non_empty_with_empty).
	ROW001 = "ROW001"

	// ROW002 indicates two closed rows disagree on their label sets
	// (incompatible_effect_rows).
	ROW002 = "ROW002"

	// ROW003 indicates two different row variables were forced to the same
	// closed extension in a way that cannot be reconciled.
	ROW003 = "ROW003"

	// ============================================================================
	// Registry errors (REG###)
	// ============================================================================

	// REG001 indicates a lookup miss for a callable the registry has never
	// heard of (registry_miss); this becomes `unknown` in the enclosing
	// effect, it is not fatal.
	REG001 = "REG001"

	// REG002 indicates a malformed registry seed/override document.
	REG002 = "REG002"

	// REG003 indicates a resolution chain that does not terminate within
	// the configured depth bound.
	REG003 = "REG003"

	// ============================================================================
	// Protocol resolution errors (RES###)
	// ============================================================================

	// RES001 indicates a dispatch site whose receiver type could not be
	// narrowed; the site's effect becomes `unknown`, not fatal.
	RES001 = "RES001"

	// ============================================================================
	// Inference / walker errors (INF###)
	// ============================================================================

	// INF001 indicates an unbound identifier (unknown_identifier); this is
	// recovered locally by treating it as a fresh, unknown-effect variable.
	INF001 = "INF001"

	// INF002 indicates a local type error attached to an AST node that did
	// not abort the surrounding analysis.
	INF002 = "INF002"

	// ============================================================================
	// Fix-point driver errors (FIX###)
	// ============================================================================

	// FIX001 indicates an SCC failed to stabilize within the guaranteed
	// iteration bound (members * 7); this should never happen given the
	// finite severity lattice and signals an engine bug, not a user error.
	FIX001 = "FIX001"
)
