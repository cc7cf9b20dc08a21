// Package repl implements an interactive explorer over the effect
// registry: look up the compact effect of an MFA, walk its resolution
// chain, and load override documents at runtime. Grounded on the
// teacher's internal/repl/repl.go nearly file-for-file — same liner
// line editor, color-coded prompt, and ":command" dispatch table — but
// repurposed to query effect_of/resolve_to_leaves instead of evaluating
// AILANG source, since this engine has no evaluator (spec.md §1, out of
// scope).
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sunholo/effectlang/internal/config"
	"github.com/sunholo/effectlang/internal/registry"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL is a read-eval-print loop over a single registry instance.
type REPL struct {
	reg      *registry.Registry
	history  []string
	version  string
	lastFile string
}

// New creates a REPL backed by a registry seeded with the built-in table.
func New() *REPL {
	return NewWithVersion("")
}

// NewWithVersion creates a REPL, stamping the welcome banner with version.
func NewWithVersion(version string) *REPL {
	if version == "" {
		version = "dev"
	}
	return &REPL{reg: registry.NewWithBuiltins(), version: version}
}

// Start runs the loop until EOF or :quit.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".effectinfer_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("effectinfer"), bold(r.version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(input string) (c []string) {
		if strings.HasPrefix(input, ":") {
			for _, cmd := range []string{":help", ":quit", ":effect", ":resolve", ":load", ":history", ":clear"} {
				if strings.HasPrefix(cmd, input) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	for {
		input, err := line.Prompt("effect> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if r.handleCommand(input, out) {
				break
			}
			continue
		}

		// Bare input outside ":commands" is shorthand for the REPL's
		// single most common query, ":effect <input>".
		r.cmdEffect(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand dispatches a ":"-prefixed line; returns true to stop the loop.
func (r *REPL) handleCommand(input string, out io.Writer) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case ":help", ":h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :help, :h              Show this help")
		fmt.Fprintln(out, "  :quit, :q              Exit")
		fmt.Fprintln(out, "  :effect <Mod.fun/ar>   Show the registry's compact effect for an MFA")
		fmt.Fprintln(out, "  :resolve <Mod.fun/ar>  Walk the resolution chain to its leaves")
		fmt.Fprintln(out, "  :load <file>           Merge a JSON/YAML override document")
		fmt.Fprintln(out, "  :history               Show command history")
		fmt.Fprintln(out, "  :clear                 Clear the screen")

	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true

	case ":effect":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :effect <Module.function/arity>")
			return false
		}
		r.cmdEffect(parts[1], out)

	case ":resolve":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :resolve <Module.function/arity>")
			return false
		}
		r.cmdResolve(parts[1], out)

	case ":load":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :load <file>")
			return false
		}
		r.cmdLoad(parts[1], out)

	case ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "  %d  %s\n", i+1, h)
		}

	case ":clear":
		fmt.Fprint(out, "\033[H\033[2J")

	default:
		fmt.Fprintf(out, "%s: unknown command '%s'\n", red("Error"), parts[0])
		fmt.Fprintln(out, "Type :help for help")
	}
	return false
}

func (r *REPL) cmdEffect(key string, out io.Writer) {
	mfa, err := config.ParseMFA(key)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	c, ok := r.reg.EffectOf(mfa)
	if !ok {
		fmt.Fprintf(out, "%s %s\n", yellow("registry_miss →"), c.Category)
		return
	}
	fmt.Fprintf(out, "%s : %s%v\n", cyan(mfa.String()), c.Category, c.Payloads)
}

func (r *REPL) cmdResolve(key string, out io.Writer) {
	mfa, err := config.ParseMFA(key)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	leaves, ok := r.reg.ResolveToLeaves(mfa)
	if !ok {
		fmt.Fprintf(out, "%s resolution chain for %s cycles, no leaves\n", red("Error"), mfa)
		return
	}
	names := make([]string, len(leaves))
	for i, l := range leaves {
		names[i] = l.String()
	}
	fmt.Fprintf(out, "%s → %s\n", cyan(mfa.String()), strings.Join(names, ", "))
}

func (r *REPL) cmdLoad(path string, out io.Writer) {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "%s: cannot read file '%s': %v\n", red("Error"), path, err)
		return
	}

	var merged int
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		e, err := config.LoadYAML(b)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		r.reg.Merge(e)
		merged = len(e)
	default:
		e, err := config.LoadJSON(b)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		r.reg.Merge(e)
		merged = len(e)
	}

	r.lastFile = path
	fmt.Fprintf(out, "%s loaded %d override(s) from %s\n", green("✓"), merged, path)
}
