// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node of the CLI tree. A node is either a group that
// dispatches to Subcommands (the root) or a leaf that parses flags and
// calls Run; kivinge's tree is the root plus one level of leaves.
type Command struct {
	// Name is the command name as typed by the user (e.g., "mount").
	Name string

	// Summary is the one-line description shown in the root's command
	// listing.
	Summary string

	// Description is shown at the top of the command's own help output.
	// Falls back to Summary when empty.
	Description string

	// Usage overrides the synthesized usage line (e.g.,
	// "kivinge download <id> <attachment> [directory] [flags]").
	Usage string

	// Examples are rendered at the end of the help output.
	Examples []Example

	// Flags builds the command's flag set. Called fresh each time one
	// is needed, so parse state never leaks between uses. Nil means the
	// command takes no flags.
	Flags func() *pflag.FlagSet

	// Subcommands makes this node a dispatching group.
	Subcommands []*Command

	// Run executes a leaf command with the positional args left after
	// flag parsing.
	Run func(args []string) error

	// parent is set during dispatch so help can print the full path.
	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute runs the command: help flags short-circuit, groups dispatch
// on the first positional arg, leaves parse flags and call Run.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}
	if len(c.Subcommands) > 0 {
		return c.dispatch(args)
	}
	return c.runLeaf(args)
}

// dispatch routes to the named subcommand, suggesting the closest name
// when nothing matches.
func (c *Command) dispatch(args []string) error {
	if len(args) == 0 {
		c.PrintHelp(os.Stderr)
		return fmt.Errorf("subcommand required")
	}
	name := args[0]
	if strings.HasPrefix(name, "-") {
		c.PrintHelp(os.Stderr)
		return fmt.Errorf("subcommand required (got flag %q)", name)
	}

	for _, sub := range c.Subcommands {
		if sub.Name == name {
			sub.parent = c
			return sub.Execute(args[1:])
		}
	}

	hint := fmt.Sprintf("\n\nRun '%s --help' for usage.", c.fullName())
	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		return fmt.Errorf("unknown command %q (did you mean %q?)%s", name, suggestion, hint)
	}
	return fmt.Errorf("unknown command %q%s", name, hint)
}

// runLeaf parses the leaf's flags and hands the remaining positional
// args to Run.
func (c *Command) runLeaf(args []string) error {
	if c.Run == nil {
		c.PrintHelp(os.Stderr)
		return fmt.Errorf("no action defined for %q", c.fullName())
	}

	if c.Flags != nil {
		flagSet := c.Flags()
		// pflag's own error output and usage dump are suppressed; the
		// error is reformatted below with a suggestion and a help hint.
		flagSet.SetOutput(io.Discard)
		if err := flagSet.Parse(args); err != nil {
			hint := fmt.Sprintf("\n\nRun '%s --help' for usage.", c.fullName())
			if strings.Contains(err.Error(), "unknown flag") {
				// A fresh flag set: the failed parse above may have
				// consumed state.
				if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
					return fmt.Errorf("%s (did you mean %s?)%s", err, suggestion, hint)
				}
			}
			return fmt.Errorf("%s%s", err, hint)
		}
		args = flagSet.Args()
	}

	return c.Run(args)
}

// PrintHelp writes the command's help text to w: description, usage,
// subcommand table, flags, examples.
func (c *Command) PrintHelp(w io.Writer) {
	switch {
	case c.Description != "":
		fmt.Fprintf(w, "%s\n\n", c.Description)
	case c.Summary != "":
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}
	fmt.Fprintf(w, "Usage:\n  %s\n", c.usageLine())

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		table.Flush()
	}

	if c.Flags != nil {
		var defaults strings.Builder
		flagSet := c.Flags()
		flagSet.SetOutput(&defaults)
		flagSet.PrintDefaults()
		if defaults.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", defaults.String())
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
			if example.Description != "" {
				fmt.Fprintln(w)
			}
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", c.fullName())
	}
}

// usageLine returns Usage, or synthesizes one from the command path.
func (c *Command) usageLine() string {
	if c.Usage != "" {
		return c.Usage
	}
	if len(c.Subcommands) > 0 {
		return c.fullName() + " <command> [flags]"
	}
	return c.fullName() + " [flags]"
}

// fullName returns the complete command path (e.g., "kivinge mount").
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
