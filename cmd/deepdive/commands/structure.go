// Package commands implements CLI command handlers for deepdive.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deepdive-tools/deepdive/internal/pysource"
)

// maxCallSitesShown caps the external-call listing in the text summary.
const maxCallSitesShown = 10

// StructureCommand holds the flags for the structure command.
type StructureCommand struct {
	output string
	format string
}

// NewStructureCommand creates the structure subcommand. It parses one Python
// file and emits its structural inventory: imports, classes, functions,
// constants, exports, and external call sites.
func NewStructureCommand() *cobra.Command {
	cmd := &StructureCommand{}

	cobraCmd := &cobra.Command{
		Use:   "structure <file.py>",
		Short: "Extract the structural inventory of a Python file",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.output, outputFlag, outputFlagShort, "", outputFlagUsage)
	cobraCmd.Flags().StringVarP(&cmd.format, formatFlag, formatFlagShort, FormatText, "output format: text, json, or yaml")

	return cobraCmd
}

// Run executes the structure command.
func (c *StructureCommand) Run(cobraCmd *cobra.Command, args []string) error {
	unit, err := pysource.ParseFile(cobraCmd.Context(), args[0])
	if err != nil {
		return err
	}

	writer, closeFn, err := openOutput(c.output)
	if err != nil {
		return err
	}

	defer closeFn() //nolint:errcheck // best-effort close on the output file

	switch c.format {
	case FormatJSON:
		return writeJSON(writer, unit)
	case FormatYAML:
		return writeYAML(writer, unit)
	case FormatText:
		renderStructureText(writer, unit)

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, c.format)
	}
}

// renderStructureText prints a structural summary: classes with their
// methods, top-level functions, the import split, constants, exports, and
// the first external call sites.
func renderStructureText(w io.Writer, unit *pysource.SyntaxUnit) {
	heading := color.New(color.Bold)

	heading.Fprintf(w, "%s\n", unit.Path)

	heading.Fprintf(w, "\nClasses (%d)\n", len(unit.Classes))

	for _, cls := range unit.Classes {
		methods := make([]string, 0, len(cls.Methods))
		for _, m := range cls.Methods {
			methods = append(methods, m.Name)
		}

		fmt.Fprintf(w, "  %s (line %d): %s\n", cls.Name, cls.Line, strings.Join(methods, ", "))
	}

	heading.Fprintf(w, "\nFunctions (%d)\n", len(unit.Functions))

	for _, fn := range unit.Functions {
		fmt.Fprintf(w, "  %s (line %d, %d params)\n", fn.Name, fn.Line, len(fn.Parameters))
	}

	var internal, external []string

	for _, imp := range unit.Imports {
		if imp.IsInternal {
			internal = append(internal, imp.Module)
		} else {
			external = append(external, imp.Module)
		}
	}

	heading.Fprintf(w, "\nImports (%d internal, %d external)\n", len(internal), len(external))
	if len(internal) > 0 {
		fmt.Fprintf(w, "  internal: %s\n", strings.Join(internal, ", "))
	}

	if len(external) > 0 {
		fmt.Fprintf(w, "  external: %s\n", strings.Join(external, ", "))
	}

	heading.Fprintf(w, "\nConstants (%d)\n", len(unit.Constants))

	if len(unit.Constants) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(unit.Constants, ", "))
	}

	heading.Fprintf(w, "\nExported symbols (%d)\n", len(unit.ExportedSymbols))

	if len(unit.ExportedSymbols) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(unit.ExportedSymbols, ", "))
	}

	heading.Fprintf(w, "\nExternal calls (%d)\n", len(unit.ExternalCalls))

	for i, call := range unit.ExternalCalls {
		if i == maxCallSitesShown {
			fmt.Fprintf(w, "  ... and %d more\n", len(unit.ExternalCalls)-maxCallSitesShown)

			break
		}

		fmt.Fprintf(w, "  line %d [%s] %s\n", call.Line, call.Tag, call.Context)
	}
}
