package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
)

const JSONOutputFlag = "json"

type ICommandResult interface {
	GetOutput() string
}

type OutputFormatter interface {
	// SetError sets the error that is printed instead of the result
	SetError(err error)
	SetCommandResult(result ICommandResult)
	// WriteCommandResult prints an intermediate result right away
	WriteCommandResult(result ICommandResult)
	WriteOutput()
}

type CliCommandParams interface {
	Execute(outputter OutputFormatter) (ICommandResult, error)
}

// GetCliRunCommand runs params and prints its result or error with the
// outputter selected by the command flags.
func GetCliRunCommand(params CliCommandParams) func(cmd *cobra.Command, _ []string) {
	return func(cmd *cobra.Command, _ []string) {
		outputter := InitializeOutputter(cmd)
		defer outputter.WriteOutput()

		result, err := params.Execute(outputter)
		if err != nil {
			outputter.SetError(err)

			return
		}

		outputter.SetCommandResult(result)
	}
}

func InitializeOutputter(cmd *cobra.Command) OutputFormatter {
	if jsonOutput, err := cmd.Flags().GetBool(JSONOutputFlag); err == nil && jsonOutput {
		return &jsonOutputter{out: os.Stdout, errOut: os.Stderr}
	}

	return &cliOutputter{out: os.Stdout, errOut: os.Stderr}
}

func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}

func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

type cliOutputter struct {
	out    io.Writer
	errOut io.Writer
	err    error
	result ICommandResult
}

func (o *cliOutputter) SetError(err error) {
	o.err = err
}

func (o *cliOutputter) SetCommandResult(result ICommandResult) {
	o.result = result
}

func (o *cliOutputter) WriteCommandResult(result ICommandResult) {
	_, _ = fmt.Fprintln(o.out, result.GetOutput())
}

func (o *cliOutputter) WriteOutput() {
	if o.err != nil {
		_, _ = fmt.Fprintf(o.errOut, "Error: %v\n", o.err)

		return
	}

	if o.result != nil {
		_, _ = fmt.Fprintln(o.out, o.result.GetOutput())
	}
}

type jsonOutputter struct {
	out    io.Writer
	errOut io.Writer
	err    error
	result ICommandResult
}

func (o *jsonOutputter) SetError(err error) {
	o.err = err
}

func (o *jsonOutputter) SetCommandResult(result ICommandResult) {
	o.result = result
}

func (o *jsonOutputter) WriteCommandResult(result ICommandResult) {
	o.write(o.out, result)
}

func (o *jsonOutputter) WriteOutput() {
	if o.err != nil {
		o.write(o.errOut, map[string]string{"error": o.err.Error()})

		return
	}

	if o.result != nil {
		o.write(o.out, o.result)
	}
}

func (o *jsonOutputter) write(w io.Writer, v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(o.errOut, "Error: failed to marshal output: %v\n", err)

		return
	}

	_, _ = fmt.Fprintln(w, string(bytes))
}
