package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/npillmayer/otbase"
	"github.com/npillmayer/otbase/ot"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// tracer traces with key 'otbase.cli'
func tracer() tracing.Trace {
	return tracing.Select("otbase.cli")
}

var traceLevel string

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":  "go",
		"trace.otbase.cli": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	root := &cobra.Command{
		Use:   "otbase",
		Short: "Inspect the binary structure of OpenType fonts",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setTraceLevel(traceLevel)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&traceLevel, "trace", "Info", "Trace level [Debug|Info|Error]")
	root.AddCommand(tablesCommand())
	root.AddCommand(viewCommand())
	root.AddCommand(shellCommand())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setTraceLevel(tlevel string) error {
	switch tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		return fmt.Errorf("invalid trace level: %s", tlevel)
	}
	return nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func tablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <fontfile>",
		Short: "List the tables of a font",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			otf, err := loadLocalFont(args[0])
			if err != nil {
				return err
			}
			printFontSummary(otf)
			return nil
		},
	}
}

func viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <fontfile> <table>",
		Short: "Show the contents of a single font table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			otf, err := loadLocalFont(args[0])
			if err != nil {
				return err
			}
			return printTable(otf, args[1])
		},
	}
}

func shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <fontfile>",
		Short: "Interactively navigate the structure of a font",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			otf, err := loadLocalFont(args[0])
			if err != nil {
				return err
			}
			return runShell(otf)
		},
	}
}

// --- Font Loading -----------------------------------------------------

func loadLocalFont(path string) (*ot.Font, error) {
	otf, err := otbase.LoadFont(path)
	if err != nil {
		tracer().Errorf("cannot load font %s: %s", path, err)
		return nil, err
	}
	tracer().Infof("loaded font with %d tables", len(otf.TableTags()))
	for _, w := range otf.Warnings() {
		tracer().Infof("parser warning: %s", w.Issue)
	}
	for _, e := range otf.Errors() {
		pterm.Error.Printf("parser error: %v\n", e)
	}
	if otf.HasCriticalErrors() {
		return nil, errors.New("font has critical parse errors")
	}
	return otf, nil
}
