package main

import (
	"brewin/internal/logger"
	"brewin/internal/util"
	"flag"
	"fmt"
	"io"
	"os"
)

var (
	// Version is the current version of the brewin binary, set at link time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses the global options, loads configuration and dispatches to a
// subcommand. It returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	var (
		help       bool
		version    bool
		configPath string
		logLevel   string
		logFile    string
	)
	fs := flag.NewFlagSet("brewin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&help, "help", false, "Display help information and exit")
	fs.BoolVar(&help, "h", false, "Display help information and exit")
	fs.BoolVar(&version, "version", false, "Display version information and exit")
	fs.BoolVar(&version, "v", false, "Display version information and exit")
	fs.StringVar(&configPath, "config", "", "TOML configuration file (default $"+util.ConfigEnv+")")
	fs.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	fs.Usage = func() { printHelp(stderr) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if version {
		printVersion(stdout)
		return exitOK
	}
	if help || fs.NArg() == 0 {
		printHelp(stdout)
		if help {
			return exitOK
		}
		return exitUsage
	}

	config, err := util.LoadConfiguration(util.ConfigPath(configPath))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	config.Version, config.BuildDate, config.Commit = Version, BuildDate, Commit
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		}
	})

	log, closeLog := logger.Setup(config.LogFile, config.LogLevel)
	defer closeLog()
	log.Debug("configuration loaded", "dialect", config.Dialect, "results", config.ResultsDSN != "")

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "run":
		return runCommand(config, cmdArgs, stdout, stderr)
	case "ast":
		return astCommand(cmdArgs, stdout, stderr)
	case "test":
		return testCommand(config, cmdArgs, stdout, stderr)
	case "history":
		return historyCommand(config, cmdArgs, stdout, stderr)
	case "help":
		printHelp(stdout)
		return exitOK
	case "version":
		printVersion(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		printHelp(stderr)
		return exitUsage
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "brewin version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `Usage: brewin [options] <command> [command options] [args...]

Commands:
  run [-dialect d] [-input file] file.br   Run a program against the console
  ast file.br                              Print the parsed program as JSON
  test [-parallel n] [-results dsn] paths  Run a test corpus of .br and .yaml files
  history [-results dsn] [-n 10] [-run id] List recorded corpus runs

Options:
  -config <path>     TOML configuration file. Default is $%s.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
Brewin is a small teaching language with gradual types, structs, exceptions
and lazy evaluation. Dialects: brewin, brewin+ and brewin# (default).

Examples:
  brewin run hello.br                          Execute the provided program
  brewin run -input in.txt -dialect brewin x.br  Execute with scripted input
  brewin -log-level=debug test tests/          Run a corpus with debug logging

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, util.ConfigEnv, Version, BuildDate, Commit)
}
