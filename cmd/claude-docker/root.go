// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for claude-docker.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"claude-docker/internal/agent"
	"claude-docker/internal/auth"
	"claude-docker/internal/config"
	"claude-docker/internal/container"
	"claude-docker/internal/image"
	"claude-docker/internal/issue"
	"claude-docker/internal/run"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	verbose bool

	workDirFlag string
	promptFlag  string
	modelFlag   string
	forceBuild  bool

	streamFlag     bool
	streamJSONFlag bool
	noStreamFlag   bool

	logStreamFlag   bool
	noLogStreamFlag bool
	logDirFlag      string

	rootCmd = &cobra.Command{
		Use:   "claude-docker [prompt...]",
		Short: "Run Claude Code in an isolated container",
		Long: TitleStyle.Render("claude-docker") + SubtitleStyle.Render(" - Run Claude Code in an isolated container") + `

claude-docker launches the Claude Code CLI inside a docker or finch
container, mounting your credentials and a workspace directory. The
container image is built on first use and rebuilt automatically when its
build inputs change.

` + SubtitleStyle.Render("Examples:") + `
  claude-docker -p "hello world"          Run a prompt
  claude-docker -d ~/src -p "fix tests"   Run against a specific directory
  claude-docker agent list                List configured agents
  claude-docker agent run notes           Run the 'notes' agent
  claude-docker setup                     Set up authentication
  claude-docker shell                     Open a shell in the container`,
		Args: cobra.ArbitraryArgs,
		RunE: runDirectPrompt,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	// Flag parse failures are usage errors and exit with UsageExitCode.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: UsageExitCode, Err: err}
	})

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&workDirFlag, "dir", "d", "", "workspace directory to mount (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&forceBuild, "build", "b", false, "force an image rebuild")
	rootCmd.PersistentFlags().BoolVarP(&streamFlag, "stream", "s", true, "stream formatted output")
	rootCmd.PersistentFlags().BoolVarP(&streamJSONFlag, "stream-json", "j", false, "stream raw stream-json output")
	rootCmd.PersistentFlags().BoolVar(&noStreamFlag, "no-stream", false, "disable streaming output")
	rootCmd.PersistentFlags().BoolVar(&logStreamFlag, "log-stream", false, "force session logging on")
	rootCmd.PersistentFlags().BoolVar(&noLogStreamFlag, "no-log-stream", false, "force session logging off")
	rootCmd.PersistentFlags().StringVar(&logDirFlag, "log-dir", "", "session log directory override")

	rootCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "prompt to run")
	rootCmd.Flags().StringVar(&modelFlag, "model", "", "model override")

	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(setupC3POCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(cleanLogsCmd)
}

func initLogging() {
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableError
// values print their suggestions; verbose mode shows the full chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// streamSettings resolves the three stream flags into the effective mode.
func streamSettings() (stream, streamRaw bool) {
	if noStreamFlag {
		return false, false
	}
	if streamJSONFlag {
		return true, true
	}
	return streamFlag, false
}

// loadConfigWithFlags loads the settings file and applies the session
// logging flag overrides.
func loadConfigWithFlags() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logStreamFlag {
		cfg.StreamLogging.Enabled = true
	}
	if noLogStreamFlag {
		cfg.StreamLogging.Enabled = false
	}
	if logDirFlag != "" {
		cfg.StreamLogging.Directory = logDirFlag
	}
	return cfg, nil
}

// resolveWorkDir picks the workspace: the --dir flag (tilde-expanded) or
// the current directory. The directory must exist since it is mounted.
func resolveWorkDir() (string, error) {
	if workDirFlag == "" {
		return os.Getwd()
	}
	dir, err := agent.ExpandTilde(workDirFlag)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", issue.NewErrorContext().
			WithOperation("resolve workspace directory").
			WithResource(dir).
			WithSuggestion("Pass an existing directory with -d/--dir").
			Wrap(fmt.Errorf("not a directory")).
			BuildError()
	}
	return dir, nil
}

func runDirectPrompt(cmd *cobra.Command, args []string) error {
	prompt := promptFlag
	if prompt == "" {
		prompt = strings.Join(args, " ")
	}
	if prompt == "" {
		_ = cmd.Help()
		return &ExitError{Code: UsageExitCode, Err: errors.New("a prompt or subcommand is required")}
	}

	if _, _, err := auth.Resolve(); err != nil {
		return displayError(err)
	}

	cfg, err := loadConfigWithFlags()
	if err != nil {
		return displayError(err)
	}
	if err := run.Prepare(cfg); err != nil {
		return displayError(err)
	}

	eng, err := detectEngine(cfg)
	if err != nil {
		return displayError(engineError(err))
	}

	ctx := cmd.Context()
	if err := image.Ensure(ctx, eng, cfg, forceBuild, os.Stderr); err != nil {
		return displayError(err)
	}

	workDir, err := resolveWorkDir()
	if err != nil {
		return displayError(err)
	}

	stream, streamRaw := streamSettings()
	runner := run.NewRunner(eng, cfg)
	exitCode, err := runner.Execute(ctx, run.Options{
		Prompt:      prompt,
		WorkDir:     workDir,
		ProjectName: filepath.Base(workDir),
		Model:       modelFlag,
		Stream:      stream,
		StreamRaw:   streamRaw,
		Verbose:     verbose,
	})
	if err != nil {
		return displayError(err)
	}
	if exitCode != 0 {
		return &ExitError{Code: exitCode}
	}
	return nil
}

// displayError converts an error into its user-facing form. fang prints
// only Error(), so actionable suggestions are folded into the message.
func displayError(err error) error {
	return errors.New(formatErrorForDisplay(err, verbose))
}

// runtimeEnv overrides the container runtime choice from the environment.
const runtimeEnv = "CLAUDE_DOCKER_RUNTIME"

// detectEngine picks the container engine. An explicit preference from
// the environment or the settings file wins; otherwise auto-detection,
// docker first.
func detectEngine(cfg *config.Config) (container.Engine, error) {
	pref := os.Getenv(runtimeEnv)
	if pref == "" && cfg != nil {
		pref = cfg.Runtime
	}
	if pref == "" {
		return container.AutoDetectEngine()
	}
	return container.NewEngine(container.EngineType(pref))
}

// engineError decorates a missing-engine failure with install hints.
func engineError(err error) error {
	var notAvail *container.ErrEngineNotAvailable
	if !errors.As(err, &notAvail) {
		return err
	}
	return issue.NewErrorContext().
		WithOperation("detect container runtime").
		WithSuggestion("Install docker: https://docs.docker.com/get-docker/").
		WithSuggestion("Or install finch: https://runfinch.com/").
		Wrap(err).
		BuildError()
}
