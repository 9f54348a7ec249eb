package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "tcrun"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName      = "output"
	configFlagName      = "config"
	verboseFlagName     = "verbose"
	runParallelFlagName = "parallel"

	projectNameKey       = "project.name"
	projectBinaryKey     = "project.binary"
	projectBuildDirKey   = "project.build_dir"
	projectTestDirKey    = "project.test_dir"
	projectTimeoutKey    = "project.timeout"
	projectUnbufferedKey = "project.unbuffered"

	diagnosticsEnabledKey = "diagnostics.enabled"
	diagnosticsToolKey    = "diagnostics.tool"
	diagnosticsFlagsKey   = "diagnostics.flags"
	diagnosticsLogDirKey  = "diagnostics.log_dir"

	runParallelConfigKey = "run.parallel"
	runMaxOutputKey      = "run.max_output"
	runDiffTimeoutKey    = "run.diff_timeout"
	runPollIntervalKey   = "run.poll_interval"

	testsKey = "tests"

	defaultReportsDir      = ".tcrun-reports"
	defaultProjectName     = "project"
	defaultProjectBinary   = "./a.out"
	defaultProjectTimeout  = m.DefaultTimeout
	defaultDiagnosticsTool = "valgrind"
	defaultDiagnosticsLogs = ".tcrun-logs"
	defaultRunMaxOutput    = m.DefaultMaxOutputBytes
	defaultRunDiffTimeout  = m.DefaultDiffTimeout
	defaultRunPollInterval = m.DefaultPollInterval
	defaultRunParallel     = 0 // one worker per CPU

	envPrefix = "TCRUN"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".tcrun.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var defaultDiagnosticsFlags = []string{"--leak-check=full", "--show-leak-kinds=all", "--track-origins=yes"}

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	_ = readConfig("")
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)

	viper.SetDefault(projectNameKey, defaultProjectName)
	viper.SetDefault(projectBinaryKey, defaultProjectBinary)
	viper.SetDefault(projectBuildDirKey, ".")
	viper.SetDefault(projectTestDirKey, ".")
	viper.SetDefault(projectTimeoutKey, defaultProjectTimeout.Seconds())
	viper.SetDefault(projectUnbufferedKey, false)

	viper.SetDefault(diagnosticsEnabledKey, false)
	viper.SetDefault(diagnosticsToolKey, defaultDiagnosticsTool)
	viper.SetDefault(diagnosticsFlagsKey, defaultDiagnosticsFlags)
	viper.SetDefault(diagnosticsLogDirKey, defaultDiagnosticsLogs)

	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(runMaxOutputKey, defaultRunMaxOutput)
	viper.SetDefault(runDiffTimeoutKey, defaultRunDiffTimeout.Seconds())
	viper.SetDefault(runPollIntervalKey, defaultRunPollInterval.Milliseconds())

	viper.SetDefault(testsKey, []map[string]any{})

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// readConfig loads path, or the default tcrun.yaml when path is empty.
// A missing default file is not an error.
func readConfig(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	}

	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || (path == "" && errors.Is(err, os.ErrNotExist)) {
		return nil
	}

	return fmt.Errorf("read config %s: %w", viper.ConfigFileUsed(), err)
}

func seconds(key string) time.Duration {
	return time.Duration(viper.GetFloat64(key) * float64(time.Second))
}

// loadProject builds the project definition from the configuration.
func loadProject() *m.ProjectDefinition {
	return &m.ProjectDefinition{
		Name:       viper.GetString(projectNameKey),
		BinaryPath: m.Path(viper.GetString(projectBinaryKey)),
		BuildDir:   m.Path(viper.GetString(projectBuildDirKey)),
		TestDir:    m.Path(viper.GetString(projectTestDirKey)),
		Timeout:    seconds(projectTimeoutKey),
		Unbuffered: viper.GetBool(projectUnbufferedKey),
		Diagnostics: m.DiagnosticsOptions{
			Enabled: viper.GetBool(diagnosticsEnabledKey),
			Tool:    viper.GetString(diagnosticsToolKey),
			Flags:   viper.GetStringSlice(diagnosticsFlagsKey),
			LogDir:  m.Path(viper.GetString(diagnosticsLogDirKey)),
		},
	}
}

// loadTests decodes the `tests` list.
func loadTests() ([]m.TestcaseDefinition, error) {
	var tests []m.TestcaseDefinition
	if err := viper.UnmarshalKey(testsKey, &tests); err != nil {
		return nil, fmt.Errorf("decode %s: %w", testsKey, err)
	}

	return tests, nil
}

// buildRunOptions reads the run-wide knobs. A non-positive parallel
// setting uses one worker per CPU.
func buildRunOptions() m.RunOptions {
	opts := m.DefaultRunOptions()
	opts.RunID = uuid.NewString()

	opts.Parallel = viper.GetInt(runParallelConfigKey)
	if opts.Parallel <= 0 {
		opts.Parallel = runtime.NumCPU()
	}

	opts.MaxOutputBytes = viper.GetInt(runMaxOutputKey)
	opts.DiffTimeout = seconds(runDiffTimeoutKey)
	opts.PollInterval = time.Duration(viper.GetInt64(runPollIntervalKey)) * time.Millisecond
	opts.Verbose = viper.GetBool(logVerboseKey)

	if opts.PollInterval <= 0 {
		opts.PollInterval = m.DefaultPollInterval
	}

	return opts
}

// checkBinary reports whether the binary at path exists and is executable.
// The build itself happens outside the harness. The returned path is
// absolute, since children start in the build directory.
func checkBinary(path m.Path) m.Binary {
	if abs, err := filepath.Abs(string(path)); err == nil {
		path = m.Path(abs)
	}

	binary := m.Binary{Path: path}

	info, err := os.Stat(string(path))

	switch {
	case err != nil:
		slog.Error("Binary not found", "path", path, "error", err)
	case info.IsDir():
		slog.Error("Binary is a directory", "path", path)
	case info.Mode().Perm()&0o111 == 0:
		slog.Error("Binary is not executable", "path", path, "mode", info.Mode())
	default:
		binary.Compiled = true
		return binary
	}

	binary.Errors = 1

	return binary
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
