package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fastjson"
)

// LogFilePath is where JSON log lines are appended.
func LogFilePath() string {
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		xdgStateHome = filepath.Join(os.Getenv("HOME"), ".local", "state")
	}
	return filepath.Join(xdgStateHome, "logdesk", "logdesk.log")
}

// LogInit configures the global zerolog logger: pretty lines on stderr and
// JSON lines in LogFilePath. Debug lowers the level from info to debug.
func LogInit(debug bool, noColor bool) {
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOGDESK_LOGLEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return filepath.Base(file) + ":" + fmt.Sprintf("%d", line)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"

	consoleWriter := zerolog.ConsoleWriter{
		Out:           os.Stderr,
		TimeFormat:    time.RFC3339,
		NoColor:       noColor,
		FieldsExclude: []string{"component", "version", "pid"},
	}

	logfilePath := LogFilePath()
	var output io.Writer = consoleWriter
	if err := os.MkdirAll(filepath.Dir(logfilePath), 0755); err == nil {
		logFile, err := os.OpenFile(logfilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, logging to stderr only\n", logfilePath, err)
		} else {
			output = zerolog.MultiLevelWriter(consoleWriter, logFile)
		}
	}

	log.Logger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Caller().
		Str("component", "logdesk").
		Str("version", Version).
		Int("pid", os.Getpid()).
		Logger()

	retention := time.Duration(Config.Log.RetentionDays) * 24 * time.Hour
	if retention <= 0 {
		retention = DefaultRetentionDays * 24 * time.Hour
	}
	_ = PruneLogFile(logfilePath, retention, time.Now())

	log.Debug().
		Str("component", "logging").
		Str("level", level.String()).
		Str("log_file", logfilePath).
		Bool("colors_enabled", !noColor).
		Msg("Logging initialized")
}

// PruneLogFile rewrites the JSON-lines log at path in place, keeping only
// lines whose timestamp is within maxAge of now. Lines without a readable
// timestamp are kept.
func PruneLogFile(path string, maxAge time.Duration, now time.Time) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), "logdesk-log-prune-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	cutoff := now.Add(-maxAge)

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(tmp)

	var p fastjson.Parser
	kept, dropped := 0, 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ts, ok := lineTimestamp(&p, line)
		if ok && ts.Before(cutoff) {
			dropped++
			continue
		}
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return err
		}
		kept++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if dropped == 0 {
		return nil
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	// Copy-truncate keeps the inode, so an open writer keeps appending to it.
	dst, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := dst.Truncate(0); err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(dst, tmp); err != nil {
		return err
	}

	log.Debug().
		Str("component", "logging").
		Str("action", "prune").
		Str("file", path).
		Int("kept_lines", kept).
		Int("dropped_lines", dropped).
		Dur("max_age", maxAge).
		Msg("Pruned log file by age")
	return nil
}

func lineTimestamp(p *fastjson.Parser, line string) (time.Time, bool) {
	v, err := p.Parse(line)
	if err != nil {
		return time.Time{}, false
	}
	raw := string(v.GetStringBytes("timestamp"))
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
