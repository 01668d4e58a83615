package logs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/monobilisim/logdesk/common/api/apierr"
	"github.com/rs/zerolog/log"
)

const (
	defaultExportFile = "logs.csv"
	msgExportFailed   = "Failed to download CSV. "
)

// CSVDownloader streams the CSV export for a set of filters.
type CSVDownloader interface {
	DownloadCSV(ctx context.Context, params map[string]string, w io.Writer) (int64, error)
}

// exportCSV writes the export for params to path, zstd-compressed when
// compress is set. The download goes to a temporary file next to path and
// replaces path only once complete; on failure path is left as it was. It
// returns the path written.
func exportCSV(ctx context.Context, api CSVDownloader, params map[string]string, path string, compress bool) (string, int64, error) {
	if path == "" {
		path = defaultExportFile
	}
	if compress && !strings.HasSuffix(path, ".zst") {
		path += ".zst"
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".logdesk-export-*")
	if err != nil {
		return path, 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	n, err := writeExport(ctx, api, params, tmp, compress)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0644)
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		os.Remove(tmpPath)
		log.Error().
			Err(err).
			Str("component", "export").
			Str("file", path).
			Msg("CSV export failed")
		return path, n, err
	}

	log.Debug().
		Str("component", "export").
		Str("file", path).
		Int64("bytes", n).
		Bool("zstd", compress).
		Msg("CSV export written")
	return path, n, nil
}

func writeExport(ctx context.Context, api CSVDownloader, params map[string]string, w io.Writer, compress bool) (int64, error) {
	if !compress {
		return api.DownloadCSV(ctx, params, w)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return 0, err
	}
	n, err := api.DownloadCSV(ctx, params, enc)
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// exportMessage is the user-facing text for a failed export.
func exportMessage(err error) string {
	return msgExportFailed + apierr.UserMessage(err, "Please try again later.")
}
