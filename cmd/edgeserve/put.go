package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/config"
	"github.com/sagarc03/edgeserve/keybackend"
)

var putCmd = &cobra.Command{
	Use:   "put [flags] <file1> [file2] ...",
	Short: "Upload files to the blob store",
	Long: `Upload local files to the configured blob store.

Each file is stored under its base name, optionally below a destination
prefix. A single file can be given an explicit key and a display name;
the display name is written to the configured name store.

Examples:
  # Upload a file under its own name
  edgeserve put ./abc123.zip

  # Upload with an explicit key and a download name
  edgeserve put --key abc123.zip --name "Album.zip" ./build/out.zip

  # Upload a directory recursively below a prefix
  edgeserve put -r --dest releases/ ./dist`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPut,
}

var (
	putKey       string
	putName      string
	putDest      string
	putRecursive bool
	putQuiet     bool
)

func init() {
	putCmd.Flags().StringVarP(&putKey, "key", "k", "", "object key (single file only)")
	putCmd.Flags().StringVar(&putName, "name", "", "display name used as the download filename (single file only)")
	putCmd.Flags().StringVarP(&putDest, "dest", "d", "", "destination key prefix")
	putCmd.Flags().BoolVarP(&putRecursive, "recursive", "r", false, "recursively upload directories")
	putCmd.Flags().BoolVarP(&putQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(putCmd)
}

// fileEntry represents a file to be uploaded with its source path and key.
type fileEntry struct {
	sourcePath string
	key        string
}

func runPut(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// Collect files from all arguments
	var files []fileEntry
	for _, arg := range args {
		entries, collectErr := collectFiles(arg, putRecursive, putDest)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, entries...)
	}

	if (putKey != "" || putName != "") && len(files) != 1 {
		return errors.New("--key and --name require exactly one file")
	}
	if putKey != "" {
		files[0].key = strings.TrimPrefix(putKey, "/")
	}

	if len(files) == 0 {
		slog.Info("no files to upload")
		return nil
	}

	for _, entry := range files {
		if !edgeserve.IsValidKey(entry.key) {
			return fmt.Errorf("invalid key %q: %w", entry.key, edgeserve.ErrInvalidInput)
		}
	}

	blobs, closeBlobs, err := openBlobStore(ctx, cfg.Blob)
	if err != nil {
		return err
	}
	defer func() { _ = closeBlobs() }()

	uploaded := 0
	for _, entry := range files {
		f, openErr := os.Open(entry.sourcePath)
		if openErr != nil {
			return fmt.Errorf("open %s: %w", entry.sourcePath, openErr)
		}

		contentType := detectContentType(entry.sourcePath)
		res, writeErr := blobs.Write(ctx, entry.key, f, contentType)
		_ = f.Close()

		if writeErr != nil {
			return fmt.Errorf("put %s: %w", entry.key, writeErr)
		}

		uploaded++
		if !putQuiet {
			slog.Info("uploaded", "key", entry.key, "bytes", res.BytesWritten, "etag", res.Etag, "content_type", contentType)
		}
	}

	if putName != "" {
		if err := setDisplayName(cmd, cfg.Names, files[0].key, putName); err != nil {
			return err
		}
	}

	slog.Info("put complete", "uploaded", uploaded)
	return nil
}

func setDisplayName(cmd *cobra.Command, cfg keybackend.Config, key, name string) error {
	if cfg.Type == "map" {
		return errors.New("the map name store cannot be updated from the CLI; use redis, sqlite or postgres")
	}

	names, closeNames, err := keybackend.NewNameStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeNames() }()

	if err := names.Set(cmd.Context(), key, name); err != nil {
		return fmt.Errorf("set display name: %w", err)
	}

	slog.Info("display name set", "key", key, "name", name)
	return nil
}

// collectFiles gathers files from a path, optionally recursively.
// Returns a list of file entries with source paths and object keys.
func collectFiles(path string, recursive bool, destPrefix string) ([]fileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	// Normalize dest prefix - ensure it ends with / if non-empty
	destPrefix = strings.TrimPrefix(destPrefix, "/")
	if destPrefix != "" && !strings.HasSuffix(destPrefix, "/") {
		destPrefix += "/"
	}

	if !info.IsDir() {
		return []fileEntry{{sourcePath: path, key: destPrefix + filepath.Base(path)}}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to upload recursively)", path)
	}

	var entries []fileEntry
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(path, walkPath)
		if relErr != nil {
			return relErr
		}

		entries = append(entries, fileEntry{
			sourcePath: walkPath,
			key:        destPrefix + filepath.ToSlash(rel),
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return entries, nil
}

func detectContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
