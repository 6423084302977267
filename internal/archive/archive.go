// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package archive packs a source directory into one timestamped zip
// archive for profiles that sync in batch mode.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/probe"
)

//go:generate mockgen -source=archive.go -destination=../mock/archiver_mock.go -package=mock

// TimeLayout is the timestamp embedded in archive names.
const TimeLayout = "2006-01-02-15-04-05"

// Ext is the archive file extension.
const Ext = ".zip"

// ErrEmptySource is returned when the source directory has no readable file.
var ErrEmptySource = errors.New("nothing to archive")

// Archiver creates batch archives.
type Archiver interface {
	// CreateArchive writes destDir/name containing every file below
	// sourceDir that matches none of the exclude patterns, and returns the
	// archive path. Unreadable members are skipped with a warning.
	CreateArchive(ctx context.Context, sourceDir, destDir, name string, exclude []string) (string, error)
}

type zipArchiver struct {
	fs     afero.Fs
	logger *logger.Logger
}

// NewZipArchiver returns an [Archiver] writing deflate compressed zips to
// fs. A nil fs means the OS filesystem.
func NewZipArchiver(fs afero.Fs, log *logger.Logger) Archiver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &zipArchiver{fs: fs, logger: log}
}

// Name returns the archive name for sourceDir at t:
// "<base of sourceDir>_<YYYY-MM-DD-HH-MM-SS>.zip" in t's location.
func Name(sourceDir string, t time.Time) string {
	return filepath.Base(filepath.Clean(sourceDir)) + "_" + t.Format(TimeLayout) + Ext
}

// ParseName extracts the timestamp of an archive built by [Name] for an
// origin folder called origin. The timestamp is read in loc. ok is false
// for names that do not follow the pattern.
func ParseName(name, origin string, loc *time.Location) (time.Time, bool) {
	prefix := origin + "_"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, Ext) {
		return time.Time{}, false
	}

	stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), Ext)
	t, err := time.ParseInLocation(TimeLayout, stamp, loc)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func (a *zipArchiver) CreateArchive(ctx context.Context, sourceDir, destDir, name string, exclude []string) (string, error) {
	if err := a.fs.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}

	final := filepath.Join(destDir, name)
	partial := final + ".part"

	out, err := a.fs.Create(partial)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}

	added, err := a.write(ctx, out, sourceDir, exclude)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && added == 0 {
		err = ErrEmptySource
	}
	if err != nil {
		_ = a.fs.Remove(partial)
		return "", err
	}

	if err = a.fs.Rename(partial, final); err != nil {
		_ = a.fs.Remove(partial)
		return "", fmt.Errorf("finalize archive: %w", err)
	}

	a.logger.Info().
		Str("func", "zipArchiver.CreateArchive").
		Str("archive", final).
		Int("members", added).
		Msg("archive created")

	return final, nil
}

func (a *zipArchiver) write(ctx context.Context, out io.Writer, sourceDir string, exclude []string) (int, error) {
	zw := zip.NewWriter(out)
	added := 0

	err := afero.Walk(a.fs, sourceDir, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == sourceDir {
				return err
			}
			a.skip(path, err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if probe.Excluded(rel, exclude) {
			return nil
		}

		if err = a.addMember(zw, path, rel, info); err != nil {
			var memberErr *memberError
			if errors.As(err, &memberErr) {
				a.skip(path, memberErr.err)
				return nil
			}
			return err
		}
		added++
		return nil
	})
	if err != nil {
		_ = zw.Close()
		return 0, fmt.Errorf("walk %s: %w", sourceDir, err)
	}

	if err = zw.Close(); err != nil {
		return 0, fmt.Errorf("close archive: %w", err)
	}

	return added, nil
}

// memberError marks a source file that could not be read; the member is
// skipped and the archive continues.
type memberError struct{ err error }

func (e *memberError) Error() string { return e.err.Error() }

func (a *zipArchiver) addMember(zw *zip.Writer, path, rel string, info os.FileInfo) error {
	src, err := a.fs.Open(path)
	if err != nil {
		return &memberError{err: err}
	}
	defer src.Close()

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return &memberError{err: err}
	}
	header.Name = rel
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add %s: %w", rel, err)
	}
	if _, err = io.Copy(w, src); err != nil {
		// the header is already written, the archive cannot be repaired
		return fmt.Errorf("copy %s: %w", rel, err)
	}

	return nil
}

func (a *zipArchiver) skip(path string, err error) {
	a.logger.Warn().Err(err).
		Str("func", "zipArchiver.CreateArchive").
		Str("path", path).
		Msg("skipping unreadable file")
}
