// =============================================================================
// Kardex Extract - File Manager Utility
// =============================================================================
//
// This module provides the file handling shared by every command:
//   - Directory management
//   - Atomic writes (temp file + rename) for outputs and state
//   - Backup of an output before it is replaced
//   - Run summary files
//   - Archive retention
//
// ARCHIVAL STRATEGY:
//   - The previous output is copied to the archive directory with a
//     timestamp suffix before a new one is renamed into place
//   - Archives older than the configured retention are removed
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations around the output directory.
type FileManager struct {
	// OutputDir is where reports, state and summaries are written.
	OutputDir string

	// ArchiveDir receives backups of replaced outputs.
	ArchiveDir string

	// CacheDir holds the reference table cache.
	CacheDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2024/05/10/SAIDA_GRADE_20240510_080000.csv
	UseTimestampSubdirs bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(outputDir, archiveDir, cacheDir string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		CacheDir:   cacheDir,
		now:        time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.ArchiveDir, fm.CacheDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// BACKUP
// =============================================================================

// BackupFile copies an existing output into the archive directory.
//
// RETURNS:
//   - The archive path, or "" when filePath does not exist.
//   - An error if the copy fails.
//
// NOTE: The file is copied, not moved, so it stays in place until the new
// version is renamed over it.
func (fm *FileManager) BackupFile(filePath string) (string, error) {
	if !FileExists(filePath) {
		return "", nil
	}

	archivePath := fm.getArchivePath(filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}
	return archivePath, nil
}

// getArchivePath builds NAME_YYYYMMDD_HHMMSS.ext under the archive directory.
func (fm *FileManager) getArchivePath(filePath string) string {
	now := fm.clock()
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	name := fmt.Sprintf("%s_%s%s", strings.TrimSuffix(base, ext), now.Format("20060102_150405"), ext)

	dir := fm.ArchiveDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(dir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}
	return filepath.Join(dir, name)
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes path through a temporary file in the same directory
// and renames it into place. A failed write leaves any previous file intact.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	buf := bufio.NewWriter(file)
	err = write(buf)
	if err == nil {
		err = buf.Flush()
	}
	if err == nil {
		err = file.Sync()
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains the figures of one pipeline run.
type RunSummary struct {
	Command    string
	RunID      string
	Mode       string
	StartTime  time.Time
	EndTime    time.Time
	Cutoff     string
	OutputFile string
	BackupFile string

	RecordsExtracted int
	LinesBuilt       int
	LinesUpdated     int
	LinesInserted    int
	LinesKept        int
	TotalLines       int

	Warnings []string
}

// WriteSummaryLog writes a run summary to run_summary_<timestamp>.txt.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	timestamp := summary.StartTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("run_summary_%s.txt", timestamp))

	err := WriteFileAtomic(summaryPath, func(w io.Writer) error {
		cutoff := summary.Cutoff
		if cutoff == "" {
			cutoff = "-"
		}
		_, err := fmt.Fprintf(w, "Kardex Extract - Run Summary\n"+
			"================================================================================\n\n"+
			"Run Information:\n"+
			"  Command:        %s\n"+
			"  Run ID:         %s\n"+
			"  Mode:           %s\n"+
			"  Cutoff:         %s\n"+
			"  Start Time:     %s\n"+
			"  End Time:       %s\n"+
			"  Duration:       %s\n\n"+
			"Statistics:\n"+
			"  Records Extracted: %d\n"+
			"  Lines Built:       %d\n"+
			"  Lines Updated:     %d\n"+
			"  Lines Inserted:    %d\n"+
			"  Lines Kept:        %d\n"+
			"  Total Lines:       %d\n\n"+
			"Files:\n"+
			"  Output:         %s\n"+
			"  Backup:         %s\n\n",
			summary.Command,
			summary.RunID,
			summary.Mode,
			cutoff,
			summary.StartTime.Format("2006-01-02 15:04:05"),
			summary.EndTime.Format("2006-01-02 15:04:05"),
			summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond).String(),
			summary.RecordsExtracted,
			summary.LinesBuilt,
			summary.LinesUpdated,
			summary.LinesInserted,
			summary.LinesKept,
			summary.TotalLines,
			summary.OutputFile,
			valueOr(summary.BackupFile, "-"))
		if err != nil {
			return err
		}

		if len(summary.Warnings) > 0 {
			fmt.Fprintln(w, "Warnings:")
			fmt.Fprintln(w, "--------------------------------------------------------------------------------")
			for _, warning := range summary.Warnings {
				fmt.Fprintf(w, "  - %s\n", warning)
			}
			fmt.Fprintln(w)
		}

		_, err = io.WriteString(w, "================================================================================\n"+
			"End of Summary\n")
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return summaryPath, nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists checks if a regular file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CleanOldArchives removes archive files older than the specified duration.
// A missing archive directory is not an error.
//
// RETURNS:
//   - The number of files removed.
//   - An error if cleaning fails.
func CleanOldArchives(archiveDir string, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	err := filepath.Walk(archiveDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == archiveDir {
				return filepath.SkipDir
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to clean archives: %w", err)
	}

	return removed, nil
}
