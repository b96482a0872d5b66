package archive

import (
  "archive/zip"
  "compress/flate"
  "fmt"
  "io"
  "io/fs"
  "os"
  "path/filepath"
  "regexp"
)

// Entry is one file to place in an archive under Name.
type Entry struct {
  Path string
  Name string
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeName flattens a title into something safe for archive entry
// names and Content-Disposition filenames.
func SanitizeName(name string) string {
  return unsafeNameChars.ReplaceAllString(name, "_")
}

func newZipWriter(w io.Writer) *zip.Writer {
  zw := zip.NewWriter(w)
  zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
    return flate.NewWriter(out, flate.BestCompression)
  })
  return zw
}

// ZipFiles writes the given files into a flat zip archive on w.
func ZipFiles(w io.Writer, entries []Entry) error {
  zw := newZipWriter(w)
  for _, e := range entries {
    if err := addFileToZip(zw, e.Path, e.Name); err != nil {
      _ = zw.Close()
      return err
    }
  }
  if err := zw.Close(); err != nil {
    return fmt.Errorf("failed to close zip writer: %w", err)
  }
  return nil
}

// ZipTree archives everything under rootDir on w, with entry names
// relative to rootDir so the top-level directories survive as-is.
func ZipTree(w io.Writer, rootDir string) error {
  zw := newZipWriter(w)
  err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
    if err != nil {
      return err
    }
    if d.IsDir() {
      return nil
    }
    rel, err := filepath.Rel(rootDir, path)
    if err != nil {
      return err
    }
    return addFileToZip(zw, path, filepath.ToSlash(rel))
  })
  if err != nil {
    _ = zw.Close()
    return fmt.Errorf("failed to archive %s: %w", rootDir, err)
  }
  if err := zw.Close(); err != nil {
    return fmt.Errorf("failed to close zip writer: %w", err)
  }
  return nil
}

func addFileToZip(zw *zip.Writer, srcPath, archivePath string) error {
  file, err := os.Open(srcPath)
  if err != nil {
    return fmt.Errorf("failed to open file %s: %w", srcPath, err)
  }
  defer file.Close()

  info, err := file.Stat()
  if err != nil {
    return fmt.Errorf("failed to stat file: %w", err)
  }

  header, err := zip.FileInfoHeader(info)
  if err != nil {
    return fmt.Errorf("failed to create zip header: %w", err)
  }
  header.Name = archivePath
  header.Method = zip.Deflate

  writer, err := zw.CreateHeader(header)
  if err != nil {
    return fmt.Errorf("failed to create zip entry: %w", err)
  }

  if _, err := io.Copy(writer, file); err != nil {
    return fmt.Errorf("failed to write file to zip: %w", err)
  }

  return nil
}
