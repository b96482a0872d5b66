package archive

import (
  "archive/zip"
  "bytes"
  "io"
  "os"
  "path/filepath"
  "testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
  t.Helper()
  path := filepath.Join(dir, name)
  if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
    t.Fatalf("failed to write temp file: %v", err)
  }
  return path
}

func readZip(t *testing.T, data []byte) map[string]string {
  t.Helper()
  r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
  if err != nil {
    t.Fatalf("failed to open zip: %v", err)
  }
  out := map[string]string{}
  for _, f := range r.File {
    rc, err := f.Open()
    if err != nil {
      t.Fatalf("failed to open zip entry %s: %v", f.Name, err)
    }
    b, err := io.ReadAll(rc)
    rc.Close()
    if err != nil {
      t.Fatalf("failed to read zip entry %s: %v", f.Name, err)
    }
    out[f.Name] = string(b)
  }
  return out
}

func TestSanitizeName(t *testing.T) {
  cases := []struct {
    in   string
    want string
  }{
    {"model.obj", "model_obj"},
    {"My Cool Asset!", "My_Cool_Asset_"},
    {"already_safe-name", "already_safe-name"},
    {"a/b\\c", "a_b_c"},
  }
  for _, tc := range cases {
    if got := SanitizeName(tc.in); got != tc.want {
      t.Fatalf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
    }
  }
}

func TestZipFiles_RoundTrip(t *testing.T) {
  dir := t.TempDir()
  p1 := writeTempFile(t, dir, "one.txt", "first")
  p2 := writeTempFile(t, dir, "two.txt", "second")

  var buf bytes.Buffer
  err := ZipFiles(&buf, []Entry{
    {Path: p1, Name: "one.txt"},
    {Path: p2, Name: "two.txt"},
  })
  if err != nil {
    t.Fatalf("ZipFiles failed: %v", err)
  }

  got := readZip(t, buf.Bytes())
  if len(got) != 2 {
    t.Fatalf("expected 2 entries, got %d", len(got))
  }
  if got["one.txt"] != "first" || got["two.txt"] != "second" {
    t.Fatalf("unexpected zip contents: %#v", got)
  }
}

func TestZipFiles_MissingSource(t *testing.T) {
  var buf bytes.Buffer
  err := ZipFiles(&buf, []Entry{{Path: "/does/not/exist", Name: "x"}})
  if err == nil {
    t.Fatalf("expected error for missing source file")
  }
}

func TestZipTree_PreservesRelativePaths(t *testing.T) {
  root := t.TempDir()
  sub := filepath.Join(root, "pack-a")
  if err := os.MkdirAll(sub, 0o755); err != nil {
    t.Fatalf("failed to create subdir: %v", err)
  }
  writeTempFile(t, sub, "mesh.obj", "vertices")
  writeTempFile(t, root, "readme.txt", "hello")

  var buf bytes.Buffer
  if err := ZipTree(&buf, root); err != nil {
    t.Fatalf("ZipTree failed: %v", err)
  }

  got := readZip(t, buf.Bytes())
  if got["pack-a/mesh.obj"] != "vertices" {
    t.Fatalf("expected nested entry, got %#v", got)
  }
  if got["readme.txt"] != "hello" {
    t.Fatalf("expected top-level entry, got %#v", got)
  }
}
