package gcp

import (
  "context"
  "fmt"
  "io"
  "os"
  "strings"
  "time"

  "google.golang.org/api/drive/v3"
  "google.golang.org/api/option"

  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveFile describes one remote object as the rest of the system
// sees it.
type DriveFile struct {
  ID          string `json:"id"`
  Name        string `json:"name"`
  MimeType    string `json:"mime_type"`
  WebViewLink string `json:"web_view_link,omitempty"`
  PublicURL   string `json:"public_url,omitempty"`
}

// DriveService wraps the Google Drive v3 API. It is the only binary
// backend for asset files: one folder per asset under the configured
// root folder, every created object shared "anyone with link, reader".
type DriveService interface {
  RootFolderID() string
  CreateFolder(ctx context.Context, name, parentID string) (string, error)
  Upload(ctx context.Context, localPath, name, folderID string) (*DriveFile, error)
  Delete(ctx context.Context, fileID string) error
  ListFolder(ctx context.Context, folderID string) ([]*DriveFile, error)
  FindFolderByName(ctx context.Context, name, parentID string) (string, error)
  Download(ctx context.Context, fileID, destPath string) error
  GetFileMeta(ctx context.Context, fileID string) (*DriveFile, error)
  OpenFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

type driveService struct {
  log          *logger.Logger
  srv          *drive.Service
  rootFolderID string
}

func NewDriveService(log *logger.Logger) (DriveService, error) {
  serviceLog := log.With("service", "DriveService")

  rootFolderID := strings.TrimSpace(os.Getenv("DRIVE_ASSETS_FOLDER_ID"))
  if rootFolderID == "" {
    return nil, fmt.Errorf("missing env var DRIVE_ASSETS_FOLDER_ID")
  }

  ctx := context.Background()
  opts := ClientOptionsFromEnv()
  opts = append(opts, option.WithScopes(drive.DriveScope))
  srv, err := drive.NewService(ctx, opts...)
  if err != nil {
    return nil, fmt.Errorf("failed to create drive client: %w", err)
  }

  return &driveService{
    log:          serviceLog,
    srv:          srv,
    rootFolderID: rootFolderID,
  }, nil
}

func (ds *driveService) RootFolderID() string {
  return ds.rootFolderID
}

func (ds *driveService) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
  ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()

  if parentID == "" {
    parentID = ds.rootFolderID
  }
  meta := &drive.File{
    Name:     name,
    MimeType: folderMimeType,
    Parents:  []string{parentID},
  }
  created, err := ds.srv.Files.Create(meta).Fields("id").Context(ctx).Do()
  if err != nil {
    return "", fmt.Errorf("failed to create drive folder %q: %w", name, err)
  }
  if err := ds.shareWithLink(ctx, created.Id); err != nil {
    return "", err
  }
  return created.Id, nil
}

func (ds *driveService) Upload(ctx context.Context, localPath, name, folderID string) (*DriveFile, error) {
  ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
  defer cancel()

  f, err := os.Open(localPath)
  if err != nil {
    return nil, fmt.Errorf("failed to open local file %q: %w", localPath, err)
  }
  defer f.Close()

  if folderID == "" {
    folderID = ds.rootFolderID
  }
  meta := &drive.File{
    Name:    name,
    Parents: []string{folderID},
  }
  created, err := ds.srv.Files.Create(meta).Media(f).Fields("id, webViewLink").Context(ctx).Do()
  if err != nil {
    return nil, fmt.Errorf("failed to upload %q to drive: %w", name, err)
  }
  if err := ds.shareWithLink(ctx, created.Id); err != nil {
    return nil, err
  }
  return &DriveFile{
    ID:          created.Id,
    Name:        name,
    WebViewLink: created.WebViewLink,
    PublicURL:   PublicFileURL(created.Id),
  }, nil
}

func (ds *driveService) Delete(ctx context.Context, fileID string) error {
  ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()

  if err := ds.srv.Files.Delete(fileID).Context(ctx).Do(); err != nil {
    return fmt.Errorf("failed to delete drive object %q: %w", fileID, err)
  }
  return nil
}

func (ds *driveService) ListFolder(ctx context.Context, folderID string) ([]*DriveFile, error) {
  ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()

  q := fmt.Sprintf("'%s' in parents and trashed=false", escapeQueryTerm(folderID))
  out := []*DriveFile{}
  pageToken := ""
  for {
    call := ds.srv.Files.List().
      Q(q).
      Fields("nextPageToken, files(id, name, mimeType, webViewLink)").
      Spaces("drive").
      Context(ctx)
    if pageToken != "" {
      call = call.PageToken(pageToken)
    }
    res, err := call.Do()
    if err != nil {
      return nil, fmt.Errorf("failed to list drive folder %q: %w", folderID, err)
    }
    for _, f := range res.Files {
      out = append(out, &DriveFile{
        ID:          f.Id,
        Name:        f.Name,
        MimeType:    f.MimeType,
        WebViewLink: f.WebViewLink,
        PublicURL:   PublicFileURL(f.Id),
      })
    }
    if res.NextPageToken == "" {
      break
    }
    pageToken = res.NextPageToken
  }
  return out, nil
}

func (ds *driveService) FindFolderByName(ctx context.Context, name, parentID string) (string, error) {
  ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()

  if parentID == "" {
    parentID = ds.rootFolderID
  }
  q := fmt.Sprintf(
    "'%s' in parents and mimeType = '%s' and name = '%s' and trashed = false",
    escapeQueryTerm(parentID), folderMimeType, escapeQueryTerm(name),
  )
  res, err := ds.srv.Files.List().Q(q).Fields("files(id, name)").Spaces("drive").Context(ctx).Do()
  if err != nil {
    return "", fmt.Errorf("failed to search drive folder %q: %w", name, err)
  }
  if len(res.Files) == 0 {
    return "", fmt.Errorf("drive folder %q: %w", name, apperr.ErrNotFound)
  }
  return res.Files[0].Id, nil
}

func (ds *driveService) Download(ctx context.Context, fileID, destPath string) error {
  ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
  defer cancel()

  res, err := ds.srv.Files.Get(fileID).Context(ctx).Download()
  if err != nil {
    return fmt.Errorf("failed to download drive object %q: %w", fileID, err)
  }
  defer res.Body.Close()

  dest, err := os.Create(destPath)
  if err != nil {
    return fmt.Errorf("failed to create local file %q: %w", destPath, err)
  }
  if _, err := io.Copy(dest, res.Body); err != nil {
    _ = dest.Close()
    return fmt.Errorf("failed to write drive object %q to %q: %w", fileID, destPath, err)
  }
  if err := dest.Close(); err != nil {
    return fmt.Errorf("failed to close local file %q: %w", destPath, err)
  }
  return nil
}

func (ds *driveService) GetFileMeta(ctx context.Context, fileID string) (*DriveFile, error) {
  ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()

  f, err := ds.srv.Files.Get(fileID).Fields("id, name, mimeType").Context(ctx).Do()
  if err != nil {
    return nil, fmt.Errorf("failed to get drive metadata for %q: %w", fileID, err)
  }
  return &DriveFile{
    ID:        f.Id,
    Name:      f.Name,
    MimeType:  f.MimeType,
    PublicURL: PublicFileURL(f.Id),
  }, nil
}

// OpenFile returns the media stream for a drive object. No deadline is
// attached: the caller streams the body to the client and closes it.
func (ds *driveService) OpenFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
  res, err := ds.srv.Files.Get(fileID).Context(ctx).Download()
  if err != nil {
    return nil, fmt.Errorf("failed to open drive stream for %q: %w", fileID, err)
  }
  return res.Body, nil
}

func (ds *driveService) shareWithLink(ctx context.Context, fileID string) error {
  perm := &drive.Permission{
    Role: "reader",
    Type: "anyone",
  }
  if _, err := ds.srv.Permissions.Create(fileID, perm).Context(ctx).Do(); err != nil {
    return fmt.Errorf("failed to share drive object %q: %w", fileID, err)
  }
  return nil
}

func PublicFileURL(fileID string) string {
  return fmt.Sprintf("https://drive.google.com/uc?id=%s", fileID)
}

func escapeQueryTerm(s string) string {
  s = strings.ReplaceAll(s, `\`, `\\`)
  return strings.ReplaceAll(s, `'`, `\'`)
}
