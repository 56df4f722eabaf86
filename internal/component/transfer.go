// Package component moves custom field editor and content form components
// between the local source tree and the server's component store.
package component

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"sitesctl/internal/domain"
	"sitesctl/pkg/cli/api"
)

const (
	componentsPath = "/sites/management/api/v1/components"
	filesPath      = "/documents/api/1.2/files"
)

// Transfer exports, uploads and downloads components. Components live in
// <src>/components/<name>; exported archives go to <project>/dist.
type Transfer struct {
	client     *api.Client
	projectDir string
	sourceDir  string
	logger     *slog.Logger
}

// NewTransfer returns a Transfer using client for server calls.
func NewTransfer(client *api.Client, projectDir, sourceDir string, logger *slog.Logger) *Transfer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Transfer{client: client, projectDir: projectDir, sourceDir: sourceDir, logger: logger}
}

func (t *Transfer) componentDir(name string) string {
	return filepath.Join(t.sourceDir, "components", name)
}

func (t *Transfer) archivePath(name string) string {
	return filepath.Join(t.projectDir, "dist", name+".zip")
}

// ExportComponents zips each named component into the dist directory.
func (t *Transfer) ExportComponents(_ context.Context, names []string) (map[string]string, error) {
	if err := os.MkdirAll(filepath.Join(t.projectDir, "dist"), 0o755); err != nil {
		return nil, fmt.Errorf("create dist directory: %w", err)
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		src := t.componentDir(name)
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			return nil, domain.ErrNotFound("component %s does not exist", name)
		}
		path := t.archivePath(name)
		if err := writeArchive(src, name, path); err != nil {
			return nil, err
		}
		t.logger.Debug("component exported", "component", name, "archive", path)
		out[name] = path
	}
	return out, nil
}

// UploadComponent uploads the archive, imports it as component name and
// publishes it. It returns the id of the uploaded file.
func (t *Transfer) UploadComponent(ctx context.Context, name, archivePath string) (string, error) {
	fileID, err := t.uploadFile(ctx, archivePath)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	body := map[string]interface{}{
		"file":      fileID,
		"name":      name,
		"conflicts": map[string]string{"resolution": "overwrite"},
	}
	resp, err := t.client.DoContext(ctx, http.MethodPost, componentsPath, nil, body)
	if err != nil {
		return fileID, fmt.Errorf("import %s: %w", name, err)
	}
	if err := api.CheckError(resp); err != nil {
		return fileID, fmt.Errorf("import %s: %w", name, err)
	}

	resp, err = t.client.DoContext(ctx, http.MethodPost, componentsPath+"/name:"+url.PathEscape(name)+"/publish", nil, nil)
	if err != nil {
		return fileID, fmt.Errorf("publish %s: %w", name, err)
	}
	if err := api.CheckError(resp); err != nil {
		return fileID, fmt.Errorf("publish %s: %w", name, err)
	}
	t.logger.Debug("component uploaded", "component", name, "file", fileID)
	return fileID, nil
}

func (t *Transfer) uploadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("jsonInputParameters", `{"parentID":"self"}`); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("primaryFile", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	resp, err := t.client.DoRaw(ctx, http.MethodPost, filesPath+"/data", nil, mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := api.DecodeJSON(resp, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("server returned no file id")
	}
	return out.ID, nil
}

// DownloadComponents exports each component on the server and extracts it
// into the source tree. Every component is attempted; failures are joined.
func (t *Transfer) DownloadComponents(ctx context.Context, names []string) error {
	dest := filepath.Join(t.sourceDir, "components")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create components directory: %w", err)
	}
	var errs []error
	for _, name := range names {
		if err := t.download(ctx, name, dest); err != nil {
			errs = append(errs, fmt.Errorf("component %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (t *Transfer) download(ctx context.Context, name, dest string) error {
	resp, err := t.client.DoContext(ctx, http.MethodPost, componentsPath+"/name:"+url.PathEscape(name)+"/export", nil, map[string]string{})
	if err != nil {
		return err
	}
	var exported struct {
		File struct {
			ID string `json:"id"`
		} `json:"file"`
	}
	if err := api.DecodeJSON(resp, &exported); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if exported.File.ID == "" {
		return errors.New("export returned no file")
	}
	fileID := exported.File.ID

	resp, err = t.client.DoContext(ctx, http.MethodGet, filesPath+"/"+url.PathEscape(fileID)+"/data", nil, nil)
	if err != nil {
		return err
	}
	data, err := api.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	if err := api.ErrorFromBody(resp, data); err != nil {
		return fmt.Errorf("fetch archive: %w", err)
	}

	extractErr := extractArchive(data, dest)

	resp, err = t.client.DoContext(ctx, http.MethodDelete, filesPath+"/"+url.PathEscape(fileID), nil, nil)
	if err == nil {
		err = api.CheckError(resp)
	}
	if err != nil {
		t.logger.Warn("delete exported file failed", "component", name, "file", fileID, "error", err)
	}

	if extractErr != nil {
		return extractErr
	}
	t.logger.Debug("component downloaded", "component", name)
	return nil
}
