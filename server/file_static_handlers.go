package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed static/*
var staticFiles embed.FS

// assetType describes how one kind of embedded asset is served
type assetType struct {
	contentType  string
	cacheControl string
}

// staticAssets lists the extensions the front-end ships. Anything else under the
// static roots is not served.
var staticAssets = map[string]assetType{
	".css": {contentType: "text/css; charset=utf-8", cacheControl: "public, max-age=300, must-revalidate"},
	".js":  {contentType: "text/javascript; charset=utf-8", cacheControl: "public, max-age=300, must-revalidate"},
	".svg": {contentType: "image/svg+xml", cacheControl: "public, max-age=86400"},
	".png": {contentType: "image/png", cacheControl: "public, max-age=86400"},
	".ico": {contentType: "image/x-icon", cacheControl: "public, max-age=86400"},
}

func StaticFilesFS() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}

	return subFS
}

// StreamFile writes an embedded asset with its content type and cache policy
func StreamFile(w http.ResponseWriter, _ *http.Request, fileName string) error {
	asset, ok := staticAssets[strings.ToLower(path.Ext(fileName))]
	if !ok {
		return fmt.Errorf("unsupported asset type %s", fileName)
	}

	data, err := fs.ReadFile(StaticFilesFS(), fileName)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fileName, err)
	}

	w.Header().Set("Content-Type", asset.contentType)
	w.Header().Set("Cache-Control", asset.cacheControl)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s content: %w", fileName, err)
	}
	return nil
}
