// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

const (
	methodPropfind = "PROPFIND"
	methodMkcol    = "MKCOL"

	propfindBody = `<?xml version="1.0" encoding="utf-8"?>` +
		`<d:propfind xmlns:d="DAV:"><d:prop>` +
		`<d:resourcetype/><d:getcontentlength/><d:getlastmodified/>` +
		`</d:prop></d:propfind>`
)

// webdavTransport is the WebDAV implementation of [Transport] on top of the
// resty HTTP client. Collections are created on demand with MKCOL and
// remembered for the lifetime of the transport.
type webdavTransport struct {
	client   *utils.HTTPClient
	basePath string

	mu          sync.Mutex
	collections map[string]struct{}

	logger *logger.Logger
}

// NewWebDAVTransport constructs a WebDAV [Transport] rooted at cfg.URL.
// Returns an error if cfg.URL is empty or cannot be parsed as a valid URL.
func NewWebDAVTransport(cfg config.Adapter, log *logger.Logger) (Transport, error) {
	baseURL, err := normalizeBaseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid webdav url: %w", err)
	}
	u, _ := url.Parse(baseURL)

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)
	if cfg.Username != "" {
		client.SetBasicAuth(cfg.Username, cfg.Password)
	}
	if cfg.Insecure {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in
	}

	return &webdavTransport{
		client:      client,
		basePath:    strings.TrimRight(u.Path, "/"),
		collections: map[string]struct{}{"/": {}},
		logger:      log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// escape turns a slash separated remote path into a request path relative to
// the base URL.
func escape(remotePath string) string {
	return (&url.URL{Path: path.Join("/", remotePath)}).EscapedPath()
}

func (w *webdavTransport) Upload(ctx context.Context, localPath, remotePath string) (string, error) {
	remotePath = path.Join("/", remotePath)

	if err := w.ensureCollection(ctx, path.Dir(remotePath)); err != nil {
		return "", err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLocalFile, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLocalFile, err)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(f).
		Put(escape(remotePath))
	if err != nil {
		return "", fmt.Errorf("%w: upload request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	w.logger.Debug().
		Str("func", "webdavTransport.Upload").
		Str("remote_path", remotePath).
		Int64("size", info.Size()).
		Int("status", resp.StatusCode()).
		Msg("uploaded file")

	return remotePath, nil
}

// ensureCollection creates dir and its missing ancestors.
func (w *webdavTransport) ensureCollection(ctx context.Context, dir string) error {
	dir = path.Clean(dir)

	w.mu.Lock()
	_, known := w.collections[dir]
	w.mu.Unlock()
	if known {
		return nil
	}

	if err := w.ensureCollection(ctx, path.Dir(dir)); err != nil {
		return err
	}

	resp, err := w.client.R().
		SetContext(ctx).
		Execute(methodMkcol, escape(dir)+"/")
	if err != nil {
		return fmt.Errorf("%w: mkcol request: %w", ErrTransport, err)
	}

	// 405: the collection already exists
	if resp.StatusCode() != http.StatusMethodNotAllowed {
		if err = mapHTTPError(resp); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.collections[dir] = struct{}{}
	w.mu.Unlock()

	return nil
}

func (w *webdavTransport) Delete(ctx context.Context, remotePath string) (bool, error) {
	if _, err := w.Info(ctx, remotePath); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	resp, err := w.client.R().
		SetContext(ctx).
		Delete(escape(remotePath))
	if err != nil {
		return false, fmt.Errorf("%w: delete request: %w", ErrTransport, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if err = mapHTTPError(resp); err != nil {
		return false, err
	}

	return true, nil
}

func (w *webdavTransport) List(ctx context.Context, remoteDir string) ([]string, error) {
	root := path.Join("/", remoteDir)
	names := make([]string, 0, 64)

	pending := []string{root}
	for len(pending) > 0 {
		dir := pending[0]
		pending = pending[1:]

		entries, err := w.propfind(ctx, dir, "1")
		if errors.Is(err, ErrNotFound) && dir == root {
			return names, nil
		}
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			if e.path == dir {
				continue
			}
			if e.info.IsDir {
				pending = append(pending, e.path)
				continue
			}
			rel := strings.TrimPrefix(strings.TrimPrefix(e.path, root), "/")
			names = append(names, rel)
		}
	}

	sort.Strings(names)
	return names, nil
}

func (w *webdavTransport) Info(ctx context.Context, remotePath string) (models.RemoteInfo, error) {
	target := path.Join("/", remotePath)

	entries, err := w.propfind(ctx, target, "0")
	if err != nil {
		return models.RemoteInfo{}, err
	}
	if len(entries) == 0 {
		return models.RemoteInfo{}, fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	return entries[0].info, nil
}

func (w *webdavTransport) Ping(ctx context.Context) error {
	_, err := w.propfind(ctx, "/", "0")
	return err
}

func (w *webdavTransport) Close() error {
	return nil
}

type davEntry struct {
	path string
	info models.RemoteInfo
}

func (w *webdavTransport) propfind(ctx context.Context, remotePath, depth string) ([]davEntry, error) {
	target := escape(remotePath)
	if remotePath == "/" || strings.HasSuffix(remotePath, "/") {
		target = strings.TrimRight(target, "/") + "/"
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Depth", depth).
		SetHeader("Content-Type", "application/xml; charset=utf-8").
		SetBody(propfindBody).
		Execute(methodPropfind, target)
	if err != nil {
		return nil, fmt.Errorf("%w: propfind request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	entries, err := parseMultistatus(resp.Body(), w.basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: decode propfind response: %w", ErrTransport, err)
	}

	return entries, nil
}

type davMultistatus struct {
	XMLName   xml.Name      `xml:"DAV: multistatus"`
	Responses []davResponse `xml:"DAV: response"`
}

type davResponse struct {
	Href      string        `xml:"DAV: href"`
	Propstats []davPropstat `xml:"DAV: propstat"`
}

type davPropstat struct {
	Prop   davProp `xml:"DAV: prop"`
	Status string  `xml:"DAV: status"`
}

type davProp struct {
	ResourceType struct {
		Collection *struct{} `xml:"DAV: collection"`
	} `xml:"DAV: resourcetype"`
	ContentLength string `xml:"DAV: getcontentlength"`
	LastModified  string `xml:"DAV: getlastmodified"`
}

// parseMultistatus decodes a PROPFIND response. Hrefs are turned into
// remote paths by stripping basePath, the path component of the base URL.
func parseMultistatus(body []byte, basePath string) ([]davEntry, error) {
	var ms davMultistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil, err
	}

	entries := make([]davEntry, 0, len(ms.Responses))
	for _, r := range ms.Responses {
		u, err := url.Parse(strings.TrimSpace(r.Href))
		if err != nil {
			return nil, fmt.Errorf("bad href %q: %w", r.Href, err)
		}
		p := path.Join("/", strings.TrimPrefix(u.Path, basePath))

		info := models.RemoteInfo{Name: path.Base(p)}
		for _, ps := range r.Propstats {
			if ps.Status != "" && !strings.Contains(ps.Status, " 200 ") {
				continue
			}
			info.IsDir = info.IsDir || ps.Prop.ResourceType.Collection != nil
			if ps.Prop.ContentLength != "" {
				info.Size, _ = strconv.ParseInt(ps.Prop.ContentLength, 10, 64)
			}
			if ps.Prop.LastModified != "" {
				if t, err := http.ParseTime(ps.Prop.LastModified); err == nil {
					info.Modified = t.UTC()
				}
			}
		}

		entries = append(entries, davEntry{path: p, info: info})
	}

	return entries, nil
}
