// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// sftpDialer opens an SFTP session and returns it with the connection that
// carries it.
type sftpDialer func() (*sftp.Client, io.Closer, error)

// sftpTransport is the SFTP implementation of [Transport]. The session is
// dialled lazily and dropped when a call outlives its context or fails on
// the connection itself, so the next call starts from a fresh connection.
type sftpTransport struct {
	addr      string
	sshConfig *ssh.ClientConfig
	dial      sftpDialer

	mu     sync.Mutex
	conn   io.Closer
	client *sftp.Client

	logger *logger.Logger
}

// NewSFTPTransport constructs an SFTP [Transport] for cfg.URL (host:port or
// sftp://host:port). Authentication uses cfg.KeyFile when set and
// cfg.Password otherwise; the host key is checked against
// cfg.KnownHostsFile (default ~/.ssh/known_hosts) unless cfg.Insecure.
func NewSFTPTransport(cfg config.Adapter, log *logger.Logger) (Transport, error) {
	addr := strings.TrimPrefix(strings.TrimSpace(cfg.URL), "sftp://")
	if addr == "" {
		return nil, fmt.Errorf("invalid sftp address: empty address")
	}
	if !strings.Contains(addr, ":") {
		addr += ":22"
	}

	auth, err := sshAuth(cfg)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := sshHostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	t := &sftpTransport{
		addr: addr,
		sshConfig: &ssh.ClientConfig{
			User:            cfg.Username,
			Auth:            auth,
			HostKeyCallback: hostKeyCallback,
			Timeout:         cfg.RequestTimeout,
		},
		logger: log,
	}
	t.dial = t.dialSSH

	return t, nil
}

func sshAuth(cfg config.Adapter) ([]ssh.AuthMethod, error) {
	methods := make([]ssh.AuthMethod, 0, 2)

	if cfg.KeyFile != "" {
		pem, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if len(methods) == 0 {
		return nil, errors.New("sftp requires a key file or a password")
	}

	return methods, nil
}

func sshHostKeyCallback(cfg config.Adapter) (ssh.HostKeyCallback, error) {
	if cfg.Insecure {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // opt-in
	}

	file := cfg.KnownHostsFile
	if file == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve known_hosts: %w", err)
		}
		file = filepath.Join(home, ".ssh", "known_hosts")
	}

	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}

	return cb, nil
}

func (t *sftpTransport) dialSSH() (*sftp.Client, io.Closer, error) {
	conn, err := ssh.Dial("tcp", t.addr, t.sshConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: ssh dial %s: %w", ErrTransport, t.addr, err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("%w: sftp session: %w", ErrTransport, err)
	}

	return client, conn, nil
}

// session returns the live SFTP client, dialling when there is none.
func (t *sftpTransport) session() (*sftp.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, nil
	}

	client, conn, err := t.dial()
	if err != nil {
		return nil, err
	}

	t.conn, t.client = conn, client
	return client, nil
}

// reset drops the session if it is still client. A nil client drops
// whatever session is open.
func (t *sftpTransport) reset(client *sftp.Client) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil || (client != nil && t.client != client) {
		return
	}
	_ = t.client.Close()
	if t.conn != nil {
		_ = t.conn.Close()
	}
	t.conn, t.client = nil, nil
}

// do runs fn against the session and abandons it when ctx ends first or
// when fn fails in a way that leaves the session unusable.
func (t *sftpTransport) do(ctx context.Context, fn func(c *sftp.Client) error) error {
	client, err := t.session()
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- fn(client) }()

	select {
	case err = <-done:
		if sessionBroken(err) {
			t.logger.Warn().Err(err).
				Str("func", "sftpTransport.do").
				Str("addr", t.addr).
				Msg("dropping sftp session")
			t.reset(client)
		}
		return err
	case <-ctx.Done():
		t.reset(client)
		<-done
		return fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
	}
}

// sessionBroken reports whether err came from the connection rather than
// from the remote entry. Missing and forbidden entries keep the session.
func sessionBroken(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		return false
	}
	return true
}

func (t *sftpTransport) Upload(ctx context.Context, localPath, remotePath string) (string, error) {
	remotePath = path.Join("/", remotePath)

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLocalFile, err)
	}
	defer src.Close()

	err = t.do(ctx, func(c *sftp.Client) error {
		if err := c.MkdirAll(path.Dir(remotePath)); err != nil {
			return mapSFTPError(err)
		}
		dst, err := c.Create(remotePath)
		if err != nil {
			return mapSFTPError(err)
		}
		if _, err = io.Copy(dst, src); err != nil {
			_ = dst.Close()
			return fmt.Errorf("%w: write %s: %w", ErrTransport, remotePath, err)
		}
		return mapSFTPError(dst.Close())
	})
	if err != nil {
		return "", err
	}

	return remotePath, nil
}

func (t *sftpTransport) Delete(ctx context.Context, remotePath string) (bool, error) {
	var removed bool

	err := t.do(ctx, func(c *sftp.Client) error {
		if _, err := c.Stat(path.Join("/", remotePath)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return mapSFTPError(err)
		}
		if err := c.Remove(path.Join("/", remotePath)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return mapSFTPError(err)
		}
		removed = true
		return nil
	})

	return removed, err
}

func (t *sftpTransport) List(ctx context.Context, remoteDir string) ([]string, error) {
	root := path.Join("/", remoteDir)
	names := make([]string, 0, 64)

	err := t.do(ctx, func(c *sftp.Client) error {
		walker := c.Walk(root)
		for walker.Step() {
			if err := walker.Err(); err != nil {
				if walker.Path() == root && errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return mapSFTPError(err)
			}
			if walker.Stat().IsDir() {
				continue
			}
			names = append(names, strings.TrimPrefix(strings.TrimPrefix(walker.Path(), root), "/"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

func (t *sftpTransport) Info(ctx context.Context, remotePath string) (models.RemoteInfo, error) {
	var info models.RemoteInfo

	err := t.do(ctx, func(c *sftp.Client) error {
		fi, err := c.Stat(path.Join("/", remotePath))
		if err != nil {
			return mapSFTPError(err)
		}
		info = models.RemoteInfo{
			Name:     fi.Name(),
			Size:     fi.Size(),
			Modified: fi.ModTime().UTC(),
			IsDir:    fi.IsDir(),
		}
		return nil
	})

	return info, err
}

func (t *sftpTransport) Ping(ctx context.Context) error {
	return t.do(ctx, func(c *sftp.Client) error {
		_, err := c.Getwd()
		return mapSFTPError(err)
	})
}

func (t *sftpTransport) Close() error {
	t.reset(nil)
	return nil
}

func mapSFTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}

	return fmt.Errorf("%w: %w", ErrTransport, err)
}
