// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

// memSFTP serves every dialled session from one in-memory filesystem over
// net.Pipe, so a redial sees the files of the previous session.
type memSFTP struct {
	handlers sftp.Handlers

	mu    sync.Mutex
	dials int
	peers []net.Conn
}

func (m *memSFTP) dial() (*sftp.Client, io.Closer, error) {
	serverConn, clientConn := net.Pipe()

	server := sftp.NewRequestServer(serverConn, m.handlers)
	go func() { _ = server.Serve() }()

	client, err := sftp.NewClientPipe(clientConn, clientConn)
	if err != nil {
		_ = clientConn.Close()
		_ = serverConn.Close()
		return nil, nil, err
	}

	m.mu.Lock()
	m.dials++
	m.peers = append(m.peers, serverConn)
	m.mu.Unlock()

	return client, clientConn, nil
}

// dropConnection closes the server side of the latest session, the way a
// restarted server or an idle timeout would.
func (m *memSFTP) dropConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.peers[len(m.peers)-1].Close()
}

func (m *memSFTP) dialCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dials
}

func newTestSFTP(t *testing.T) (*sftpTransport, *memSFTP) {
	t.Helper()

	srv := &memSFTP{handlers: sftp.InMemHandler()}
	tr := &sftpTransport{addr: "memory", dial: srv.dial, logger: logger.Nop()}
	t.Cleanup(func() {
		_ = tr.Close()
		srv.mu.Lock()
		defer srv.mu.Unlock()
		for _, c := range srv.peers {
			_ = c.Close()
		}
	})

	return tr, srv
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ── Upload / List ───────────────────────────────────────────────────────────

func TestSFTPUpload_CreatesDirectories(t *testing.T) {
	tr, _ := newTestSFTP(t)
	ctx := testCtx(t)

	got, err := tr.Upload(ctx, writeLocal(t, "a.txt", "hello"), "backup/reports/a.txt")

	require.NoError(t, err)
	assert.Equal(t, "/backup/reports/a.txt", got)

	info, err := tr.Info(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Name)
	assert.Equal(t, int64(5), info.Size)
	assert.False(t, info.IsDir)
}

func TestSFTPList_RecursiveRelativeNames(t *testing.T) {
	tr, _ := newTestSFTP(t)
	ctx := testCtx(t)

	for _, remote := range []string{"/backup/a.txt", "/backup/sub/b.txt", "/other/c.txt"} {
		_, err := tr.Upload(ctx, writeLocal(t, "f", remote), remote)
		require.NoError(t, err)
	}

	names, err := tr.List(ctx, "/backup")

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, names)
}

func TestSFTPList_MissingDirectoryIsEmpty(t *testing.T) {
	tr, _ := newTestSFTP(t)

	names, err := tr.List(testCtx(t), "/nothing-here")

	require.NoError(t, err)
	assert.Empty(t, names)
}

// ── Delete / Info ───────────────────────────────────────────────────────────

func TestSFTPDelete(t *testing.T) {
	tr, _ := newTestSFTP(t)
	ctx := testCtx(t)

	_, err := tr.Upload(ctx, writeLocal(t, "x.zip", "zip"), "/backup/x.zip")
	require.NoError(t, err)

	removed, err := tr.Delete(ctx, "/backup/x.zip")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = tr.Delete(ctx, "/backup/x.zip")
	require.NoError(t, err)
	assert.False(t, removed, "already absent is not an error")

	_, err = tr.Info(ctx, "/backup/x.zip")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ── session ─────────────────────────────────────────────────────────────────

func TestSFTPSession_NotFoundKeepsSession(t *testing.T) {
	tr, srv := newTestSFTP(t)
	ctx := testCtx(t)

	_, err := tr.Info(ctx, "/missing.txt")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, tr.Ping(ctx))

	assert.Equal(t, 1, srv.dialCount())
}

func TestSFTPSession_RedialsAfterConnectionLoss(t *testing.T) {
	tr, srv := newTestSFTP(t)

	require.NoError(t, tr.Ping(testCtx(t)))
	_, err := tr.Upload(testCtx(t), writeLocal(t, "a.txt", "a"), "/backup/a.txt")
	require.NoError(t, err)
	require.Equal(t, 1, srv.dialCount())

	srv.dropConnection()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = tr.Ping(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	require.NoError(t, tr.Ping(testCtx(t)))
	assert.Equal(t, 2, srv.dialCount())

	info, err := tr.Info(testCtx(t), "/backup/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Size)
}
