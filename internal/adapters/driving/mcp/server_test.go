package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil sync service returns error", func(t *testing.T) {
		ports := &Ports{Session: fixedSession()}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSyncService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Sync:    &mockSyncService{},
			Session: fixedSession(),
			Tasks:   newRecordingRunner(t),
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil sync service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingSyncService)
	})

	t.Run("nil session returns error", func(t *testing.T) {
		ports := &Ports{Sync: &mockSyncService{}, Tasks: newRecordingRunner(t)}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingSession)
	})

	t.Run("nil task runner returns error", func(t *testing.T) {
		ports := &Ports{Sync: &mockSyncService{}, Session: fixedSession()}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingTaskRunner)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Sync:    &mockSyncService{},
			Session: fixedSession(),
			Tasks:   newRecordingRunner(t),
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}

func TestServer_ReadOnlySurface(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &mockSyncService{})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	assert.Contains(t, session.InitializeResult().Instructions, "read-only")

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"fetch_users", "fetch_teams", "fetch_repositories", "team_members", "last_pull_request",
	}, names)
}
