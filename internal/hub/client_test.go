// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package hub

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	host, portStr, found := strings.Cut(strings.TrimPrefix(server.URL, "http://"), ":")
	require.True(t, found)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return New(Config{Protocol: "http", Host: host, Port: port, AgentUUID: "agent-uuid"})
}

func TestSendCreateCarriesBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("authorization"))
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	err := client.SendCreate(t.Context(), CreateMessage{PrettyPath: "a.txt", AbsolutePath: "/a.txt"})
	require.NoError(t, err)
	require.Equal(t, "Bearer agent-uuid", gotAuth.Load())
}

func TestSendUpdateUsesPUT(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	err := client.SendUpdate(t.Context(), UpdateMessage{PrettyPath: "a.txt", AbsolutePath: "/a.txt"})
	require.NoError(t, err)
}

func TestSendDeleteUsesDELETE(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	err := client.SendDelete(t.Context(), DeleteMessage{PrettyPath: "a.txt", AbsolutePath: "/a.txt"})
	require.NoError(t, err)
}

func TestSendReturnsErrorOnNonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.SendCreate(t.Context(), CreateMessage{PrettyPath: "a.txt", AbsolutePath: "/a.txt"})
	require.Error(t, err)
}

func TestHandshakeParsesQuotedUUID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/handshake", r.URL.Path)
		w.Write([]byte(`"3fa85f64-5717-4562-b3fc-2c963f66afa6"`))
	})

	uuid, err := client.Handshake(t.Context())
	require.NoError(t, err)
	require.Equal(t, "3fa85f64-5717-4562-b3fc-2c963f66afa6", uuid)
}
