package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(serverEnv, "")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTrainCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/train", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"trained","intents_count":12}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, "train", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "trained (12 intents)\n", out)
}

func TestTrainCommandReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"site unreachable"}`))
	}))
	defer srv.Close()

	_, err := runCmd(t, "train", "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site unreachable")
}

func TestServerFromEnvironment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","message":"ok","intents_count":1}`))
	}))
	defer srv.Close()

	root := newRootCmd()
	t.Setenv(serverEnv, srv.URL)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"train"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "ok (1 intents)\n", out.String())
}
