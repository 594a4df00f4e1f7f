package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/entrhq/dokimion/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := NewClient("")
		assert.Error(t, err)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		c, err := NewClient("http://localhost:8080/api/")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/api", c.BaseURL())
	})

	t.Run("applies timeout", func(t *testing.T) {
		c, err := NewClient("http://x", WithTimeout(2*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	})

	t.Run("timeout does not leak into a shared client", func(t *testing.T) {
		shared := &http.Client{}
		c, err := NewClient("http://x", WithHTTPClient(shared), WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), shared.Timeout)
		assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
		assert.NotSame(t, shared, c.httpClient)
	})

	t.Run("nil http client keeps the default", func(t *testing.T) {
		c, err := NewClient("http://x", WithHTTPClient(nil))
		require.NoError(t, err)
		require.NotNil(t, c.httpClient)
		assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
	})
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "demo/project", ProjectPath("demo"))
	assert.Equal(t, "demo/attribute", AttributesPath("demo"))
	assert.Equal(t, "demo/attribute/a1", AttributePath("demo", "a1"))
	assert.Equal(t, "my%20proj/attribute/a%2F1", AttributePath("my proj", "a/1"))
}

func TestClient_Post(t *testing.T) {
	var gotMethod, gotPath, gotUser, gotRoles string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotUser = r.Header.Get(HeaderUser)
		gotRoles = r.Header.Get(HeaderRoles)
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"new-id","name":"Color","attrValues":[{"key":"hex","value":"#fff"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/api", WithIdentity("alice", "admin", "qa"))
	require.NoError(t, err)

	attr := types.Attribute{Name: "Color", AttrValues: []types.KeyValue{{Key: "hex", Value: "#fff"}}}
	var created types.Attribute
	require.NoError(t, c.Post(context.Background(), AttributesPath("demo"), attr, &created))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/demo/attribute", gotPath)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "admin,qa", gotRoles)
	assert.Nil(t, gotBody["id"])
	assert.Equal(t, "Color", gotBody["name"])
	assert.Equal(t, "new-id", created.ID)
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/demo/attribute/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"attribute not found"}`))
		case "/api/demo/project":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL + "/api")
	require.NoError(t, err)

	err = c.Delete(context.Background(), AttributePath("demo", "missing"))
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, "request failed with status 404: attribute not found", err.Error())

	var project types.Project
	err = c.Get(context.Background(), ProjectPath("demo"), &project)
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "boom", statusErr.Message)

	assert.NoError(t, c.Delete(context.Background(), AttributePath("demo", "gone")))
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.Get(ctx, ProjectPath("demo"), &types.Project{})
	assert.ErrorIs(t, err, context.Canceled)
}
