package zoom

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) Issue() (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Issue() (string, error) { return "", errors.New("no signing key") }

func TestClient_ApproveRegistrant_SendsApproval(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotAuth   string
		gotBody   statusRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", staticToken("tok"), time.Second, zap.NewNop())
	res := client.ApproveRegistrant(context.Background(), "85746065432", "reg-1", "ada@example.com")

	assert.True(t, res.Approved)
	assert.NoError(t, res.Err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/meetings/85746065432/registrants/status", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "approve", gotBody.Action)
	require.Len(t, gotBody.Registrants, 1)
	assert.Equal(t, registrantRequest{ID: "reg-1", Email: "ada@example.com"}, gotBody.Registrants[0])
}

func TestClient_ApproveRegistrant_OnlyNoContentSucceeds(t *testing.T) {
	statuses := []int{http.StatusOK, http.StatusCreated, http.StatusFound, http.StatusBadRequest, http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError}

	for _, status := range statuses {
		status := status
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"code":3001,"message":"Meeting does not exist"}`))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, staticToken("tok"), time.Second, zap.NewNop())
			res := client.ApproveRegistrant(context.Background(), "1", "reg-1", "ada@example.com")

			assert.False(t, res.Approved)
		})
	}
}

func TestClient_ApproveRegistrant_KeepsResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":300}`))
	}))
	defer srv.Close()

	res := NewClient(srv.URL, staticToken("tok"), time.Second, nil).
		ApproveRegistrant(context.Background(), "1", "reg-1", "ada@example.com")

	assert.False(t, res.Approved)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, `{"code":300}`, res.Body)
	assert.NoError(t, res.Err)
}

func TestClient_ApproveRegistrant_Failures(t *testing.T) {
	t.Run("token error", func(t *testing.T) {
		res := NewClient("http://127.0.0.1:1", failingToken{}, time.Second, zap.NewNop()).
			ApproveRegistrant(context.Background(), "1", "reg-1", "ada@example.com")
		assert.False(t, res.Approved)
		assert.Error(t, res.Err)
	})

	t.Run("transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := srv.URL
		srv.Close()

		res := NewClient(url, staticToken("tok"), time.Second, zap.NewNop()).
			ApproveRegistrant(context.Background(), "1", "reg-1", "ada@example.com")
		assert.False(t, res.Approved)
		assert.Error(t, res.Err)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		res := NewClient(srv.URL, staticToken("tok"), 20*time.Millisecond, zap.NewNop()).
			ApproveRegistrant(context.Background(), "1", "reg-1", "ada@example.com")
		assert.False(t, res.Approved)
		assert.Error(t, res.Err)
	})
}
