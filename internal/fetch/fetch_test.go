package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "plain title",
			status: http.StatusOK,
			body:   `<html><head><title>Cheese shop</title></head></html>`,
			want:   "Cheese shop",
		},
		{
			name:   "entities and whitespace collapse",
			status: http.StatusOK,
			body:   "<html><head><title>\n  Fish &amp; Chips \n </title></head></html>",
			want:   "Fish & Chips",
		},
		{
			name:   "title with attributes, mixed case",
			status: http.StatusOK,
			body:   `<TITLE lang="en">Bakery</TITLE>`,
			want:   "Bakery",
		},
		{
			name:    "no title tag",
			status:  http.StatusOK,
			body:    `<html><body>nothing here</body></html>`,
			wantErr: true,
		},
		{
			name:    "empty title",
			status:  http.StatusOK,
			body:    `<title>   </title>`,
			wantErr: true,
		},
		{
			name:    "server error",
			status:  http.StatusNotFound,
			body:    `<title>404</title>`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			got, err := New().Title(context.Background(), srv.URL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleUnreachableHost(t *testing.T) {
	srv := serve(t, http.StatusOK, "")
	srv.Close()
	_, err := New().Title(context.Background(), srv.URL)
	assert.Error(t, err)
}
