package configstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/pkg/config"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

func TestGitHubVariablesStore(t *testing.T) {
	tests := []struct {
		name      string
		call      func(ctx context.Context, s *GitHubVariablesStore) error
		wantPath  string
		wantName  string
		wantValue string
	}{
		{
			name: "Session token",
			call: func(ctx context.Context, s *GitHubVariablesStore) error {
				return s.SetSessionToken(ctx, entities.Session("renewed-token"))
			},
			wantPath:  "/repos/owner/repo/actions/variables/CLIENT_SESSION",
			wantName:  "CLIENT_SESSION",
			wantValue: "renewed-token",
		},
		{
			name: "Disable flag",
			call: func(ctx context.Context, s *GitHubVariablesStore) error {
				return s.SetEnabled(ctx, false)
			},
			wantPath:  "/repos/owner/repo/actions/variables/SCRAPING_ENABLED",
			wantName:  "SCRAPING_ENABLED",
			wantValue: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
				assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

				var payload variablePayload
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				assert.Equal(t, tt.wantName, payload.Name)
				assert.Equal(t, tt.wantValue, payload.Value)

				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			store := NewGitHubVariablesStore(config.GitHubConfig{Token: "gh-token", Repository: "owner/repo", APIURL: server.URL + "/"})
			require.NoError(t, tt.call(context.Background(), store))
		})
	}
}

func TestGitHubVariablesStore_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Resource not accessible by integration"}`))
	}))
	defer server.Close()

	store := NewGitHubVariablesStore(config.GitHubConfig{Token: "gh-token", Repository: "owner/repo", APIURL: server.URL})
	err := store.SetEnabled(context.Background(), false)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfigStore))
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "SCRAPING_ENABLED")
}
