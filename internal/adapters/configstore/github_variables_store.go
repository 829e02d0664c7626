package configstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/internal/domain/providers"
	"github.com/boicualexandru/scraping-calendis/pkg/config"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

// Repository variable names read by the scheduled workflow on its next run
const (
	SessionVariable = "CLIENT_SESSION"
	EnabledVariable = "SCRAPING_ENABLED"
)

var _ providers.ConfigStore = (*GitHubVariablesStore)(nil)

// GitHubVariablesStore writes state into GitHub Actions repository variables
type GitHubVariablesStore struct {
	token      string
	repository string
	apiURL     string
	httpClient *http.Client
}

// NewGitHubVariablesStore creates a new repository-variables store
func NewGitHubVariablesStore(cfg config.GitHubConfig) *GitHubVariablesStore {
	return &GitHubVariablesStore{
		token:      cfg.Token,
		repository: cfg.Repository,
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type variablePayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SetSessionToken updates the CLIENT_SESSION variable
func (s *GitHubVariablesStore) SetSessionToken(ctx context.Context, session entities.Session) error {
	return s.updateVariable(ctx, SessionVariable, session.Value())
}

// SetEnabled updates the SCRAPING_ENABLED variable to "1" or "0"
func (s *GitHubVariablesStore) SetEnabled(ctx context.Context, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	return s.updateVariable(ctx, EnabledVariable, value)
}

func (s *GitHubVariablesStore) updateVariable(ctx context.Context, name, value string) error {
	endpoint := fmt.Sprintf("%s/repos/%s/actions/variables/%s", s.apiURL, s.repository, name)

	body, err := json.Marshal(variablePayload{Name: name, Value: value})
	if err != nil {
		return apperrors.NewConfigStoreError("failed to marshal variable", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewConfigStoreError("failed to create variable request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.NewConfigStoreError(fmt.Sprintf("failed to update %s", name), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.NewConfigStoreError(
			fmt.Sprintf("failed to update %s", name),
			fmt.Errorf("github api error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		)
	}

	return nil
}
