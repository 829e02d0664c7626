package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/pkg/config"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

const sessionCookieName = "client_session"

var sessionCookiePattern = regexp.MustCompile(`client_session=([^;]+)`)

// ResponseClass is the outcome of an availability response
type ResponseClass int

const (
	ResponseSuccess ResponseClass = iota
	ResponseAuthFailure
	ResponseTransportError
)

func (c ResponseClass) String() string {
	switch c {
	case ResponseSuccess:
		return "success"
	case ResponseAuthFailure:
		return "auth_failure"
	default:
		return "transport_error"
	}
}

// ClassifyResponse decides whether a response means the session expired.
// The API answers an expired session with 401, with 500, or with an auth_error marker in the body.
func ClassifyResponse(status int, body []byte) ResponseClass {
	if status == http.StatusUnauthorized || status == http.StatusInternalServerError {
		return ResponseAuthFailure
	}
	if bytes.Contains(bytes.ToLower(body), []byte("auth_error")) {
		return ResponseAuthFailure
	}
	if status >= 200 && status < 300 {
		return ResponseSuccess
	}
	return ResponseTransportError
}

// CalendisAdapter implements AvailabilityProvider for the calendis.ro booking API
type CalendisAdapter struct {
	baseURL    string
	loginURL   string
	serviceID  string
	locationID string
	email      string
	password   string
	timeout    time.Duration
	client     *http.Client
}

// NewCalendisAdapter creates a new calendis adapter
func NewCalendisAdapter(cfg config.CalendisConfig) *CalendisAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CalendisAdapter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		loginURL:   cfg.LoginURL,
		serviceID:  cfg.ServiceID,
		locationID: cfg.LocationID,
		email:      cfg.Email,
		password:   cfg.Password,
		timeout:    timeout,
		client:     &http.Client{Timeout: timeout},
	}
}

// flexibleFlag accepts 1, true and "1" as set
type flexibleFlag bool

func (f *flexibleFlag) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	*f = flexibleFlag(raw == "1" || raw == "true")
	return nil
}

// flexibleID holds a staff id sent as a number, a string or null
type flexibleID struct {
	value *string
}

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		f.value = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.value = &s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("staff_id: %w", err)
	}
	s := n.String()
	f.value = &s
	return nil
}

type availabilityEnvelope struct {
	Success        flexibleFlag `json:"success"`
	AvailableSlots []struct {
		Time        *json.Number `json:"time"`
		IsAvailable flexibleFlag `json:"is_available"`
		StaffID     flexibleID   `json:"staff_id"`
	} `json:"available_slots"`
}

// GetAvailableSlots returns the raw slots of one day
func (a *CalendisAdapter) GetAvailableSlots(ctx context.Context, date entities.DateQuery, session entities.Session) ([]entities.Slot, error) {
	params := url.Values{}
	params.Set("service_id", a.serviceID)
	params.Set("location_id", a.locationID)
	params.Set("date", strconv.FormatInt(date.Unix(), 10))
	params.Set("day_only", "1")

	endpoint := fmt.Sprintf("%s/get_available_slots?%s", a.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to create availability request", err)
	}
	req.Header.Set("Cookie", fmt.Sprintf("cookie_message=0; %s=%s", sessionCookieName, session.Value()))
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError("availability request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to read availability response", err)
	}

	switch ClassifyResponse(resp.StatusCode, body) {
	case ResponseAuthFailure:
		return nil, apperrors.NewAuthError(fmt.Sprintf("session rejected for %s (status %d)", date.Label(), resp.StatusCode))
	case ResponseTransportError:
		return nil, apperrors.NewTransportError(fmt.Sprintf("availability api returned status %d", resp.StatusCode), nil)
	}

	var envelope availabilityEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewTransportError("malformed availability response", err)
	}

	if !envelope.Success {
		return []entities.Slot{}, nil
	}

	slots := make([]entities.Slot, 0, len(envelope.AvailableSlots))
	for i, item := range envelope.AvailableSlots {
		if item.Time == nil {
			return nil, apperrors.NewTransportError(fmt.Sprintf("slot %d has no time", i), nil)
		}
		seconds, err := item.Time.Int64()
		if err != nil {
			f, ferr := item.Time.Float64()
			if ferr != nil {
				return nil, apperrors.NewTransportError(fmt.Sprintf("slot %d has invalid time %q", i, item.Time.String()), err)
			}
			seconds = int64(f)
		}
		slots = append(slots, entities.Slot{
			Time:        time.Unix(seconds, 0).UTC(),
			StaffID:     item.StaffID.value,
			IsAvailable: bool(item.IsAvailable),
		})
	}

	return slots, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Login authenticates with the configured credentials and returns the issued session cookie
func (a *CalendisAdapter) Login(ctx context.Context) (entities.Session, error) {
	payload, err := json.Marshal(loginRequest{Email: a.email, Password: a.password, Remember: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	loginURL, err := url.Parse(a.loginURL)
	if err != nil {
		return "", apperrors.NewTransportError("invalid login url", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client := &http.Client{Timeout: a.timeout, Jar: jar, Transport: a.client.Transport}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL.String(), bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.NewTransportError("failed to create login request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", apperrors.NewTransportError("login request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.NewAuthError(fmt.Sprintf("login rejected (status %d)", resp.StatusCode))
	}

	for _, cookie := range jar.Cookies(loginURL) {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return entities.Session(cookie.Value), nil
		}
	}

	for _, header := range resp.Header.Values("Set-Cookie") {
		if m := sessionCookiePattern.FindStringSubmatch(header); m != nil && m[1] != "" {
			return entities.Session(m[1]), nil
		}
	}

	return "", apperrors.NewAuthError("login response carried no client_session cookie")
}
