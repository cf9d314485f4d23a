package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/college-predictor/prompt-manager-fe/internal/domain/model"
	apperrors "github.com/college-predictor/prompt-manager-fe/internal/errors"
)

// resultOK is the backend's success sentinel.
const resultOK = "ok"

// authTypeIdentityToken selects the identity-token login flow in the
// backend's auth_type discriminator.
const authTypeIdentityToken = 0

// LoginData is the backend-confirmed identity returned by the exchange.
type LoginData struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginPayload struct {
	AuthType int    `json:"auth_type"`
	Token    string `json:"token"`
}

type loginResponse struct {
	Result string    `json:"result"`
	Data   LoginData `json:"data"`
}

type resultResponse struct {
	Result string `json:"result"`
}

type actionPayload struct {
	Action string `json:"action"`
}

type configPayload struct {
	Class string `json:"class"`
}

type createProjectPayload struct {
	Action string `json:"action"`
	model.CreateProjectInput
}

// collection is the backend's count-plus-items list envelope.
type collection[T any] struct {
	Count int `json:"count"`
	Data  []T `json:"data"`
}

type listResponse[T any] struct {
	Result string        `json:"result"`
	Data   collection[T] `json:"data"`
}

// Login exchanges an identity token for a backend-confirmed identity.
// A non-ok result is an AuthExchange failure; it is not retried here.
func (c *Client) Login(ctx context.Context, token string) (LoginData, error) {
	if token == "" {
		return LoginData{}, apperrors.Validation("identity token is required")
	}

	body, err := c.Do(ctx, http.MethodPost, "/auth/login", loginPayload{
		AuthType: authTypeIdentityToken,
		Token:    token,
	})
	if err != nil {
		return LoginData{}, err
	}

	var resp loginResponse
	if unmarshalErr := json.Unmarshal(body, &resp); unmarshalErr != nil {
		return LoginData{}, apperrors.Wrap(unmarshalErr, apperrors.ErrCodeAuthExchange, "decode login response")
	}
	if resp.Result != resultOK {
		return LoginData{}, apperrors.AuthExchangef("backend rejected identity token: result %q", resp.Result)
	}
	return resp.Data, nil
}

// Logout tells the backend to drop its session. Callers treat failures
// as best-effort: local teardown proceeds regardless.
func (c *Client) Logout(ctx context.Context) error {
	body, err := c.Do(ctx, http.MethodPost, "/auth/logout", struct{}{})
	if err != nil {
		return err
	}

	var resp resultResponse
	if unmarshalErr := json.Unmarshal(body, &resp); unmarshalErr != nil {
		return apperrors.Wrap(unmarshalErr, apperrors.ErrCodeDomainFetch, "decode logout response")
	}
	if resp.Result != resultOK {
		return apperrors.DomainFetchf("backend logout failed: result %q", resp.Result)
	}
	return nil
}

// ListProjects fetches the caller's projects.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	body, err := c.Do(ctx, http.MethodPost, "/api/projects", actionPayload{Action: "list"})
	if err != nil {
		return nil, err
	}
	return decodeList[model.Project](body, "projects")
}

// CreateProject creates a project from the given input.
func (c *Client) CreateProject(ctx context.Context, in model.CreateProjectInput) error {
	if in.Name == "" {
		return apperrors.Validation("project name is required")
	}

	body, err := c.Do(ctx, http.MethodPost, "/api/projects", createProjectPayload{
		Action:             "new",
		CreateProjectInput: in,
	})
	if err != nil {
		return err
	}
	return checkResult(body, "create project")
}

// DeleteProject deletes the project with the given ID.
func (c *Client) DeleteProject(ctx context.Context, projectID int) error {
	body, err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/projects/%d", projectID),
		actionPayload{Action: "delete"})
	if err != nil {
		return err
	}
	return checkResult(body, "delete project")
}

// ListModels fetches the configured model catalogue.
func (c *Client) ListModels(ctx context.Context) ([]model.Model, error) {
	body, err := c.Do(ctx, http.MethodPost, "/api/config", configPayload{Class: "models"})
	if err != nil {
		return nil, err
	}
	return decodeList[model.Model](body, "models")
}

// decodeList decodes a count-plus-items envelope and enforces the ok
// sentinel.
func decodeList[T any](body []byte, what string) ([]T, error) {
	var resp listResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeDomainFetch, "decode %s response", what)
	}
	if resp.Result != resultOK {
		return nil, apperrors.DomainFetchf("failed to fetch %s: result %q", what, resp.Result)
	}
	return resp.Data.Data, nil
}

// checkResult enforces the ok sentinel on mutation responses.
func checkResult(body []byte, what string) error {
	var resp resultResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeDomainFetch, "decode %s response", what)
	}
	if resp.Result != resultOK {
		return apperrors.DomainFetchf("%s failed: result %q", what, resp.Result)
	}
	return nil
}
