package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/college-predictor/prompt-manager-fe/internal/domain/model"
	apperrors "github.com/college-predictor/prompt-manager-fe/internal/errors"
)

func TestClient_Login_SendsIdentityTokenPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":"ok","data":{"email":"alice@example.com","name":"Alice"}}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)
	data, err := client.Login(context.Background(), "id-token")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", data.Email)
	assert.Equal(t, "Alice", data.Name)
	assert.Equal(t, float64(0), got["auth_type"])
	assert.Equal(t, "id-token", got["token"])
}

func TestClient_Login_EmptyToken(t *testing.T) {
	client, _, _ := newTestClient(t, "http://localhost:1")
	_, err := client.Login(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestClient_Login_NonOKResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error"}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)
	_, err := client.Login(context.Background(), "id-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthExchange(err))
}

func TestClient_Logout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)
	require.NoError(t, client.Logout(context.Background()))
}

func TestClient_ListProjects_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "list", payload["action"])
		_, _ = w.Write([]byte(`{
			"result": "ok",
			"data": {
				"count": 2,
				"data": [
					{"id": 1, "name": "alpha", "role": 1, "models": []},
					{"id": 2, "name": "beta", "role": 2, "models": [{"id": 7, "model_name": "gpt"}]}
				]
			}
		}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)
	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)

	require.Len(t, projects, 2)
	assert.Equal(t, "alpha", projects[0].Name)
	assert.Equal(t, 2, projects[1].Role)
	require.Len(t, projects[1].Models, 1)
	assert.Equal(t, "gpt", projects[1].Models[0].ModelName)
}

func TestClient_CreateProject_SendsActionAndInput(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/projects", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)
	err := client.CreateProject(context.Background(), model.CreateProjectInput{
		Name:        "alpha",
		Description: "first",
		ModelIDs:    []int{1, 2},
		APIKeys:     map[string]string{"3": "sk-xyz"},
	})
	require.NoError(t, err)

	assert.Equal(t, "new", got["action"])
	assert.Equal(t, "alpha", got["name"])
	assert.Equal(t, []any{float64(1), float64(2)}, got["llm_models"])
	assert.Equal(t, map[string]any{"3": "sk-xyz"}, got["api_keys"])
}

func TestClient_CreateProject_RequiresName(t *testing.T) {
	client, _, _ := newTestClient(t, "http://localhost:1")
	err := client.CreateProject(context.Background(), model.CreateProjectInput{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestClient_DeleteProject_TargetsProjectPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/projects/42", r.URL.Path)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "delete", payload["action"])
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)
	require.NoError(t, client.DeleteProject(context.Background(), 42))
}

func TestClient_ListModels_UsesConfigClass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/config", r.URL.Path)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "models", payload["class"])
		_, _ = w.Write([]byte(`{
			"result": "ok",
			"data": {
				"count": 1,
				"data": [{"id": 7, "model_name": "claude", "provider_name": "anthropic", "temperature_allowed": true}]
			}
		}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)
	models, err := client.ListModels(context.Background())
	require.NoError(t, err)

	require.Len(t, models, 1)
	assert.Equal(t, "claude", models[0].ModelName)
	assert.True(t, models[0].TemperatureAllowed)
}

func TestClient_ListProjects_NonOKResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error"}`))
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)
	_, err := client.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsDomainFetch(err))
}
