package verihdl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	basesvc "consult_crm/internal/api/base/service"
	clientmodels "consult_crm/internal/api/client/models"
	verimodels "consult_crm/internal/api/verification/models"
	"consult_crm/internal/common"
	"consult_crm/internal/tracker"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeClients struct {
	client *clientmodels.Client
}

func (f *fakeClients) FindByMou(_ context.Context, mou string, actor basesvc.Actor) (*clientmodels.Client, error) {
	if f.client == nil || f.client.MouNumber != mou || !actor.CanAccess(f.client.CssValue) {
		return nil, common.ErrNotFound
	}
	return f.client, nil
}

type fakeRows struct {
	rows      []verimodels.Verification
	lastLimit int
}

func (f *fakeRows) ListByClient(_ context.Context, clientID primitive.ObjectID, limit int) ([]verimodels.Verification, error) {
	f.lastLimit = limit
	var out []verimodels.Verification
	for _, r := range f.rows {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newApp(t *testing.T, clients *fakeClients, rows *fakeRows, user string) *fiber.App {
	t.Helper()
	h, err := NewVerificationHandler(clients, rows)
	require.NoError(t, err)
	app := fiber.New()
	app.Get("/clients/:mou/verifications", func(c fiber.Ctx) error {
		c.Locals("user_name", user)
		c.Locals("is_admin", false)
		return c.Next()
	}, h.HandleListByClient)
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHandleListByClient(t *testing.T) {
	clientID := primitive.NewObjectID()
	itemID := primitive.NewObjectID()
	clients := &fakeClients{client: &clientmodels.Client{ID: clientID, MouNumber: "MOU-1", CssValue: "amina"}}
	rows := &fakeRows{rows: []verimodels.Verification{
		{ClientID: clientID, CommitmentID: &itemID, Status: tracker.StatusDone, Action: verimodels.ActionStatus, VerifiedBy: "amina"},
		{ClientID: primitive.NewObjectID(), CommitmentID: &itemID, Status: tracker.StatusDone, Action: verimodels.ActionStatus},
	}}

	resp, err := newApp(t, clients, rows, "amina").Test(httptest.NewRequest(http.MethodGet, "/clients/MOU-1/verifications?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, ok := decode(t, resp)["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 1)
	assert.Equal(t, 5, rows.lastLimit)
}

func TestHandleListByClient_ScopedAndValidated(t *testing.T) {
	clients := &fakeClients{client: &clientmodels.Client{ID: primitive.NewObjectID(), MouNumber: "MOU-1", CssValue: "amina"}}
	rows := &fakeRows{}

	resp, err := newApp(t, clients, rows, "bilal").Test(httptest.NewRequest(http.MethodGet, "/clients/MOU-1/verifications", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = newApp(t, clients, rows, "amina").Test(httptest.NewRequest(http.MethodGet, "/clients/MOU-1/verifications?limit=x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = newApp(t, clients, rows, "amina").Test(httptest.NewRequest(http.MethodGet, "/clients/MOU-1/verifications", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, ok := decode(t, resp)["data"].([]interface{})
	require.True(t, ok, "kết quả rỗng vẫn là mảng")
	assert.Empty(t, data)
}
