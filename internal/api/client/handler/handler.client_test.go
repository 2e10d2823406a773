package clienthdl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"consult_crm/config"
	basesvc "consult_crm/internal/api/base/service"
	clientdto "consult_crm/internal/api/client/dto"
	clientmodels "consult_crm/internal/api/client/models"
	clientsvc "consult_crm/internal/api/client/service"
	verimodels "consult_crm/internal/api/verification/models"
	"consult_crm/internal/common"
	"consult_crm/internal/global"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memStore giữ khách theo MOU, đủ cho các route đọc và tạo
type memStore struct {
	byMou map[string]clientmodels.Client
}

func (m *memStore) InsertOne(_ context.Context, data clientmodels.Client) (clientmodels.Client, error) {
	if _, ok := m.byMou[data.MouNumber]; ok {
		return clientmodels.Client{}, common.ErrMongoDuplicate
	}
	data.ID = primitive.NewObjectID()
	m.byMou[data.MouNumber] = data
	return data, nil
}

func (m *memStore) FindOne(_ context.Context, filter interface{}, _ *options.FindOneOptions) (clientmodels.Client, error) {
	f := filter.(bson.M)
	c, ok := m.byMou[f["mouNumber"].(string)]
	if !ok {
		return clientmodels.Client{}, common.ErrNotFound
	}
	if css, scoped := f["cssValue"]; scoped && css != c.CssValue {
		return clientmodels.Client{}, common.ErrNotFound
	}
	return c, nil
}

func (m *memStore) Find(context.Context, interface{}, *options.FindOptions) ([]clientmodels.Client, error) {
	out := []clientmodels.Client{}
	for _, c := range m.byMou {
		out = append(out, c)
	}
	return out, nil
}

func (m *memStore) FindOneAndUpdate(context.Context, interface{}, *basesvc.UpdateData, *options.FindOneAndUpdateOptions) (clientmodels.Client, error) {
	return clientmodels.Client{}, common.ErrNotFound
}

func (m *memStore) DeleteOne(context.Context, interface{}) error { return nil }

type noAudit struct{}

func (noAudit) Record(context.Context, verimodels.Verification) error { return nil }

func newApp(t *testing.T, user string) (*fiber.App, *memStore) {
	t.Helper()
	global.InitValidator()
	store := &memStore{byMou: map[string]clientmodels.Client{}}
	h, err := NewClientHandler(clientsvc.NewClientServiceWithStore(store, noAudit{}))
	require.NoError(t, err)

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals("user_name", user)
		c.Locals("is_admin", false)
		return c.Next()
	})
	app.Post("/clients", h.HandleCreate)
	app.Get("/clients/:mou", h.HandleGetByMou)
	app.Get("/clients", h.HandleList)
	app.Patch("/clients/:mou/commitments/:id", h.HandleSetCommitmentStatus)
	return app, store
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestHandleCreateAndGet(t *testing.T) {
	app, _ := newApp(t, "amina")

	status, body := do(t, app, http.MethodPost, "/clients", `{"mouNumber":"MOU-1","customerName":"Nguyen Van A"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "amina", data["cssValue"])

	status, _ = do(t, app, http.MethodPost, "/clients", `{"mouNumber":"MOU-1","customerName":"B"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, body = do(t, app, http.MethodGet, "/clients/MOU-1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "MOU-1", body["data"].(map[string]interface{})["mouNumber"])
}

func TestHandleCreate_Validation(t *testing.T) {
	app, _ := newApp(t, "amina")

	status, body := do(t, app, http.MethodPost, "/clients", `{"mouNumber":"MOU-1"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.ErrCodeValidationInput.Code, body["code"])

	status, body = do(t, app, http.MethodPost, "/clients", `{"mouNumber":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.ErrCodeValidationFormat.Code, body["code"])

	status, _ = do(t, app, http.MethodPost, "/clients", `{"mouNumber":"MOU-2","customerName":"A","flag":"purple"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleGet_OtherOwnerIsNotFound(t *testing.T) {
	app, store := newApp(t, "bilal")
	store.byMou["MOU-1"] = clientmodels.Client{ID: primitive.NewObjectID(), MouNumber: "MOU-1", CssValue: "amina"}

	status, body := do(t, app, http.MethodGet, "/clients/MOU-1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error", body["status"])
}

func TestHandleList_InvalidPinned(t *testing.T) {
	app, _ := newApp(t, "amina")

	status, _ := do(t, app, http.MethodGet, "/clients?pinned=maybe", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := do(t, app, http.MethodGet, "/clients", "")
	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body["data"])
}

func TestHandleSetCommitmentStatus_RejectsUnknownStatus(t *testing.T) {
	app, _ := newApp(t, "amina")

	status, _ := do(t, app, http.MethodPatch, "/clients/MOU-1/commitments/"+primitive.NewObjectID().Hex(), `{"status":"catered"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleCreate_StatusMustBeConfiguredLabel(t *testing.T) {
	app, _ := newApp(t, "amina")
	prev := global.MongoDB_ServerConfig
	global.MongoDB_ServerConfig = &config.Configuration{ClientStatusLabels: "Docs Pending,Lodged"}
	t.Cleanup(func() { global.MongoDB_ServerConfig = prev })

	status, body := do(t, app, http.MethodPost, "/clients", `{"mouNumber":"MOU-7","customerName":"A","status":"Refused"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["details"], "crm_client_status")

	status, body = do(t, app, http.MethodPost, "/clients", `{"mouNumber":"MOU-7","customerName":"A","status":"Lodged"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Lodged", body["data"].(map[string]interface{})["status"])
}

func TestStatusInputs_UseItemStatusTag(t *testing.T) {
	global.InitValidator()

	err := global.ValidateStruct(clientdto.CommitmentStatusInput{Status: "pending"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crm_item_status")

	err = global.ValidateStruct(clientdto.HighlightStatusInput{Status: "done"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof", "trạng thái của commitment không dùng cho highlight")

	assert.NoError(t, global.ValidateStruct(clientdto.HighlightStatusInput{Status: "not catered"}))
}
