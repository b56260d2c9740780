package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user/entity"
)

type listEnvelope struct {
	Status int           `json:"status"`
	Msg    string        `json:"msg"`
	Data   []entity.User `json:"data"`
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) listEnvelope {
	t.Helper()
	var env listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandler_InsertAndList(t *testing.T) {
	svc, _ := setupService(t)
	h := NewHandler(svc, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/admin/insert/user/", strings.NewReader(`{"email":"a@b.com","password":"pw1"}`))
	rec := httptest.NewRecorder()
	h.Insert(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeList(t, rec)
	assert.Equal(t, 0, env.Status)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "a@b.com", env.Data[0].Email)
	assert.True(t, env.Data[0].IsActive)
	assert.NotContains(t, rec.Body.String(), "hashed_password")

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/admin/user/list", nil))
	assert.Len(t, decodeList(t, rec).Data, 1)
}

func TestHandler_InsertDuplicate(t *testing.T) {
	svc, _ := setupService(t)
	h := NewHandler(svc, zap.NewNop().Sugar())

	for i, want := range []int{http.StatusOK, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/admin/insert/user/", strings.NewReader(`{"email":"d@b.com","password":"pw"}`))
		rec := httptest.NewRecorder()
		h.Insert(rec, req)
		assert.Equal(t, want, rec.Code, "attempt %d", i)
	}
}

func TestHandler_InsertBadPayload(t *testing.T) {
	svc, _ := setupService(t)
	h := NewHandler(svc, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.Insert(rec, httptest.NewRequest(http.MethodPost, "/admin/insert/user/", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Insert(rec, httptest.NewRequest(http.MethodPost, "/admin/insert/user/", strings.NewReader(`{"email":"x@y.com"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":1`)
}

func TestHandler_UpdatePassword(t *testing.T) {
	svc, _ := setupService(t)
	h := NewHandler(svc, zap.NewNop().Sugar())
	u, err := svc.CreateUser(context.Background(), "u@b.com", "old")
	require.NoError(t, err)

	body := `{"user_id":` + strconv.FormatInt(u.ID, 10) + `,"new_pwd":"new"}`
	rec := httptest.NewRecorder()
	h.UpdatePassword(rec, httptest.NewRequest(http.MethodPost, "/admin/update/pwd/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec).Data, 1)

	_, err = svc.AuthenticatePassword(context.Background(), "u@b.com", "new")
	assert.NoError(t, err)
}

func TestHandler_ChangeStatusAndDelete(t *testing.T) {
	svc, r := setupService(t)
	h := NewHandler(svc, zap.NewNop().Sugar())
	u, err := svc.CreateUser(context.Background(), "s@b.com", "pw")
	require.NoError(t, err)
	id := strconv.FormatInt(u.ID, 10)

	req := httptest.NewRequest(http.MethodPost, "/admin/change/status/"+id, nil)
	req.SetPathValue("user_id", id)
	rec := httptest.NewRecorder()
	h.ChangeStatus(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":0,"msg":"","data":""}`, rec.Body.String())

	stored, err := r.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	req = httptest.NewRequest(http.MethodDelete, "/admin/delete/user/"+id, nil)
	req.SetPathValue("user_id", id)
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// deleting again is still fine
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// toggling a missing user is a 404
	rec = httptest.NewRecorder()
	h.ChangeStatus(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_BadPathID(t *testing.T) {
	svc, _ := setupService(t)
	h := NewHandler(svc, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodDelete, "/admin/delete/user/abc", nil)
	req.SetPathValue("user_id", "abc")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
