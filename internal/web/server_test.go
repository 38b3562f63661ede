package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/farm/internal/bank"
	"github.com/elys-network/farm/internal/operator"
	"github.com/elys-network/farm/internal/types"
)

const testAdminToken = "test-admin-token"

func setupTestServer(t *testing.T) *WebServer {
	t.Helper()

	op, err := operator.New(operator.Config{
		Window: types.RewardWindow{StartMS: 0, EndMS: 1_000_000},
		Params: types.FarmParameters{
			EmissionRatePerMS:  100,
			RewardSplitPercent: 10,
		},
		AdminToken:      testAdminToken,
		StakeCustody:    bank.NewReserve("uelys"),
		FeeCollector:    bank.NewFeeCollector("uelys"),
		PrimaryMinter:   bank.NewTokenMinter("uelys"),
		SecondaryMinter: bank.NewTokenMinter("ueden"),
	})
	require.NoError(t, err)

	return NewWebServer("0", op)
}

func doJSON(t *testing.T, ws *WebServer, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	ws.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}

func TestCreatePoolEndpoint(t *testing.T) {
	ws := setupTestServer(t)

	recorder := doJSON(t, ws, http.MethodPost, "/api/admin/pools", testAdminToken,
		createPoolRequest{AllocationPoint: 100, FeeRatePercent: 0})
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(0), body["pool_index"])

	recorder = doJSON(t, ws, http.MethodGet, "/api/pools", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), decodeBody(t, recorder)["count"])
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	ws := setupTestServer(t)

	recorder := doJSON(t, ws, http.MethodPost, "/api/admin/pools", "wrong-token",
		createPoolRequest{AllocationPoint: 100})
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doJSON(t, ws, http.MethodPost, "/api/admin/stop", "", nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestPositionEndpoints(t *testing.T) {
	ws := setupTestServer(t)

	recorder := doJSON(t, ws, http.MethodPost, "/api/admin/pools", testAdminToken,
		createPoolRequest{AllocationPoint: 100, FeeRatePercent: 0})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, ws, http.MethodPost, "/api/positions/increase", "",
		positionRequest{PoolIndex: 0, User: "alice", Amount: 100})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, ws, http.MethodGet, "/api/positions/0/alice", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var position types.Position
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &position))
	assert.Equal(t, uint64(100), position.Staked)

	// Over-withdrawal surfaces as a conflict, not a 500.
	recorder = doJSON(t, ws, http.MethodPost, "/api/positions/decrease", "",
		positionRequest{PoolIndex: 0, User: "alice", Amount: 101})
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestNotFoundMapping(t *testing.T) {
	ws := setupTestServer(t)

	recorder := doJSON(t, ws, http.MethodGet, "/api/pools/99", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doJSON(t, ws, http.MethodGet, "/api/pending/99/alice", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doJSON(t, ws, http.MethodGet, "/api/pools/not-a-number", "", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPendingEndpoint(t *testing.T) {
	ws := setupTestServer(t)

	recorder := doJSON(t, ws, http.MethodPost, "/api/admin/pools", testAdminToken,
		createPoolRequest{AllocationPoint: 100, FeeRatePercent: 0})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, ws, http.MethodPost, "/api/positions/increase", "",
		positionRequest{PoolIndex: 0, User: "alice", Amount: 100})
	require.Equal(t, http.StatusOK, recorder.Code)

	// The deposit ran against the wall clock, so ask far enough in the
	// future that the whole window has elapsed.
	recorder = doJSON(t, ws, http.MethodGet, "/api/pending/0/alice?now_ms=99999999999999", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "alice", body["user"])
	assert.NotEmpty(t, body["primary_reward"])
	assert.NotEmpty(t, body["secondary_reward"])
}
