package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/farm/internal/farm"
	"github.com/elys-network/farm/internal/logger"
	"github.com/elys-network/farm/internal/operator"
	"github.com/elys-network/farm/internal/state"
	"github.com/elys-network/farm/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the farm's query and operation surface over HTTP.
type WebServer struct {
	router   *mux.Router
	port     string
	operator *operator.Operator
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, op *operator.Operator) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:   mux.NewRouter(),
		port:     port,
		operator: op,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/params", ws.handleGetParams).Methods("GET")
	api.HandleFunc("/pools", ws.handleGetPools).Methods("GET")
	api.HandleFunc("/pools/{index}", ws.handleGetPool).Methods("GET")
	api.HandleFunc("/pools/{index}/snapshots", ws.handleGetPoolSnapshots).Methods("GET")
	api.HandleFunc("/pending/{index}/{user}", ws.handleGetPending).Methods("GET")
	api.HandleFunc("/positions/{index}/{user}", ws.handleGetPosition).Methods("GET")
	api.HandleFunc("/receipts", ws.handleGetReceipts).Methods("GET")

	api.HandleFunc("/positions/increase", ws.handleIncrease).Methods("POST")
	api.HandleFunc("/positions/decrease", ws.handleDecrease).Methods("POST")
	api.HandleFunc("/positions/emergency-withdraw", ws.handleEmergencyWithdraw).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/pools", ws.handleCreatePool).Methods("POST")
	admin.HandleFunc("/pools/{index}/allocation", ws.handleSetAllocation).Methods("POST")
	admin.HandleFunc("/pools/{index}/fee-rate", ws.handleSetFeeRate).Methods("POST")
	admin.HandleFunc("/emission-rate", ws.handleSetEmissionRate).Methods("POST")
	admin.HandleFunc("/reward-split", ws.handleSetRewardSplit).Methods("POST")
	admin.HandleFunc("/fees/withdraw", ws.handleWithdrawFees).Methods("POST")
	admin.HandleFunc("/stop", ws.handleStopReward).Methods("POST")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func nowMS() uint64 {
	return uint64(time.Now().UnixMilli())
}

// queryNowMS allows read-only queries to ask about a hypothetical time via
// ?now_ms=; operations always use the server clock.
func queryNowMS(r *http.Request) uint64 {
	if raw := r.URL.Query().Get("now_ms"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return parsed
		}
	}
	return nowMS()
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbHealthy := state.TestDBConnection() == nil
	params, totalAllocation := ws.operator.Params()

	status := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		status = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"farm": map[string]interface{}{
			"pools":                  len(ws.operator.Pools()),
			"emission_rate_per_ms":   params.EmissionRatePerMS,
			"reward_split_percent":   params.RewardSplitPercent,
			"total_allocation_point": totalAllocation,
			"database_healthy":       dbHealthy,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

func (ws *WebServer) handleGetParams(w http.ResponseWriter, r *http.Request) {
	params, totalAllocation := ws.operator.Params()
	window := ws.operator.Window()

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"parameters":             params,
		"total_allocation_point": totalAllocation,
		"window":                 window,
		"collected_fees":         ws.operator.CollectedFees().String(),
	})
}

func (ws *WebServer) handleGetPools(w http.ResponseWriter, r *http.Request) {
	pools := ws.operator.Pools()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"pools": pools,
		"count": len(pools),
	})
}

func (ws *WebServer) handleGetPool(w http.ResponseWriter, r *http.Request) {
	index, ok := ws.poolIndexVar(w, r)
	if !ok {
		return
	}
	pool, err := ws.operator.Pool(index)
	if err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pool)
}

func (ws *WebServer) handleGetPoolSnapshots(w http.ResponseWriter, r *http.Request) {
	index, ok := ws.poolIndexVar(w, r)
	if !ok {
		return
	}
	limit := queryLimit(r, 20)
	snapshots, err := state.GetRecentPoolSnapshots(index, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get pool snapshots")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve pool snapshots")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

func (ws *WebServer) handleGetPending(w http.ResponseWriter, r *http.Request) {
	index, ok := ws.poolIndexVar(w, r)
	if !ok {
		return
	}
	user := mux.Vars(r)["user"]

	primary, secondary, err := ws.operator.PendingReward(index, user, queryNowMS(r))
	if err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"pool_index":       index,
		"user":             user,
		"primary_reward":   primary.String(),
		"secondary_reward": secondary.String(),
	})
}

func (ws *WebServer) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	index, ok := ws.poolIndexVar(w, r)
	if !ok {
		return
	}
	user := mux.Vars(r)["user"]

	position, err := ws.operator.Position(index, user)
	if err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, position)
}

func (ws *WebServer) handleGetReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := state.GetRecentReceipts(queryLimit(r, 20))
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get operation receipts")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve receipts")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"receipts": receipts,
		"count":    len(receipts),
	})
}

type positionRequest struct {
	PoolIndex uint64 `json:"pool_index"`
	User      string `json:"user"`
	Amount    uint64 `json:"amount"`
}

func (ws *WebServer) handleIncrease(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	err := ws.operator.IncreasePosition(types.PoolIndex(req.PoolIndex), req.User, req.Amount, nowMS())
	if err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) handleDecrease(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	funds, err := ws.operator.DecreasePosition(types.PoolIndex(req.PoolIndex), req.User, req.Amount, nowMS())
	if err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"funds":   funds.String(),
	})
}

func (ws *WebServer) handleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	funds, err := ws.operator.DecreasePositionEmergency(types.PoolIndex(req.PoolIndex), req.User)
	if err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"funds":   funds.String(),
	})
}

type createPoolRequest struct {
	AllocationPoint uint64 `json:"allocation_point"`
	FeeRatePercent  uint64 `json:"fee_rate_percent"`
}

func (ws *WebServer) handleCreatePool(w http.ResponseWriter, r *http.Request) {
	var req createPoolRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	index, err := ws.operator.CreatePool(adminToken(r), req.AllocationPoint, req.FeeRatePercent, nowMS())
	if err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"pool_index": index,
	})
}

type valueRequest struct {
	Value uint64 `json:"value"`
}

func (ws *WebServer) handleSetAllocation(w http.ResponseWriter, r *http.Request) {
	index, ok := ws.poolIndexVar(w, r)
	if !ok {
		return
	}
	var req valueRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.operator.SetAllocationPoint(adminToken(r), index, req.Value, nowMS()); err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) handleSetFeeRate(w http.ResponseWriter, r *http.Request) {
	index, ok := ws.poolIndexVar(w, r)
	if !ok {
		return
	}
	var req valueRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.operator.SetFeeRate(adminToken(r), index, req.Value); err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) handleSetEmissionRate(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.operator.SetEmissionRate(adminToken(r), req.Value, nowMS()); err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) handleSetRewardSplit(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.operator.SetRewardSplitPercent(adminToken(r), req.Value); err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

type withdrawFeesRequest struct {
	Amount string `json:"amount"`
}

func (ws *WebServer) handleWithdrawFees(w http.ResponseWriter, r *http.Request) {
	var req withdrawFeesRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	funds, err := ws.operator.WithdrawCollectedFees(adminToken(r), amount)
	if err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"funds":   funds.String(),
	})
}

func (ws *WebServer) handleStopReward(w http.ResponseWriter, r *http.Request) {
	if err := ws.operator.StopReward(adminToken(r)); err != nil {
		ws.writeOperationError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

// adminToken extracts the capability token from the Authorization header,
// tolerating an optional Bearer prefix.
func adminToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(token) > len(prefix) && token[:len(prefix)] == prefix {
		return token[len(prefix):]
	}
	return token
}

func queryLimit(r *http.Request, fallback int) int {
	limit := fallback
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return limit
}

func (ws *WebServer) poolIndexVar(w http.ResponseWriter, r *http.Request) (types.PoolIndex, bool) {
	raw := mux.Vars(r)["index"]
	index, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid pool index")
		return 0, false
	}
	return types.PoolIndex(index), true
}

func (ws *WebServer) decodeBody(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeOperationError maps engine errors onto HTTP status codes.
func (ws *WebServer) writeOperationError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, farm.ErrPoolNotFound), errors.Is(err, farm.ErrPositionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, farm.ErrInsufficientStake),
		errors.Is(err, farm.ErrOverflow),
		errors.Is(err, farm.ErrPoolInEmergency),
		errors.Is(err, farm.ErrPoolNotInEmergency),
		errors.Is(err, farm.ErrDuplicateRegistration),
		errors.Is(err, operator.ErrInvalidPercent):
		status = http.StatusConflict
	case errors.Is(err, operator.ErrUnauthorized):
		status = http.StatusForbidden
	}
	ws.writeErrorResponse(w, status, err.Error())
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
