package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"twq_coin/internal/domain"
	"twq_coin/internal/http/middleware"
	"twq_coin/internal/ledger"
	"twq_coin/internal/service"
	"twq_coin/internal/snapshot"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.LedgerService) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	service.InitJWT()

	store, err := snapshot.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := service.NewLedgerService(ledger.DefaultConfig(), store, store, nil)
	h := NewHandler(svc, nil, nil, "tok", "test_bot")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("", middleware.JWT())
	authed.GET("/me", h.Me)
	authed.GET("/me/transactions", h.Transactions)
	authed.POST("/points", h.AddPoints)
	authed.POST("/mining/claim", h.ClaimMining)
	return r, svc
}

func authToken(t *testing.T, svc *service.LedgerService) string {
	t.Helper()
	acc, _, err := svc.Authenticate(context.Background(), service.TgUser{ID: 42, Username: "u"}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	token, err := service.GenerateJWT(acc.PlayerID)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAddPointsEndpoint(t *testing.T) {
	r, svc := newTestRouter(t)
	token := authToken(t, svc)

	req := httptest.NewRequest("POST", "/points", strings.NewReader(`{"amount":7}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		TotalPoints int64 `json:"total_points"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// daily login award from Authenticate plus the tap
	want := ledger.DefaultDailySchedule[0] + 7
	if resp.TotalPoints != want {
		t.Fatalf("total = %d; want %d", resp.TotalPoints, want)
	}
}

func TestAddPointsEndpoint_NegativeRejected(t *testing.T) {
	r, svc := newTestRouter(t)
	token := authToken(t, svc)

	req := httptest.NewRequest("POST", "/points", strings.NewReader(`{"amount":-5}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestClaimMiningEndpoint_NotMatured(t *testing.T) {
	r, svc := newTestRouter(t)
	token := authToken(t, svc)

	req := httptest.NewRequest("POST", "/mining/claim", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d; want 409", w.Code)
	}
}

func TestMeEndpoint_Unauthorized(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
}

type fakeHistory struct {
	txs []*domain.Transaction
}

func (f *fakeHistory) GetByPlayerID(_ context.Context, playerID string, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, tx := range f.txs {
		if tx.PlayerID == playerID && len(out) < limit {
			out = append(out, tx)
		}
	}
	return out, nil
}

func TestTransactionsEndpoint(t *testing.T) {
	r, svc := newTestRouter(t)
	token := authToken(t, svc)

	acc, err := svc.Get(context.Background(), tokenPlayerID(t, token))
	if err != nil {
		t.Fatal(err)
	}

	history := &fakeHistory{txs: []*domain.Transaction{
		{ID: 1, PlayerID: acc.PlayerID, Type: domain.TxTap, Amount: 7},
		{ID: 2, PlayerID: "someone-else", Type: domain.TxTap, Amount: 3},
	}}

	// rebuild the route with history wired
	h := NewHandler(svc, nil, history, "tok", "test_bot")
	r = gin.New()
	r.GET("/me/transactions", middleware.JWT(), h.Transactions)

	req := httptest.NewRequest("GET", "/me/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Transactions) != 1 || resp.Transactions[0].Amount != 7 {
		t.Fatalf("transactions = %+v; want only this player's tap", resp.Transactions)
	}
}

func TestTransactionsEndpoint_NoBackend(t *testing.T) {
	r, svc := newTestRouter(t)
	token := authToken(t, svc)

	req := httptest.NewRequest("GET", "/me/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
}

func tokenPlayerID(t *testing.T, token string) string {
	t.Helper()
	id, err := service.ParseJWT(token)
	if err != nil {
		t.Fatal(err)
	}
	return id
}
