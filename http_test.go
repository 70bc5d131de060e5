package feeledger_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jcabrera/feeledger"
	"github.com/jcabrera/feeledger/mocks"
)

func TestHTTPDeposit(t *testing.T) {
	nooplog := zerolog.Nop()

	t.Run("returns the transaction on success", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().
			Deposit(gomock.AssignableToTypeOf(feeledger.ChargeReq{})).
			DoAndReturn(func(r feeledger.ChargeReq) (*feeledger.Charge, error) {
				as.Equal("ind@example.com", r.Email)
				return &feeledger.Charge{
					AcctID: r.AcctID,
					Type:   feeledger.Deposit,
					Amount: r.Amount,
				}, nil
			}).
			Times(1)

		hndlr := feeledger.NewHTTPHandler(svc, &nooplog)
		body := bytes.NewBufferString(`{"amount":1234.00}`)
		req := httptest.NewRequest(http.MethodPost, "/accounts/1834563581361305763/deposit", body)
		req.Header.Set("email", "ind@example.com")
		w := httptest.NewRecorder()
		hndlr.ServeHTTP(w, req)

		as.Equal(http.StatusOK, w.Code)
		resp := map[string]json.RawMessage{}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		as.Nil(err)
		as.Contains(resp, "transaction")
	})

	t.Run("returns error on invalid account ID", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		hndlr := feeledger.NewHTTPHandler(svc, &nooplog)

		body := bytes.NewBufferString(`{"amount":1234.00}`)
		req := httptest.NewRequest(http.MethodPost, "/accounts/24j24g*()/deposit", body)
		w := httptest.NewRecorder()
		hndlr.ServeHTTP(w, req)

		reqrd.Equal(http.StatusNotFound, w.Code)
		as.Contains(w.Body.String(), "path")
	})

	t.Run("returns error on malformed JSON", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		hndlr := feeledger.NewHTTPHandler(svc, &nooplog)

		body := bytes.NewBufferString(`{"amount":`)
		req := httptest.NewRequest(http.MethodPost, "/accounts/1834563581361305763/deposit", body)
		w := httptest.NewRecorder()
		hndlr.ServeHTTP(w, req)

		as.Equal(http.StatusBadRequest, w.Code)
	})
}

func TestHTTPWithdraw(t *testing.T) {
	nooplog := zerolog.Nop()

	t.Run("maps insufficient funds to 400", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().
			Withdraw(gomock.AssignableToTypeOf(feeledger.ChargeReq{})).
			DoAndReturn(func(r feeledger.ChargeReq) (*feeledger.Charge, error) {
				return nil, feeledger.ErrInsufficientFunds{AcctID: r.AcctID}
			}).
			Times(1)

		hndlr := feeledger.NewHTTPHandler(svc, &nooplog)
		body := bytes.NewBufferString(`{"amount":99999}`)
		req := httptest.NewRequest(http.MethodPost, "/accounts/1834563581361305763/withdraw", body)
		req.Header.Set("email", "ind@example.com")
		w := httptest.NewRecorder()
		hndlr.ServeHTTP(w, req)

		as.Equal(http.StatusBadRequest, w.Code)
		as.Contains(w.Body.String(), "insufficient balance")
	})

	t.Run("maps missing account to 404", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().
			Withdraw(gomock.AssignableToTypeOf(feeledger.ChargeReq{})).
			DoAndReturn(func(r feeledger.ChargeReq) (*feeledger.Charge, error) {
				return nil, feeledger.ErrNotFound{ID: r.AcctID.Int64()}
			}).
			Times(1)

		hndlr := feeledger.NewHTTPHandler(svc, &nooplog)
		body := bytes.NewBufferString(`{"amount":100}`)
		req := httptest.NewRequest(http.MethodPost, "/accounts/1834563581361305763/withdraw", body)
		req.Header.Set("email", "ind@example.com")
		w := httptest.NewRecorder()
		hndlr.ServeHTTP(w, req)

		as.Equal(http.StatusNotFound, w.Code)
	})
}

func TestHTTPBalanceAndHistory(t *testing.T) {
	nooplog := zerolog.Nop()

	t.Run("returns balance with transactions", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().
			BalanceAndHistory(gomock.AssignableToTypeOf(feeledger.HistoryReq{})).
			DoAndReturn(func(r feeledger.HistoryReq) (*feeledger.AccountHistory, error) {
				return &feeledger.AccountHistory{
					Balance: dec("1234"),
					Charges: []feeledger.Charge{
						{AcctID: r.AcctID, Type: feeledger.Deposit, Amount: dec("1234")},
					},
				}, nil
			}).
			Times(1)

		hndlr := feeledger.NewHTTPHandler(svc, &nooplog)
		req := httptest.NewRequest(http.MethodGet, "/accounts/1834563581361305763/balance", nil)
		req.Header.Set("email", "ind@example.com")
		w := httptest.NewRecorder()
		hndlr.ServeHTTP(w, req)

		as.Equal(http.StatusOK, w.Code)
		var resp struct {
			Balance      string            `json:"balance"`
			Transactions []json.RawMessage `json:"transactions"`
		}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		as.Nil(err)
		as.Equal("1234", resp.Balance)
		as.Len(resp.Transactions, 1)
	})
}

func TestHTTPListCharges(t *testing.T) {
	nooplog := zerolog.Nop()

	t.Run("withdrawals endpoint lists only withdrawals", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().
			Withdrawals(gomock.AssignableToTypeOf(feeledger.HistoryReq{})).
			DoAndReturn(func(r feeledger.HistoryReq) ([]feeledger.Charge, error) {
				return []feeledger.Charge{
					{AcctID: r.AcctID, Type: feeledger.Withdrawal, Amount: dec("200"), Fee: dec("3")},
				}, nil
			}).
			Times(1)

		hndlr := feeledger.NewHTTPHandler(svc, &nooplog)
		req := httptest.NewRequest(http.MethodGet, "/accounts/1834563581361305763/withdrawals", nil)
		req.Header.Set("email", "ind@example.com")
		w := httptest.NewRecorder()
		hndlr.ServeHTTP(w, req)

		as.Equal(http.StatusOK, w.Code)
		as.Contains(w.Body.String(), `"withdrawal"`)
	})
}
