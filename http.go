package feeledger

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chargeJSONResp struct {
	Charge Charge `json:"transaction"`
}

type chargesJSONResp struct {
	Charges []Charge `json:"transactions"`
}

func NewHTTPHandler(svc Service, log *zerolog.Logger) http.Handler {
	hndlr := &httpHandler{
		Svc: svc,
		Log: log,
	}
	mux := chi.NewMux()
	mux.NotFound(HTTPNotFound)
	mux.Route("/accounts", func(r chi.Router) {
		r.Route("/{acctID:[0-9]+}", func(rr chi.Router) {
			rr.Post("/deposit", hndlr.Deposit)
			rr.Post("/withdraw", hndlr.Withdraw)
			rr.Get("/balance", hndlr.BalanceAndHistory)
			rr.Get("/deposits", hndlr.Deposits)
			rr.Get("/withdrawals", hndlr.Withdrawals)
			rr.Get("/statement", hndlr.Statement)
		})
	})

	return mux
}

type httpHandler struct {
	Svc Service
	Log *zerolog.Logger
}

// acctID parses the account ID path parameter, writing the error response
// itself on failure.
func (h *httpHandler) acctID(w http.ResponseWriter, r *http.Request, method string) (snowflake.ID, bool) {
	pid := chi.URLParam(r, "acctID")
	acctID, err := snowflake.ParseString(pid)
	if err != nil {
		h.Log.Err(err).Str("method", method).Msg("error parsing account ID")
		WriteHTTPError(w, ErrBadRequest{map[string]string{"acctID": "invalid format"}})
		return 0, false
	}
	return acctID, true
}

func (h *httpHandler) charge(w http.ResponseWriter, r *http.Request, method string, op func(ChargeReq) (*Charge, error)) {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.Log.Err(err).Str("method", method).Msg("error reading HTTP request")
		WriteHTTPError(w, ErrInternalServer)
		return
	}
	var req ChargeReq
	if err = json.Unmarshal(buf, &req); err != nil {
		h.Log.Err(err).Str("method", method).Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	acctID, ok := h.acctID(w, r, method)
	if !ok {
		return
	}
	req.AcctID = acctID
	req.Email = r.Header.Get("email")

	chg, err := op(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(chargeJSONResp{Charge: *chg}); err != nil {
		WriteHTTPError(w, err)
	}
}

func (h *httpHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.charge(w, r, "deposit", h.Svc.Deposit)
}

func (h *httpHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.charge(w, r, "withdraw", h.Svc.Withdraw)
}

func (h *httpHandler) BalanceAndHistory(w http.ResponseWriter, r *http.Request) {
	acctID, ok := h.acctID(w, r, "balance")
	if !ok {
		return
	}
	req := HistoryReq{
		AcctID: acctID,
		Email:  r.Header.Get("email"),
	}
	hist, err := h.Svc.BalanceAndHistory(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(hist); err != nil {
		WriteHTTPError(w, err)
	}
}

func (h *httpHandler) list(w http.ResponseWriter, r *http.Request, method string, op func(HistoryReq) ([]Charge, error)) {
	acctID, ok := h.acctID(w, r, method)
	if !ok {
		return
	}
	req := HistoryReq{
		AcctID: acctID,
		Email:  r.Header.Get("email"),
	}
	charges, err := op(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(chargesJSONResp{Charges: charges}); err != nil {
		WriteHTTPError(w, err)
	}
}

func (h *httpHandler) Deposits(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "deposits", h.Svc.Deposits)
}

func (h *httpHandler) Withdrawals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "withdrawals", h.Svc.Withdrawals)
}

func (h *httpHandler) Statement(w http.ResponseWriter, r *http.Request) {
	acctID, ok := h.acctID(w, r, "statement")
	if !ok {
		return
	}
	req := StatementReq{
		AcctID: acctID,
		Email:  r.Header.Get("email"),
	}
	w.Header().Set("Content-Type", "application/pdf")
	if err := h.Svc.Statement(w, req); err != nil {
		WriteHTTPError(w, err)
	}
}

func WriteHTTPError(w http.ResponseWriter, err error) {
	var ne error
	defer func() {
		if ne != nil {
			log.Error().
				Err(ne).
				Msg("error response encoding failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	errnf := &ErrNotFound{}
	errbr := &ErrBadRequest{}
	errif := &ErrInsufficientFunds{}
	if errors.As(err, errnf) {
		w.WriteHeader(http.StatusNotFound)
		ne = json.NewEncoder(w).Encode(errnf)
	} else if errors.As(err, errbr) {
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(errbr)
	} else if errors.As(err, errif) {
		w.WriteHeader(http.StatusBadRequest)
		resp := map[string]string{
			"error": "insufficient balance",
		}
		ne = json.NewEncoder(w).Encode(resp)
	} else if errors.Is(err, ErrOverloaded) {
		w.WriteHeader(http.StatusServiceUnavailable)
		resp := map[string]string{
			"error": "try again later",
		}
		ne = json.NewEncoder(w).Encode(resp)
	} else {
		w.WriteHeader(http.StatusInternalServerError)
		resp := map[string]string{
			"message": "server error",
		}
		ne = json.NewEncoder(w).Encode(resp)
	}
}

func HTTPNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{
		"path": r.URL.Path,
	}
	json.NewEncoder(w).Encode(resp)
}
