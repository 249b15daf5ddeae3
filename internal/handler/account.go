package handler

import (
	"net/http"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/service"
	"github.com/efreitasn/papertrade/internal/session"
	"github.com/shopspring/decimal"
)

// AccountHandler handles HTTP requests for sign up, log in and the current
// account.
type AccountHandler struct {
	accountSvc *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// signUpRequest is the JSON request body for POST /signup.
type signUpRequest struct {
	Username        string           `json:"username"`
	Password        string           `json:"password"`
	ConfirmPassword string           `json:"confirm_password"`
	InitialBalance  *decimal.Decimal `json:"initial_balance"`
}

// logInRequest is the JSON request body for POST /login.
type logInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type positionResponse struct {
	Symbol      string `json:"symbol"`
	Quantity    int64  `json:"quantity"`
	AverageCost string `json:"average_cost"`
}

type accountResponse struct {
	Username       string             `json:"username"`
	Balance        string             `json:"balance"`
	BalanceDisplay string             `json:"balance_display"`
	Positions      []positionResponse `json:"positions"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

// sessionResponse is returned by sign up and log in.
type sessionResponse struct {
	Token     string          `json:"token"`
	Account   accountResponse `json:"account"`
	CreatedAt string          `json:"created_at"`
}

// SignUp handles POST /signup.
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, sess, err := h.accountSvc.SignUp(service.SignUpRequest{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		InitialBalance:  req.InitialBalance,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildSessionResponse(sess, account))
}

// LogIn handles POST /login.
func (h *AccountHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	var req logInRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, sess, err := h.accountSvc.LogIn(req.Username, req.Password)
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildSessionResponse(sess, account))
}

// LogOut handles POST /logout.
func (h *AccountHandler) LogOut(w http.ResponseWriter, r *http.Request) {
	if err := h.accountSvc.LogOut(sessionFrom(r.Context()).ID); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Current handles GET /account.
func (h *AccountHandler) Current(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountSvc.Current(sessionFrom(r.Context()))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildAccountResponse(account))
}

func buildSessionResponse(sess *session.Session, account *domain.Account) sessionResponse {
	return sessionResponse{
		Token:     sess.ID,
		Account:   buildAccountResponse(account),
		CreatedAt: formatTime(sess.CreatedAt),
	}
}

func buildAccountResponse(a *domain.Account) accountResponse {
	positions := make([]positionResponse, 0, len(a.Portfolio))
	for _, symbol := range a.Symbols() {
		pos := a.Portfolio[symbol]
		positions = append(positions, positionResponse{
			Symbol:      symbol,
			Quantity:    pos.Quantity,
			AverageCost: money(pos.AverageCost),
		})
	}
	return accountResponse{
		Username:       a.Username,
		Balance:        money(a.Balance),
		BalanceDisplay: "$" + domain.FormatCurrency(a.Balance),
		Positions:      positions,
		CreatedAt:      formatTime(a.CreatedAt),
		UpdatedAt:      formatTime(a.UpdatedAt),
	}
}
