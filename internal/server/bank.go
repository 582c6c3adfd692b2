package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bankdomain "github.com/atriumhq/atrium/internal/bank/domain"
)

type listAccountsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	Status    string `form:"status"`
}

type createAccountRequest struct {
	Name           string `json:"name"`
	AccountNumber  string `json:"account_number"`
	BankName       string `json:"bank_name"`
	OpeningBalance int64  `json:"opening_balance"`
}

type updateAccountRequest struct {
	Name     *string `json:"name"`
	BankName *string `json:"bank_name"`
	Status   *string `json:"status"`
}

type listTransactionsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	AccountID string `form:"account_id"`
	Direction string `form:"direction"`
}

type recordTransactionRequest struct {
	AccountID        string `json:"account_id"`
	Direction        string `json:"direction"`
	Amount           int64  `json:"amount"`
	Purpose          string `json:"purpose"`
	UtilityExpenseID string `json:"utility_expense_id"`
}

func (s *Server) ListBankAccounts(c *gin.Context) {
	var query listAccountsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bankSvc.ListAccounts(c.Request.Context(), bankdomain.ListAccountRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Accounts, "page_info": resp.PageInfo})
}

func (s *Server) CreateBankAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.bankSvc.CreateAccount(c.Request.Context(), bankdomain.CreateAccountRequest{
		Name:           strings.TrimSpace(req.Name),
		AccountNumber:  strings.TrimSpace(req.AccountNumber),
		BankName:       strings.TrimSpace(req.BankName),
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": account})
}

func (s *Server) GetBankAccountByID(c *gin.Context) {
	account, err := s.bankSvc.GetAccount(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (s *Server) UpdateBankAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.bankSvc.UpdateAccount(c.Request.Context(), bankdomain.UpdateAccountRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Name:     req.Name,
		BankName: req.BankName,
		Status:   req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (s *Server) ListBankTransactions(c *gin.Context) {
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bankSvc.ListTransactions(c.Request.Context(), bankdomain.ListTransactionRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		AccountID: strings.TrimSpace(query.AccountID),
		Direction: strings.TrimSpace(query.Direction),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Transactions, "page_info": resp.PageInfo})
}

func (s *Server) RecordBankTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req recordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tx, err := s.bankSvc.RecordTransaction(c.Request.Context(), bankdomain.RecordTransactionRequest{
		AccountID:        strings.TrimSpace(req.AccountID),
		Direction:        strings.TrimSpace(req.Direction),
		Amount:           req.Amount,
		Purpose:          strings.TrimSpace(req.Purpose),
		UtilityExpenseID: strings.TrimSpace(req.UtilityExpenseID),
		RecordedBy:       user.ID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": tx})
}
