package feeledger

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInternalServer = errors.New("internal server error")

	// ErrOverloaded is returned by the limit middleware when a request
	// cannot acquire a service token within the acquisition timeout.
	ErrOverloaded = errors.New("service overloaded")
)

type ErrBadRequest struct {
	Fields map[string]string
}

func (e ErrBadRequest) Error() string {
	return fmt.Sprintf("missing/invalid params: %v", e.Fields)
}

type ErrNotFound struct {
	ID int64 `json:"id"`
}

func (e ErrNotFound) Error() string {
	return "record not found"
}

type ErrInsufficientFunds struct {
	AcctID snowflake.ID `json:"acct_id"`
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient balance on account %v", e.AcctID)
}
