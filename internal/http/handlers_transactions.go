package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"finance/internal/core"
	"finance/internal/export"
	applog "finance/internal/log"
	"finance/internal/query"
	"finance/internal/services"
)

// amountText accepts an amount as a JSON string or a bare number and keeps
// the literal text, so "12.50" and 12.50 parse the same way.
type amountText string

func (a *amountText) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountText(s)
		return nil
	}
	if string(b) == "null" {
		*a = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = amountText(n.String())
	return nil
}

type createTransactionRequest struct {
	Kind        string     `json:"kind"`
	Amount      amountText `json:"amount"`
	CategoryID  int64      `json:"categoryId"`
	Description string     `json:"description"`
	OccurredAt  *time.Time `json:"occurredAt,omitempty"`
}

type editTransactionRequest struct {
	Amount      amountText `json:"amount"`
	Kind        *string    `json:"kind,omitempty"`
	CategoryID  *int64     `json:"categoryId,omitempty"`
	Description *string    `json:"description,omitempty"`
}

func (s *Server) row(tx core.Transaction) query.Row {
	return query.Rows([]core.Transaction{tx}, s.tx.Location())[0]
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	view, err := viewFromQuery(r)
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}
	rows, err := s.tx.Rows(r.Context(), userID(r), view)
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Transactions listed",
		applog.FieldQueryLen, len(view.Query),
		applog.FieldSortKey, view.Sort.String(),
		applog.FieldSortDir, view.Dir.String(),
		"count", len(rows))
	NewJSONResponse().Body(rows).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}

	tx, err := s.tx.Add(r.Context(), userID(r), services.NewTransaction{
		Kind:        kind,
		Amount:      strings.TrimSpace(string(req.Amount)),
		CategoryID:  req.CategoryID,
		Description: sanitizeInput(req.Description),
		OccurredAt:  req.OccurredAt,
	})
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.FieldComponent, applog.ComponentTransaction,
		applog.FieldTxID, tx.ID,
		applog.FieldKind, tx.Kind.String(),
		applog.FieldAmount, tx.Amount.String(),
		applog.FieldCategoryID, tx.CategoryID)

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/api/transactions/%d", tx.ID)).
		Body(s.row(tx)).
		Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, applog.OpUpdate)
		return
	}
	var req editTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	edit := services.TransactionEdit{
		Amount:     strings.TrimSpace(string(req.Amount)),
		CategoryID: req.CategoryID,
	}
	if req.Kind != nil {
		kind, err := core.ParseKind(*req.Kind)
		if err != nil {
			writeError(w, r, err, applog.OpUpdate)
			return
		}
		edit.Kind = &kind
	}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		edit.Description = &desc
	}

	tx, err := s.tx.Edit(r.Context(), userID(r), id, edit)
	if err != nil {
		writeError(w, r, err, applog.OpUpdate)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated",
		applog.FieldComponent, applog.ComponentTransaction,
		applog.FieldTxID, tx.ID)
	NewJSONResponse().Body(s.row(tx)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, applog.OpDelete)
		return
	}
	if err := s.tx.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err, applog.OpDelete)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		applog.FieldComponent, applog.ComponentTransaction,
		applog.FieldTxID, id)
	NoContent().Write(w)
}

// handleExport renders into memory first so a failure still gets a JSON
// error instead of a truncated workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view, err := viewFromQuery(r)
	if err != nil {
		writeError(w, r, err, applog.OpExport)
		return
	}
	var buf bytes.Buffer
	if err := s.tx.Export(r.Context(), userID(r), view, &buf); err != nil {
		writeError(w, r, err, applog.OpExport)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
