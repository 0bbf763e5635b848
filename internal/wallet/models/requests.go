package models

import "time"

// ProposeTransactionRequest is the POST /transactions body.
type ProposeTransactionRequest struct {
	Recipient string `json:"recipient"`
	Value     int64  `json:"value"`
}

// ProposeTransactionResponse returns the id assigned to a new proposal.
type ProposeTransactionResponse struct {
	ID uint64 `json:"id"`
}

// TransactionResponse is the read model for GET /transactions/{id}.
type TransactionResponse struct {
	ID            uint64    `json:"id"`
	Recipient     string    `json:"recipient"`
	Value         int64     `json:"value"`
	ApprovalCount int       `json:"approval_count"`
	Executed      bool      `json:"executed"`
	CreatedAt     time.Time `json:"created_at"`
}

// ApprovalStatusResponse answers whether a given owner approved a
// transaction.
type ApprovalStatusResponse struct {
	TransactionID uint64 `json:"transaction_id"`
	Owner         string `json:"owner"`
	Approved      bool   `json:"approved"`
}

// OwnersResponse lists the registry in its original insertion order.
type OwnersResponse struct {
	Owners            []string `json:"owners"`
	RequiredApprovals int      `json:"required_approvals"`
}

// OwnerStatusResponse answers a single membership query.
type OwnerStatusResponse struct {
	Address string `json:"address"`
	Owner   bool   `json:"owner"`
}

// NewTransactionResponse converts a ledger record to its read model.
func NewTransactionResponse(tx *Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            tx.ID,
		Recipient:     tx.Recipient.String(),
		Value:         tx.Value,
		ApprovalCount: tx.ApprovalCount,
		Executed:      tx.Executed,
		CreatedAt:     tx.CreatedAt,
	}
}
