package dto

import "time"

type UpdateVideoRequestDTO struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"` // decimal, whole coins
}

type RegisterVideoRequestDTO struct {
	Title       string `json:"title" form:"title"`
	Price       string `json:"price" form:"price"` // decimal, whole coins
	DisplayTime int64  `json:"display_time" form:"display_time"`
}

type SubmittedRequestDTO struct {
	TxHash string `json:"tx_hash" form:"tx_hash"`
}

// PreparedTxResponse is handed to the caller's wallet for signing.
type PreparedTxResponse struct {
	TransactionID string    `json:"transaction_id"`
	Kind          string    `json:"kind"`
	Backend       string    `json:"backend"`
	To            string    `json:"to"`
	Value         string    `json:"value"`
	Payload       string    `json:"payload"` // hex for evm, base64 BOC for ton
	ValidUntil    time.Time `json:"valid_until"`
	ContentHash   string    `json:"content_hash,omitempty"`
}

type TransactionStatusResponse struct {
	TransactionID string `json:"transaction_id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	TxHash        string `json:"tx_hash,omitempty"`
	Observed      string `json:"observed,omitempty"`
}
