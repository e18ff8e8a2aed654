package queue

import (
	"encoding/json"
	"fmt"
)

// ConfirmJob asks a worker to wait for the effect of a submitted transaction.
type ConfirmJob struct {
	TransactionID string `json:"transaction_id"`
	Kind          string `json:"kind"`
	Backend       string `json:"backend"`
	TxHash        string `json:"tx_hash"`
	Attempt       int    `json:"attempt,omitempty"`
}

// ConfirmedJob is pushed back once a worker reached a terminal status.
type ConfirmedJob struct {
	TransactionID string `json:"transaction_id"`
	Kind          string `json:"kind"`
	Backend       string `json:"backend"`
	VideoID       uint64 `json:"video_id"`
	Status        string `json:"status"`
	Observed      string `json:"observed,omitempty"`
}

func DeserializeJob(data string) (*ConfirmJob, error) {
	var job ConfirmJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to deserialize job: %w", err)
	}
	if job.TransactionID == "" {
		return nil, fmt.Errorf("job without transaction id")
	}
	return &job, nil
}

func SerializeJob(job any) (string, error) {
	bytes, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to serialize job: %w", err)
	}
	return string(bytes), nil
}
