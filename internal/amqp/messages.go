package amqp

import (
	"encoding/json"
	"time"
)

// StatementImportedMessage announces an archived import run. It carries
// only the run identity and counts; consumers read the rows back from the
// archive.
type StatementImportedMessage struct {
	RunID            string    `json:"run_id"`
	CheckingSource   string    `json:"checking_source"`
	SavingsSource    string    `json:"savings_source,omitempty"`
	TransactionCount int       `json:"transaction_count"`
	SnapshotCount    int       `json:"snapshot_count"`
	Timestamp        time.Time `json:"timestamp"`
}

func NewStatementImportedMessage(runID, checkingSource, savingsSource string, txnCount, snapCount int) *StatementImportedMessage {
	return &StatementImportedMessage{
		RunID:            runID,
		CheckingSource:   checkingSource,
		SavingsSource:    savingsSource,
		TransactionCount: txnCount,
		SnapshotCount:    snapCount,
		Timestamp:        time.Now(),
	}
}

func (m *StatementImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StatementImportedMessageFromJSON(data []byte) (*StatementImportedMessage, error) {
	var msg StatementImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
