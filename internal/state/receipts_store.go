// ./internal/state/receipts_store.go
package state

import (
	"fmt"

	"github.com/elys-network/farm/internal/types"
)

// Store adapts the package-level persistence functions to the operator's
// receipt sink interface.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) SaveOperationReceipt(receipt types.OperationReceipt) error {
	return SaveOperationReceipt(receipt)
}

func (s *Store) SavePoolSnapshot(snapshot types.PoolSnapshot) error {
	return SavePoolSnapshot(snapshot)
}

// SaveOperationReceipt appends one operation receipt to the audit trail.
func SaveOperationReceipt(receipt types.OperationReceipt) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
        INSERT INTO operation_receipts (
            op_id, kind, pool_index, user_address,
            amount, fee_paid, primary_reward, secondary_reward, op_timestamp
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	_, err := DB.Exec(stmt,
		receipt.OpID, receipt.Kind, uint64(receipt.PoolIndex), receipt.User,
		receipt.Amount, receipt.FeePaid, receipt.PrimaryReward, receipt.SecondaryReward,
		receipt.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert operation receipt: %w", err)
	}
	return nil
}

// SavePoolSnapshot appends one pool ledger snapshot.
func SavePoolSnapshot(snapshot types.PoolSnapshot) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
        INSERT INTO pool_snapshots (
            pool_index, allocation_point, total_staked,
            acc_reward_per_share, last_reward_time_ms, emergency
        ) VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := DB.Exec(stmt,
		uint64(snapshot.PoolIndex), snapshot.AllocationPoint, snapshot.TotalStaked,
		snapshot.AccRewardPerShare, snapshot.LastRewardTimeMS, snapshot.Emergency,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pool snapshot: %w", err)
	}
	return nil
}

// GetRecentReceipts returns the most recent operation receipts, newest first.
func GetRecentReceipts(limit int) ([]types.OperationReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	stmt := `
        SELECT receipt_id, op_id, kind, pool_index, user_address,
               amount, fee_paid, primary_reward, secondary_reward, op_timestamp
        FROM operation_receipts
        ORDER BY op_timestamp DESC
        LIMIT $1;`

	rows, err := DB.Query(stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation receipts: %w", err)
	}
	defer rows.Close()

	receipts := make([]types.OperationReceipt, 0, limit)
	for rows.Next() {
		var r types.OperationReceipt
		var poolIndex uint64
		if err := rows.Scan(
			&r.ReceiptID, &r.OpID, &r.Kind, &poolIndex, &r.User,
			&r.Amount, &r.FeePaid, &r.PrimaryReward, &r.SecondaryReward, &r.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan operation receipt: %w", err)
		}
		r.PoolIndex = types.PoolIndex(poolIndex)
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating operation receipts: %w", err)
	}
	return receipts, nil
}

// GetRecentPoolSnapshots returns the most recent ledger snapshots for one
// pool, newest first.
func GetRecentPoolSnapshots(poolIndex types.PoolIndex, limit int) ([]types.PoolSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	stmt := `
        SELECT snapshot_id, pool_index, allocation_point, total_staked,
               acc_reward_per_share, last_reward_time_ms, emergency
        FROM pool_snapshots
        WHERE pool_index = $1
        ORDER BY snapshot_timestamp DESC
        LIMIT $2;`

	rows, err := DB.Query(stmt, uint64(poolIndex), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pool snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]types.PoolSnapshot, 0, limit)
	for rows.Next() {
		var s types.PoolSnapshot
		var index uint64
		if err := rows.Scan(
			&s.SnapshotID, &index, &s.AllocationPoint, &s.TotalStaked,
			&s.AccRewardPerShare, &s.LastRewardTimeMS, &s.Emergency,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pool snapshot: %w", err)
		}
		s.PoolIndex = types.PoolIndex(index)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating pool snapshots: %w", err)
	}
	return snapshots, nil
}
