package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"payments_engine/internal/ledger"
)

var snapshotHeader = []string{"client", "available", "held", "total", "locked"}

// WriteSnapshot writes the header and one row per account, amounts with
// exactly ledger.SnapshotPrecision fractional digits.
func WriteSnapshot(w io.Writer, snapshots []ledger.AccountSnapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(snapshotHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(snapshotHeader))
	for _, s := range snapshots {
		row[0] = strconv.FormatUint(uint64(s.Client), 10)
		row[1] = s.Available.StringFixed(ledger.SnapshotPrecision)
		row[2] = s.Held.StringFixed(ledger.SnapshotPrecision)
		row[3] = s.Total.StringFixed(ledger.SnapshotPrecision)
		row[4] = strconv.FormatBool(s.Locked)

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write client %d: %w", s.Client, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}
