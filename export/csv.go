package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/primeswim/tuition/tuition"
)

// WriteCSV writes a header and one record per row.
func WriteCSV(w io.Writer, result *tuition.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range result.Rows {
		if err := cw.Write(record(row)); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.ParticipantID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
