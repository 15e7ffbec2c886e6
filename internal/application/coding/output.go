package coding

import (
	"encoding/csv"
	"io"

	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
	codingtypes "github.com/turtacn/MedCode-Intelligence/pkg/types/coding"
)

// tsvHeader is the column order of the coding output contract.
var tsvHeader = []string{"mention", "matched", "score", "cui", "icd_codes"}

// WriteTSV writes rows as tab-separated values, header line first. Empty
// fields stay empty so unresolved mentions keep their column positions.
func WriteTSV(w io.Writer, rows []codingtypes.Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(tsvHeader); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "writing output header")
	}
	for _, row := range rows {
		record := []string{row.Mention, row.Matched, row.Score, row.CUI, row.ICDCodes}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "writing output row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "flushing output")
	}
	return nil
}
