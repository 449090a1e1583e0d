package mirdb

import (
	"fmt"
	"strconv"

	"github.com/pingcap/errors"
	"go.uber.org/atomic"
)

// DecisionRow is one raw decision-log row fetched from a table. Column
// order in the table is irrelevant; columns beyond the known set are
// ignored.
type DecisionRow struct {
	FuncName          string
	IRCount           int
	OptLevel          int
	HasOptLevel       bool
	ShadowPrice       float64
	Inlined           bool
	ThresholdBaseline float64
}

var nFetchedRows atomic.Uint64

// FetchedRows reports the total rows fetched by this process so far.
func FetchedRows() uint64 {
	return nFetchedRows.Load()
}

// FetchDecisionRows reads a whole <condition>_decisions table. Columns are
// resolved by name at scan time, so the optional opt_level column and any
// extra columns are handled without a fixed schema.
func FetchDecisionRows(ins Instance, db, table string) ([]DecisionRow, error) {
	rows, err := ins.Query(fmt.Sprintf("SELECT * FROM %v.%v", db, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, errors.Trace(err)
	}
	colIdx := make(map[string]int, len(colNames))
	for i, name := range colNames {
		colIdx[name] = i
	}
	for _, name := range []string{"func_name", "ir_count", "shadow_price", "inlined", "threshold_baseline"} {
		if _, ok := colIdx[name]; !ok {
			return nil, errors.Errorf("table %v.%v: required column %v is missing", db, table, name)
		}
	}
	optIdx, hasOptLevel := colIdx["opt_level"]

	var res []DecisionRow
	for rows.Next() {
		rowContainer := make([]interface{}, len(colNames))
		args := make([]interface{}, len(colNames))
		for i := range rowContainer {
			args[i] = &rowContainer[i]
		}
		if err := rows.Scan(args...); err != nil {
			return nil, errors.Trace(err)
		}

		r := DecisionRow{HasOptLevel: hasOptLevel}
		r.FuncName = toString(rowContainer[colIdx["func_name"]])
		irCount, err := toFloat(rowContainer[colIdx["ir_count"]])
		if err != nil {
			return nil, errors.Trace(err)
		}
		r.IRCount = int(irCount)
		if r.ShadowPrice, err = toFloat(rowContainer[colIdx["shadow_price"]]); err != nil {
			return nil, errors.Trace(err)
		}
		inlined, err := toFloat(rowContainer[colIdx["inlined"]])
		if err != nil {
			return nil, errors.Trace(err)
		}
		r.Inlined = inlined != 0
		if r.ThresholdBaseline, err = toFloat(rowContainer[colIdx["threshold_baseline"]]); err != nil {
			return nil, errors.Trace(err)
		}
		if hasOptLevel {
			optLevel, err := toFloat(rowContainer[optIdx])
			if err != nil {
				return nil, errors.Trace(err)
			}
			r.OptLevel = int(optLevel)
		}
		res = append(res, r)
		nFetchedRows.Inc()
	}
	return res, errors.Trace(rows.Err())
}

// toString renders a scanned value; the MySQL driver hands most values
// back as []byte.
func toString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case []byte:
		return strconv.ParseFloat(string(x), 64)
	case string:
		return strconv.ParseFloat(x, 64)
	case int64:
		return float64(x), nil
	case float64:
		return x, nil
	default:
		return 0, errors.Errorf("cannot convert %T to float", v)
	}
}
