package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/memory"
	"github.com/apache/arrow/go/v16/parquet/file"
	"github.com/apache/arrow/go/v16/parquet/pqarrow"

	"datastudio/pkg/contracts/domain"
)

// readParquet decodes a Parquet payload through its Arrow form,
// preserving schema column order. Integer and floating-point columns
// map to numeric, timestamp and date columns to timestamp, everything
// else ingests as text.
func readParquet(ctx context.Context, raw []byte) (domain.Table, error) {
	pf, err := file.NewParquetReader(bytes.NewReader(raw))
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open parquet payload: %w", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to build arrow reader: %w", err)
	}

	tbl, err := reader.ReadTable(ctx)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read parquet table: %w", err)
	}
	defer tbl.Release()

	columns := make([]domain.Column, 0, tbl.NumCols())
	for i := 0; i < int(tbl.NumCols()); i++ {
		field := tbl.Schema().Field(i)

		values := make([]domain.Value, 0, tbl.NumRows())
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				values = append(values, arrowValue(chunk, j))
			}
		}

		columns = append(columns, domain.Column{
			Name:   field.Name,
			Kind:   kindForArrowType(field.Type),
			Values: values,
		})
	}
	return domain.NewTable(columns...), nil
}

func kindForArrowType(dt arrow.DataType) domain.Kind {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64:
		return domain.KindNumeric
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return domain.KindTimestamp
	default:
		return domain.KindText
	}
}

func arrowValue(arr arrow.Array, i int) domain.Value {
	if arr.IsNull(i) {
		return domain.Missing()
	}

	switch a := arr.(type) {
	case *array.Int8:
		return domain.Number(float64(a.Value(i)))
	case *array.Int16:
		return domain.Number(float64(a.Value(i)))
	case *array.Int32:
		return domain.Number(float64(a.Value(i)))
	case *array.Int64:
		return domain.Number(float64(a.Value(i)))
	case *array.Uint8:
		return domain.Number(float64(a.Value(i)))
	case *array.Uint16:
		return domain.Number(float64(a.Value(i)))
	case *array.Uint32:
		return domain.Number(float64(a.Value(i)))
	case *array.Uint64:
		return domain.Number(float64(a.Value(i)))
	case *array.Float32:
		return domain.Number(float64(a.Value(i)))
	case *array.Float64:
		return domain.Number(a.Value(i))
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return domain.Timestamp(a.Value(i).ToTime(unit))
	case *array.Date32:
		return domain.Timestamp(a.Value(i).ToTime())
	case *array.Date64:
		return domain.Timestamp(a.Value(i).ToTime())
	case *array.Boolean:
		return domain.Text(strconv.FormatBool(a.Value(i)))
	case *array.String:
		return domain.Text(a.Value(i))
	case *array.LargeString:
		return domain.Text(a.Value(i))
	default:
		return domain.Text(arr.ValueStr(i))
	}
}
