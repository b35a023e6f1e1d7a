package xcommon

import (
	"context"
	"fmt"
	"io"

	"pingpong/pkg/xlog"

	"github.com/liushuochen/gotable"
	"go.uber.org/zap"
)

func printTable(w io.Writer, keys []string, values [][]string) error {
	table, err := gotable.CreateSafeTable(keys...)
	if err != nil {
		return err
	}
	for _, vs := range values {
		if err := table.AddRow(vs); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

func FprintTable(ctx context.Context, w io.Writer, keys []string, values [][]string) {
	if err := printTable(w, keys, values); err != nil {
		xlog.Get(ctx).Warn("Print table failed.", zap.Any("err", err))
	}
}
