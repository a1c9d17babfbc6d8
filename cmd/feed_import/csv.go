package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var requiredColumns = []string{"sku", "warehouse_code"}

// parseFeed lee el CSV. Un error de formato aborta todo el archivo; las validaciones de negocio
// (sku desconocido, cantidad negativa) quedan para el reporte de la sincronización.
func parseFeed(r io.Reader, comma rune, latin1 bool) ([]kafka.FeedEntry, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("archivo vacío")
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}
	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []kafka.FeedEntry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		e := kafka.FeedEntry{SKU: cell(rec, "sku"), WarehouseCode: cell(rec, "warehouse_code")}
		if v := cell(rec, "quantity_on_hand"); v != "" {
			q, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("línea %d: quantity_on_hand %q: %w", line, v, err)
			}
			e.QuantityOnHand = &q
		}
		if v := cell(rec, "average_cost"); v != "" {
			c, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
			if err != nil {
				return nil, fmt.Errorf("línea %d: average_cost %q: %w", line, v, err)
			}
			e.AverageCost = &c
		}
		out = append(out, e)
	}
	return out, nil
}
