package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/pricing"
)

type Kind string

const (
	KindZones    Kind = "zones"
	KindClosures Kind = "closures"
)

type ZoneWriter interface {
	Upsert(ctx context.Context, z domain.DeliveryZone) (*domain.DeliveryZone, error)
}

type ClosureWriter interface {
	Upsert(ctx context.Context, c domain.CalendarClosure) (*domain.CalendarClosure, error)
}

// CSVImporter reads delivery zone or calendar closure exports and upserts them.
// Zone rows look like `name,zip_codes,fee_cents,priority,active` with ZIPs
// separated by ';'. Closure rows look like
// `date,reason,closed_for_delivery,closed_for_pickup`.
type CSVImporter struct {
	reader   *csv.Reader
	zones    ZoneWriter
	closures ClosureWriter
}

func NewCSVImporter(r io.Reader, zones ZoneWriter, closures ClosureWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:   csvr,
		zones:    zones,
		closures: closures,
	}
}

// DetectKind inspects the header row of a CSV export.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	return kindOf(headerIndex(headers))
}

func kindOf(index map[string]int) (Kind, error) {
	if _, ok := index["zip_codes"]; ok {
		return KindZones, nil
	}
	if _, ok := index["date"]; ok {
		return KindClosures, nil
	}
	return "", fmt.Errorf("%w: unrecognized csv header", domain.ErrInvalidInput)
}

// Run parses every row and upserts it. The import stops at the first
// invalid row; rows before it stay written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	kind, err := kindOf(index)
	if err != nil {
		return 0, err
	}
	switch {
	case kind == KindZones && i.zones == nil:
		return 0, errors.New("zone csv given but no zone writer configured")
	case kind == KindClosures && i.closures == nil:
		return 0, errors.New("closure csv given but no closure writer configured")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++
		if blank(record) {
			continue
		}

		switch kind {
		case KindZones:
			err = i.saveZone(ctx, record, index)
		case KindClosures:
			err = i.saveClosure(ctx, record, index)
		}
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) saveZone(ctx context.Context, record []string, index map[string]int) error {
	name := pick(record, index, "name")
	z := domain.DeliveryZone{
		ID:     domain.StableID("zone", name),
		Name:   name,
		Active: true,
	}
	for _, zip := range strings.Split(pick(record, index, "zip_codes"), ";") {
		if zip = pricing.NormalizeZIP(zip); zip != "" {
			z.ZIPCodes = append(z.ZIPCodes, zip)
		}
	}

	var err error
	if z.FeeAmountCents, err = strconv.ParseInt(pick(record, index, "fee_cents"), 10, 64); err != nil {
		return fmt.Errorf("%w: zone %q: fee_cents: %v", domain.ErrInvalidInput, name, err)
	}
	if raw := pick(record, index, "priority"); raw != "" {
		if z.Priority, err = strconv.Atoi(raw); err != nil {
			return fmt.Errorf("%w: zone %q: priority: %v", domain.ErrInvalidInput, name, err)
		}
	}
	if z.Active, err = parseBool(pick(record, index, "active"), true); err != nil {
		return fmt.Errorf("%w: zone %q: active: %v", domain.ErrInvalidInput, name, err)
	}
	if err := pricing.ValidateZone(z); err != nil {
		return err
	}

	if _, err := i.zones.Upsert(ctx, z); err != nil {
		return fmt.Errorf("upsert zone %q: %w", name, err)
	}
	return nil
}

func (i *CSVImporter) saveClosure(ctx context.Context, record []string, index map[string]int) error {
	raw := pick(record, index, "date")
	d, err := businesstime.ParseDate(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	c := domain.CalendarClosure{Date: d, Reason: pick(record, index, "reason")}
	if c.ClosedForDelivery, err = parseBool(pick(record, index, "closed_for_delivery"), true); err != nil {
		return fmt.Errorf("%w: closure %s: closed_for_delivery: %v", domain.ErrInvalidInput, raw, err)
	}
	if c.ClosedForPickup, err = parseBool(pick(record, index, "closed_for_pickup"), true); err != nil {
		return fmt.Errorf("%w: closure %s: closed_for_pickup: %v", domain.ErrInvalidInput, raw, err)
	}

	if _, err := i.closures.Upsert(ctx, c); err != nil {
		return fmt.Errorf("upsert closure %s: %w", raw, err)
	}
	return nil
}

func parseBool(raw string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(strings.ToLower(raw))
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
