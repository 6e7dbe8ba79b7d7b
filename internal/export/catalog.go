package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

// catalogColumns maps accepted header names (folded) to a setter.
var catalogColumns = map[string]func(e *entity.Equipment, v string) error{
	"NAME":              func(e *entity.Equipment, v string) error { e.Name = v; return nil },
	"NOME":              func(e *entity.Equipment, v string) error { e.Name = v; return nil },
	"MANUFACTURER":      func(e *entity.Equipment, v string) error { e.Manufacturer = v; return nil },
	"FABRICANTE":        func(e *entity.Equipment, v string) error { e.Manufacturer = v; return nil },
	"MODEL":             func(e *entity.Equipment, v string) error { e.Model = v; return nil },
	"MODELO":            func(e *entity.Equipment, v string) error { e.Model = v; return nil },
	"CATEGORY":          setCategory,
	"CATEGORIA":         setCategory,
	"TECHNOLOGY":        func(e *entity.Equipment, v string) error { e.Technology = strings.ToLower(v); return nil },
	"TECNOLOGIA":        func(e *entity.Equipment, v string) error { e.Technology = strings.ToLower(v); return nil },
	"FORMAT":            func(e *entity.Equipment, v string) error { e.Format = strings.ToLower(v); return nil },
	"FORMATO":           func(e *entity.Equipment, v string) error { e.Format = strings.ToLower(v); return nil },
	"LENS_TYPE":         func(e *entity.Equipment, v string) error { e.LensType = utils.NonEmpty(strings.ToLower(v)); return nil },
	"PTZ":               boolSetter(func(e *entity.Equipment) **bool { return &e.PTZ }),
	"VARIFOCAL":         boolSetter(func(e *entity.Equipment) **bool { return &e.Varifocal }),
	"POE":               boolSetter(func(e *entity.Equipment) **bool { return &e.PoE }),
	"MIN_RESOLUTION_MP": floatSetter(func(e *entity.Equipment) **float64 { return &e.MinResolutionMP }),
	"RESOLUTION_MP":     floatSetter(func(e *entity.Equipment) **float64 { return &e.MinResolutionMP }),
	"IR_RANGE_M":        floatSetter(func(e *entity.Equipment) **float64 { return &e.IRRangeMeters }),
	"POWER_DRAW_W":      floatSetter(func(e *entity.Equipment) **float64 { return &e.PowerDrawWatts }),
	"STORAGE_TB":        floatSetter(func(e *entity.Equipment) **float64 { return &e.StorageTB }),
	"PORT_COUNT": func(e *entity.Equipment, v string) error {
		n, err := utils.ParseQuantity(v)
		if err != nil {
			return err
		}
		p := int(n)
		e.PortCount = &p
		return nil
	},
	"TRANSFER_SPEED": func(e *entity.Equipment, v string) error { e.TransferSpeed = utils.NonEmpty(v); return nil },
}

func setCategory(e *entity.Equipment, v string) error {
	c, ok := constants.Canonicalize(v)
	if !ok {
		return fmt.Errorf("unknown category %q", v)
	}
	e.Category = string(c)
	return nil
}

func boolSetter(field func(*entity.Equipment) **bool) func(*entity.Equipment, string) error {
	return func(e *entity.Equipment, v string) error {
		switch utils.Fold(v) {
		case "SIM", "S", "YES", "Y", "TRUE", "1", "X":
			b := true
			*field(e) = &b
		case "NAO", "N", "NO", "FALSE", "0":
			b := false
			*field(e) = &b
		default:
			return fmt.Errorf("not a yes/no value %q", v)
		}
		return nil
	}
}

func floatSetter(field func(*entity.Equipment) **float64) func(*entity.Equipment, string) error {
	return func(e *entity.Equipment, v string) error {
		f, err := utils.ParseDecimal(v)
		if err != nil {
			return err
		}
		*field(e) = &f
		return nil
	}
}

// ImportCatalogXLSX reads equipment from the first sheet of a workbook. Row 1 holds the
// headers; unknown columns are ignored and blank cells leave the attribute unset. Rows
// without a model are skipped. The first invalid cell aborts the import.
func ImportCatalogXLSX(r io.Reader) ([]entity.Equipment, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	setters := make([]func(*entity.Equipment, string) error, len(rows[0]))
	var haveModel bool
	for i, h := range rows[0] {
		key := strings.ReplaceAll(utils.Fold(strings.TrimSpace(h)), " ", "_")
		setters[i] = catalogColumns[key]
		if key == "MODEL" || key == "MODELO" {
			haveModel = true
		}
	}
	if !haveModel {
		return nil, fmt.Errorf("sheet %s has no model column", sheets[0])
	}

	var out []entity.Equipment
	for n, row := range rows[1:] {
		var e entity.Equipment
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if i >= len(setters) || setters[i] == nil || cell == "" {
				continue
			}
			if err := setters[i](&e, cell); err != nil {
				col, _ := excelize.ColumnNumberToName(i + 1)
				return nil, fmt.Errorf("row %d column %s: %w", n+2, col, err)
			}
		}
		if e.Model == "" {
			continue
		}
		if e.Name == "" {
			e.Name = strings.TrimSpace(e.Manufacturer + " " + e.Model)
		}
		if e.Category == "" {
			e.Category = string(constants.Other)
		}
		out = append(out, e)
	}
	return out, nil
}
