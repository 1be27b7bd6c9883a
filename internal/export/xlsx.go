// Package export renders run results to files: spreadsheets for the
// analysts, GeoJSON for the mapping clients.
package export

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/spatial-cli/internal/model"
)

// WriteXLSX writes a run to a two-sheet workbook: the global statistic and
// the per-unit result table. Undefined unit statistics stay as empty cells,
// never zeros.
func WriteXLSX(path string, run *model.Run) error {
	if run.Result == nil {
		return eris.New("export: run has no result")
	}

	f := xlsx.NewFile()

	global, err := f.AddSheet("global")
	if err != nil {
		return eris.Wrap(err, "export: add global sheet")
	}
	ruleJSON, err := json.Marshal(run.Rule)
	if err != nil {
		return eris.Wrap(err, "export: marshal rule")
	}
	g := run.Result.Global
	for _, pair := range []struct {
		key string
		set func(*xlsx.Cell)
	}{
		{"run_id", func(c *xlsx.Cell) { c.SetString(run.ID) }},
		{"source", func(c *xlsx.Cell) { c.SetString(run.Source) }},
		{"attribute", func(c *xlsx.Cell) { c.SetString(run.Attribute) }},
		{"rule", func(c *xlsx.Cell) { c.SetString(string(ruleJSON)) }},
		{"alpha", func(c *xlsx.Cell) { c.SetFloat(run.Alpha) }},
		{"moran_i", func(c *xlsx.Cell) { c.SetFloat(g.I) }},
		{"expectation", func(c *xlsx.Cell) { c.SetFloat(g.Expectation) }},
		{"variance", func(c *xlsx.Cell) { c.SetFloat(g.Variance) }},
		{"z_score", func(c *xlsx.Cell) { c.SetFloat(g.ZScore) }},
		{"p_value", func(c *xlsx.Cell) { c.SetFloat(g.PValue) }},
		{"n", func(c *xlsx.Cell) { c.SetInt(g.N) }},
		{"islands", func(c *xlsx.Cell) { c.SetInt(g.Islands) }},
	} {
		row := global.AddRow()
		row.AddCell().SetString(pair.key)
		pair.set(row.AddCell())
	}

	units, err := f.AddSheet("units")
	if err != nil {
		return eris.Wrap(err, "export: add units sheet")
	}
	header := units.AddRow()
	for _, h := range []string{"index", "unit_id", "local_i", "z_score", "p_value", "label"} {
		header.AddCell().SetString(h)
	}
	for _, u := range run.Result.Units {
		row := units.AddRow()
		row.AddCell().SetInt(u.Index)
		row.AddCell().SetString(u.UnitID)
		if u.Local.Defined {
			row.AddCell().SetFloat(u.Local.I)
			row.AddCell().SetFloat(u.Local.ZScore)
			row.AddCell().SetFloat(u.Local.PValue)
		} else {
			row.AddCell()
			row.AddCell()
			row.AddCell()
		}
		row.AddCell().SetString(string(u.Label))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
