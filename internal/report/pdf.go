package report

import (
	"fmt"
	"time"

	"github.com/dori/stint/internal/model"
	"github.com/dori/stint/internal/tracker"
	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

var tableProps = props.TableList{
	HeaderProp: props.TableListContent{
		Size:      10,
		GridSizes: []uint{9, 3},
	},
	ContentProp: props.TableListContent{
		Size:      10,
		GridSizes: []uint{9, 3},
	},
	Align:                consts.Left,
	AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
	HeaderContentSpace:   1,
	Line:                 false,
}

// WritePDF writes a report with one table per project to path
func WritePDF(path, store string, totals []tracker.ProjectTotal, generatedAt time.Time) error {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Time report", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("%s, %s", store, generatedAt.Format("2006-01-02 15:04")), props.Text{
					Style: consts.Normal,
					Align: consts.Center,
					Size:  10,
				})
			})
		})
	})

	var total time.Duration
	for _, p := range totals {
		total += p.Total

		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(p.Name, props.Text{
					Top:   5,
					Style: consts.Bold,
					Size:  12,
				})
			})
		})

		rows := make([][]string, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			rows = append(rows, []string{t.Name, model.FormatDuration(t.Total)})
		}
		if len(rows) > 0 {
			m.TableList([]string{"Task", "Time"}, rows, tableProps)
		}

		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("Subtotal: %s", model.FormatDuration(p.Total)), props.Text{
					Style: consts.Bold,
					Align: consts.Right,
					Size:  10,
				})
			})
		})
	}

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Total: %s", model.FormatDuration(total)), props.Text{
				Top:   10,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})

	if err := m.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
