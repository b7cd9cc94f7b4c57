package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

// Nomes das planilhas do export
const (
	SheetSummary    = "Souhrn"
	SheetTasks      = "Úkoly"
	SheetTeam       = "Tým"
	SheetBudget     = "Rozpočet"
	SheetMilestones = "Milníky"
	SheetRisks      = "Rizika"
)

// ExcelGenerator gera a planilha de uma análise
type ExcelGenerator struct{}

// NewExcelGenerator cria um novo gerador de Excel
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// table é uma planilha com cabeçalho e linhas
type table struct {
	sheet   string
	headers []string
	rows    [][]interface{}
	widths  []float64
}

// Generate gera um arquivo Excel com uma planilha por seção da análise
func (g *ExcelGenerator) Generate(result *model.AnalysisResult) (*bytes.Buffer, error) {
	if result == nil {
		return nil, fmt.Errorf("gerar excel: análise vazia")
	}

	f := excelize.NewFile()
	defer f.Close()

	// Renomeia a sheet padrão
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, SheetSummary); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}

	headerStyle, err := g.headerStyle(f)
	if err != nil {
		return nil, fmt.Errorf("criar estilo: %w", err)
	}
	styleEven, styleOdd, err := g.rowStyles(f)
	if err != nil {
		return nil, fmt.Errorf("criar estilo: %w", err)
	}

	for i, t := range g.tables(result) {
		if i > 0 {
			if _, err := f.NewSheet(t.sheet); err != nil {
				return nil, fmt.Errorf("criar sheet %s: %w", t.sheet, err)
			}
		}
		if err := g.writeTable(f, t, headerStyle, styleEven, styleOdd); err != nil {
			return nil, fmt.Errorf("escrever %s: %w", t.sheet, err)
		}
	}

	f.SetActiveSheet(0)

	// Escreve para buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}

	return buf, nil
}

func (g *ExcelGenerator) tables(r *model.AnalysisResult) []table {
	summary := table{
		sheet:   SheetSummary,
		headers: []string{"Položka", "Hodnota"},
		widths:  []float64{24, 90},
		rows: [][]interface{}{
			{"Název projektu", r.ProjectName},
			{"Typ projektu", string(r.ProjectType)},
			{"Shrnutí", r.ProjectSummary},
			{"Složitost", string(r.Complexity)},
			{"Délka (týdny)", r.EstimatedDuration.Weeks},
			{"Odhad délky", r.EstimatedDuration.Description},
			{"Celkem (" + r.Budget.Currency + ")", r.Budget.Total},
		},
	}
	if r.QuizContext != nil {
		summary.rows = append(summary.rows,
			[]interface{}{"Rozpočtové pásmo", r.QuizContext.BudgetTier},
			[]interface{}{"Časový rámec", r.QuizContext.Timeline},
		)
	}
	for i, rec := range r.Recommendations {
		summary.rows = append(summary.rows, []interface{}{fmt.Sprintf("Doporučení %d", i+1), rec})
	}

	tasks := table{
		sheet:   SheetTasks,
		headers: []string{"ID", "Název", "Kategorie", "Priorita", "Obtížnost", "Hodiny", "Závislosti", "Dovednosti", "Výstupy"},
		widths:  []float64{10, 40, 14, 10, 12, 10, 20, 40, 50},
	}
	for _, t := range r.Tasks {
		tasks.rows = append(tasks.rows, []interface{}{
			t.ID, t.Title, string(t.Category), string(t.Priority), string(t.Difficulty),
			t.EstimatedHours, strings.Join(t.Dependencies, ", "),
			strings.Join(t.Skills, ", "), strings.Join(t.Deliverables, ", "),
		})
	}

	team := table{
		sheet:   SheetTeam,
		headers: []string{"Role", "Seniorita", "Sazba min", "Sazba max", "Měna", "Hodiny", "Dovednosti"},
		widths:  []float64{30, 12, 12, 12, 8, 10, 50},
	}
	for _, m := range r.SuggestedTeam {
		team.rows = append(team.rows, []interface{}{
			m.Role, string(m.SeniorityLevel), m.EstimatedHourlyRate.Min, m.EstimatedHourlyRate.Max,
			m.EstimatedHourlyRate.Currency, m.EstimatedHours, strings.Join(m.RequiredSkills, ", "),
		})
	}

	budget := table{
		sheet:   SheetBudget,
		headers: []string{"Kategorie", "Částka", "Podíl (%)"},
		widths:  []float64{34, 14, 12},
	}
	for _, item := range r.Budget.Breakdown {
		budget.rows = append(budget.rows, []interface{}{item.Category, item.Amount, item.Percentage})
	}
	budget.rows = append(budget.rows,
		[]interface{}{"Mezisoučet", r.Budget.Subtotal, ""},
		[]interface{}{"Poplatek platformy", r.Budget.PlatformFee, ""},
		[]interface{}{"Celkem", r.Budget.Total, ""},
		[]interface{}{"Poznámka", r.Budget.Note, ""},
	)

	milestones := table{
		sheet:   SheetMilestones,
		headers: []string{"Milník", "Týden", "Popis", "Úkoly"},
		widths:  []float64{30, 8, 60, 24},
	}
	for _, ms := range r.Milestones {
		milestones.rows = append(milestones.rows, []interface{}{
			ms.Title, ms.WeekNumber, ms.Description, strings.Join(ms.TaskIDs, ", "),
		})
	}

	risks := table{
		sheet:   SheetRisks,
		headers: []string{"Riziko", "Závažnost", "Opatření"},
		widths:  []float64{50, 12, 60},
	}
	for _, risk := range r.Risks {
		risks.rows = append(risks.rows, []interface{}{risk.Description, string(risk.Severity), risk.Mitigation})
	}

	return []table{summary, tasks, team, budget, milestones, risks}
}

// headerStyle estilo do cabeçalho
func (g *ExcelGenerator) headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
}

// rowStyles estilos alternados para linhas
func (g *ExcelGenerator) rowStyles(f *excelize.File) (even, odd int, err error) {
	border := []excelize.Border{
		{Type: "left", Color: "D9D9D9", Style: 1},
		{Type: "top", Color: "D9D9D9", Style: 1},
		{Type: "bottom", Color: "D9D9D9", Style: 1},
		{Type: "right", Color: "D9D9D9", Style: 1},
	}
	even, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFFFFF"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return 0, 0, err
	}
	odd, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	return even, odd, err
}

// writeTable escreve cabeçalho, linhas e larguras de uma planilha
func (g *ExcelGenerator) writeTable(f *excelize.File, t table, headerStyle, styleEven, styleOdd int) error {
	for col, header := range t.headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(t.sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(t.sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for row, values := range t.rows {
		excelRow := row + 2 // Linha 1 é header

		style := styleEven
		if row%2 == 1 {
			style = styleOdd
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, excelRow)
			if err := f.SetCellValue(t.sheet, cell, value); err != nil {
				return err
			}
			if err := f.SetCellStyle(t.sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}

	for col, width := range t.widths {
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(t.sheet, colName, colName, width); err != nil {
			return err
		}
	}
	return nil
}
