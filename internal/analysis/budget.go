package analysis

import (
	"math"
	"sort"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

// PlatformFeeRate é a taxa fixa da plataforma sobre o subtotal
const PlatformFeeRate = 0.08

// Currency é a moeda de todos os valores calculados
const Currency = "CZK"

const (
	noteSenior  = "Odhad na základě seniorních sazeb českého trhu. Obsahuje komplexní řešení vyžadující zkušený tým."
	noteAverage = "Odhad na základě průměrných sazeb na českém trhu. Cena se může lišit dle konkrétních požadavků."
)

// CalculateBudget agrega o custo de cada papel do time.
// Tasks fazem parte do contrato mas não alteram o valor: o custo vem das horas do time.
func CalculateBudget(team []model.TeamMember, tasks []model.Task, complexity model.Complexity) model.Budget {
	var (
		order   []string
		amounts = make(map[string]int)
	)

	// Membros com o mesmo papel somam na mesma categoria
	for _, m := range team {
		cost := int(math.Round(m.EstimatedHourlyRate.Mid() * float64(m.EstimatedHours)))
		if _, ok := amounts[m.Role]; !ok {
			order = append(order, m.Role)
		}
		amounts[m.Role] += cost
	}

	subtotal := 0
	for _, role := range order {
		subtotal += amounts[role]
	}

	breakdown := make([]model.BudgetItem, 0, len(order))
	for _, role := range order {
		item := model.BudgetItem{Category: role, Amount: amounts[role]}
		if subtotal > 0 {
			item.Percentage = int(math.Round(float64(item.Amount) / float64(subtotal) * 100))
		}
		breakdown = append(breakdown, item)
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Amount > breakdown[j].Amount
	})

	fee := int(math.Round(float64(subtotal) * PlatformFeeRate))

	note := noteAverage
	if complexity == model.ComplexityHigh {
		note = noteSenior
	}

	return model.Budget{
		Breakdown:   breakdown,
		Subtotal:    subtotal,
		PlatformFee: fee,
		Total:       subtotal + fee,
		Currency:    Currency,
		Note:        note,
	}
}
