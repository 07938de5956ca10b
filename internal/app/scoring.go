package app

import (
	"sort"

	"fsqa-audit-service/internal/domain"
)

// scoreSession sums earned points per applicable module, detects auto-fail responses and
// grades the session against its fixed total. Unanswered questions contribute 0 and never
// trigger an auto-fail; only an explicit 0 on an auto-fail question does.
func scoreSession(session domain.Session, catalog domain.Catalog, responses []domain.Response) domain.ScoreResult {
	byQuestion := make(map[int64]domain.Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	modules := sortedModules(catalog.Modules)
	breakdown := make([]domain.ModuleBreakdown, 0, len(modules))
	earned := 0
	autoFail := false
	for _, m := range modules {
		row := domain.ModuleBreakdown{
			ModuleCode:     m.Code,
			ModuleName:     m.Name,
			TotalQuestions: len(m.Questions),
		}
		for _, q := range m.Questions {
			row.MaxPoints += q.Points
			resp, ok := byQuestion[q.ID]
			if !ok {
				continue
			}
			row.AnsweredCount++
			row.EarnedPoints += resp.Score
			if q.IsAutoFail && resp.Score == 0 {
				autoFail = true
			}
		}
		earned += row.EarnedPoints
		breakdown = append(breakdown, row)
	}

	pct := domain.Percent(earned, session.TotalPoints)
	return domain.ScoreResult{
		SessionID:    session.ID,
		EarnedPoints: earned,
		TotalPoints:  session.TotalPoints,
		ScorePct:     pct,
		HasAutoFail:  autoFail,
		Grade:        domain.ClassifyGrade(pct, autoFail),
		Modules:      breakdown,
	}
}

func sortedModules(in []domain.Module) []domain.Module {
	out := make([]domain.Module, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Code < out[j].Code
	})
	return out
}
