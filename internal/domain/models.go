package domain

import "time"

// Facility is a farm or packing site that audit modules apply to.
type Facility struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Question is a single audit checklist item.
type Question struct {
	ID         int64  `json:"id"`
	ModuleID   int64  `json:"module_id"`
	Text       string `json:"text"`
	Points     int    `json:"points"`
	IsAutoFail bool   `json:"is_auto_fail"`
	SortOrder  int    `json:"sort_order"`
}

// Module groups questions, e.g. "Harvest Operations".
type Module struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	SortOrder int        `json:"sort_order"`
	Questions []Question `json:"questions"`
}

// TotalPoints is the sum of the module's question points.
func (m Module) TotalPoints() int {
	total := 0
	for _, q := range m.Questions {
		total += q.Points
	}
	return total
}

// Catalog is the set of modules applicable to one facility.
type Catalog struct {
	Facility Facility `json:"facility"`
	Modules  []Module `json:"modules"`
}

// TotalPoints sums every question under every applicable module.
func (c Catalog) TotalPoints() int {
	total := 0
	for _, m := range c.Modules {
		total += m.TotalPoints()
	}
	return total
}

// Question looks up a question by id across all applicable modules.
func (c Catalog) Question(id int64) (Question, bool) {
	for _, m := range c.Modules {
		for _, q := range m.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Clone returns a copy that shares no slices with c.
func (c Catalog) Clone() Catalog {
	out := Catalog{Facility: c.Facility}
	if c.Modules == nil {
		return out
	}
	out.Modules = make([]Module, len(c.Modules))
	for i, m := range c.Modules {
		out.Modules[i] = m
		if m.Questions != nil {
			out.Modules[i].Questions = append([]Question(nil), m.Questions...)
		}
	}
	return out
}

// Session is one scoring attempt ("simulation") against a facility's catalog.
// TotalPoints is fixed at creation; the summary fields are only meaningful once ScoredAt is set.
type Session struct {
	ID           int64      `json:"id"`
	FacilityID   int64      `json:"facility_id"`
	TotalPoints  int        `json:"total_points"`
	EarnedPoints int        `json:"earned_points"`
	ScorePct     int        `json:"score_pct"`
	HasAutoFail  bool       `json:"has_auto_fail"`
	Grade        Grade      `json:"grade,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ScoredAt     *time.Time `json:"scored_at,omitempty"`
}

// Scored reports whether a score has been computed for the session.
func (s Session) Scored() bool {
	return s.ScoredAt != nil
}

// Response is the recorded score for one question of one session.
type Response struct {
	SessionID  int64     `json:"session_id"`
	QuestionID int64     `json:"question_id"`
	Score      int       `json:"score"`
	Notes      string    `json:"notes,omitempty"`
	Evidence   string    `json:"evidence,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ResponseInput is a caller-supplied response prior to validation.
type ResponseInput struct {
	QuestionID int64
	Score      int
	Notes      string
	Evidence   string
}

// ScoreSummary holds the fields written onto a session by scoring.
type ScoreSummary struct {
	EarnedPoints int
	ScorePct     int
	HasAutoFail  bool
	Grade        Grade
	ScoredAt     time.Time
}

// ModuleBreakdown is the per-module portion of a score.
type ModuleBreakdown struct {
	ModuleCode     string `json:"module_code"`
	ModuleName     string `json:"module_name"`
	MaxPoints      int    `json:"max_points"`
	EarnedPoints   int    `json:"earned_points"`
	AnsweredCount  int    `json:"answered_count"`
	TotalQuestions int    `json:"total_questions"`
}

// ScoreResult is the composed output of scoring a session.
type ScoreResult struct {
	SessionID    int64             `json:"session_id"`
	EarnedPoints int               `json:"earned_points"`
	TotalPoints  int               `json:"total_points"`
	ScorePct     int               `json:"score_pct"`
	HasAutoFail  bool              `json:"has_auto_fail"`
	Grade        Grade             `json:"grade"`
	Modules      []ModuleBreakdown `json:"modules"`
}

// RequirementState is the documentation status of one requirement at a facility.
type RequirementState string

const (
	RequirementCurrent       RequirementState = "current"
	RequirementOutdated      RequirementState = "outdated"
	RequirementMissing       RequirementState = "missing"
	RequirementNotApplicable RequirementState = "not_applicable"
)

// Valid reports whether s is one of the known states.
func (s RequirementState) Valid() bool {
	switch s {
	case RequirementCurrent, RequirementOutdated, RequirementMissing, RequirementNotApplicable:
		return true
	}
	return false
}

// RequirementStatus is the live status row for a (facility, requirement) pair.
type RequirementStatus struct {
	FacilityID      int64            `json:"facility_id"`
	RequirementCode string           `json:"requirement_code"`
	Status          RequirementState `json:"status"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Readiness is the computed documentation readiness of a facility.
type Readiness struct {
	Total         int `json:"total"`
	Current       int `json:"current"`
	Outdated      int `json:"outdated"`
	Missing       int `json:"missing"`
	NotApplicable int `json:"not_applicable"`
	ReadinessPct  int `json:"readiness_pct"`
}

// ReadinessSnapshot is an immutable, dated copy of a readiness computation.
type ReadinessSnapshot struct {
	ID          int64     `json:"snapshot_id"`
	FacilityID  int64     `json:"facility_id"`
	Readiness
	TriggeredBy string    `json:"triggered_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChemicalApplication is a pesticide/chemical application record.
// Residue values are nil when not recorded.
type ChemicalApplication struct {
	ID                      int64     `json:"id"`
	FacilityID              int64     `json:"facility_id"`
	ProductName             string    `json:"product_name"`
	ExpectedResidueLevelPPM *float64  `json:"expected_residue_level_ppm,omitempty"`
	MRLPPM                  *float64  `json:"mrl_ppm,omitempty"`
	AppliedAt               time.Time `json:"applied_at"`
}

// ResidueCompliance summarizes expected residue against MRL thresholds.
type ResidueCompliance struct {
	Total         int `json:"total"`
	Compliant     int `json:"compliant"`
	CompliancePct int `json:"compliance_pct"`
}
