package models

// Relevance classifies an interview item by its diagnostic value.
//
// A relevant item points towards the diagnosis, noise is filler, and a trap
// suggests a wrong differential. Relevance affects how the answer is
// presented, never whether it is available.
type Relevance string

const (
	RelevanceRelevant Relevance = "relevant"
	RelevanceNoise    Relevance = "noise"
	RelevanceTrap     Relevance = "trap"
)

// Patient describes the person presenting in a case.
type Patient struct {
	Name       string
	Age        int
	Occupation string
	// Narrative is the chief complaint and history text. It is always
	// present in a normalized case regardless of the source payload shape.
	Narrative string
}

// InterviewItem is one selectable question with the patient's canned answer.
type InterviewItem struct {
	Prompt    string
	Response  string
	Relevance Relevance
}

// PhysicalFindings hold the results of the physical examination.
type PhysicalFindings struct {
	// Vitals maps a vital sign name, e.g. "Blood pressure", to a display string.
	Vitals map[string]string
	// Observations are free-text findings in a stable order.
	Observations []string
}

// LabFinding is one laboratory result.
type LabFinding struct {
	Name   string
	Result string
}

// Diagnosis holds the answer key for a case.
type Diagnosis struct {
	CorrectAnswer string
	// Options contains CorrectAnswer exactly once among the differentials.
	// The order is scrambled at normalization time.
	Options []string
}

// Case is the canonical, immutable form of one playable scenario. It is
// produced by the intake normalizer from a raw generated payload and is never
// mutated afterwards, so it is safe to share between play sessions.
type Case struct {
	// ID is assigned by the case store, not derived from the payload.
	ID string
	// DisplayTitle is shown before the case is resolved. It must not equal
	// the correct diagnosis.
	DisplayTitle     string
	Patient          Patient
	InterviewItems   []InterviewItem
	PhysicalFindings PhysicalFindings
	LabFindings      []LabFinding
	Diagnosis        Diagnosis
	// Explanation is the educational text shown only after the session ends.
	Explanation string
}

// CaseSummary is the lobby listing projection of a stored case.
type CaseSummary struct {
	ID         string `db:"id"`
	Title      string `db:"title"`
	Difficulty string `db:"difficulty"`
	CreatedAt  string `db:"created_at"`
}
