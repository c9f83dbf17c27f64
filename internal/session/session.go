// Package session runs one attempt at diagnosing a case. It is a
// stamina-metered state machine: every reveal costs action points, wrong
// diagnoses cost more, and the attempt ends when the diagnosis is correct or
// the stamina is gone.
package session

import (
	"fmt"
	"sort"

	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/models"
)

// Outcome is the lifecycle state of a session. Solved and failed are terminal.
type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeSolved     Outcome = "solved"
	OutcomeFailed     Outcome = "failed"
)

// Kind classifies a log entry for presentation.
type Kind string

const (
	KindInfo     Kind = "info"
	KindExchange Kind = "exchange"
	KindAlert    Kind = "alert"
	KindSuccess  Kind = "success"
)

// LogEntry is one line of the session transcript. The log is append-only.
type LogEntry struct {
	Speaker string
	Text    string
	Kind    Kind
}

// Stamina policy. Labs cost more than the physical exam, and a wrong
// diagnosis costs more than any reveal.
const (
	InitialStamina = 100
	CostInterview  = 10
	CostPhysical   = 25
	CostLabs       = 40
)

// ErrInvalidCommand is the base error for commands the engine rejects. The
// session stays usable after a rejected command.
var ErrInvalidCommand = errors.NewSentinel("invalid command")

var (
	ErrSessionOver   = fmt.Errorf("%w: session is over", ErrInvalidCommand)
	ErrAlreadyAsked  = fmt.Errorf("%w: question already asked", ErrInvalidCommand)
	ErrUnknownIndex  = fmt.Errorf("%w: no such interview question", ErrInvalidCommand)
	ErrUnknownOption = fmt.Errorf("%w: option is not on the answer sheet", ErrInvalidCommand)
)

// ErrOutOfStamina signals that a command needed more stamina than remained.
// The command charges nothing and the session transitions to failed.
var ErrOutOfStamina = errors.NewSentinel("out of stamina")

// Session holds the mutable state of one play-through. It owns its case
// read-only and must only be driven by one player; commands arrive strictly
// one at a time.
type Session struct {
	c                *models.Case
	stamina          int
	asked            map[int]bool
	physicalRevealed bool
	labsRevealed     bool
	log              []LogEntry
	outcome          Outcome
}

// New starts a session for the given case with full stamina.
func New(c *models.Case) *Session {
	s := Session{
		c:       c,
		stamina: InitialStamina,
		asked:   make(map[int]bool),
		outcome: OutcomeInProgress,
	}
	s.append("Clinic", fmt.Sprintf("New patient admitted. History: %q", c.Patient.Narrative), KindInfo)
	return &s
}

// AskInterview plays the interview item at the given index. Each index is
// charged exactly once; repeats are rejected with ErrAlreadyAsked. The
// patient's answer is delivered verbatim regardless of relevance.
func (s *Session) AskInterview(index int) (models.InterviewItem, error) {
	if s.outcome != OutcomeInProgress {
		return models.InterviewItem{}, ErrSessionOver
	}
	if index < 0 || index >= len(s.c.InterviewItems) {
		return models.InterviewItem{}, ErrUnknownIndex
	}
	if s.asked[index] {
		return models.InterviewItem{}, ErrAlreadyAsked
	}
	if err := s.charge(CostInterview); err != nil {
		return models.InterviewItem{}, err
	}

	item := s.c.InterviewItems[index]
	s.asked[index] = true
	s.append("Doctor", item.Prompt, KindExchange)
	response := item.Response
	if item.Relevance != models.RelevanceRelevant {
		// Relevance affects pedagogy, never availability.
		response += " (the patient looks puzzled)"
	}
	s.append("Patient", response, KindExchange)
	return item, nil
}

// RevealPhysical runs the physical examination. The first call charges
// stamina; later calls return the cached findings without any state change.
func (s *Session) RevealPhysical() (models.PhysicalFindings, error) {
	if s.physicalRevealed {
		return s.c.PhysicalFindings, nil
	}
	if s.outcome != OutcomeInProgress {
		return models.PhysicalFindings{}, ErrSessionOver
	}
	if err := s.charge(CostPhysical); err != nil {
		return models.PhysicalFindings{}, err
	}
	s.physicalRevealed = true
	s.append("Clinic", "The nurse records the vital signs and examination findings.", KindInfo)
	return s.c.PhysicalFindings, nil
}

// RevealLabs orders the laboratory work-up. Reveal-once like RevealPhysical.
func (s *Session) RevealLabs() ([]models.LabFinding, error) {
	if s.labsRevealed {
		return s.c.LabFindings, nil
	}
	if s.outcome != OutcomeInProgress {
		return nil, ErrSessionOver
	}
	if err := s.charge(CostLabs); err != nil {
		return nil, err
	}
	s.labsRevealed = true
	s.append("Clinic", "Blood samples sent to the laboratory.", KindInfo)
	return s.c.LabFindings, nil
}

// SubmitDiagnosis resolves the given answer sheet option. A correct answer
// solves the session. A wrong answer costs the full penalty, clamped at zero
// stamina, and may be retried until the session ends.
func (s *Session) SubmitDiagnosis(answer string) (Verdict, error) {
	if s.outcome != OutcomeInProgress {
		return Verdict{}, ErrSessionOver
	}
	if !s.onAnswerSheet(answer) {
		return Verdict{}, ErrUnknownOption
	}

	verdict := resolve(answer, s.c.Diagnosis.CorrectAnswer)
	if verdict.Correct {
		s.outcome = OutcomeSolved
		s.append("Clinic", fmt.Sprintf("Correct diagnosis: %s. The patient will recover.", s.c.Diagnosis.CorrectAnswer), KindSuccess)
		return verdict, nil
	}

	// The penalty is not gated by remaining stamina the way reveals are:
	// a wrong diagnosis always lands, the charge just bottoms out at zero.
	s.stamina -= verdict.Penalty
	if s.stamina <= 0 {
		s.stamina = 0
		s.outcome = OutcomeFailed
		s.append("Clinic", fmt.Sprintf("Wrong diagnosis: not %s. The patient deteriorates beyond saving.", answer), KindAlert)
		return verdict, nil
	}
	s.append("Clinic", fmt.Sprintf("Wrong diagnosis: not %s. The patient's condition is critical. (-%d AP)", answer, verdict.Penalty), KindAlert)
	return verdict, nil
}

func (s *Session) onAnswerSheet(answer string) bool {
	for _, o := range s.c.Diagnosis.Options {
		if o == answer {
			return true
		}
	}
	return false
}

// charge deducts cost from the remaining stamina. If the stamina does not
// cover the cost, nothing is deducted and the session fails.
func (s *Session) charge(cost int) error {
	if s.stamina-cost < 0 {
		s.outcome = OutcomeFailed
		s.append("Clinic", "The doctor is exhausted. The patient is referred elsewhere.", KindAlert)
		return ErrOutOfStamina
	}
	s.stamina -= cost
	return nil
}

func (s *Session) append(speaker, text string, kind Kind) {
	s.log = append(s.log, LogEntry{Speaker: speaker, Text: text, Kind: kind})
}

// Stamina returns the remaining action points.
func (s *Session) Stamina() int { return s.stamina }

// Outcome returns the current lifecycle state.
func (s *Session) Outcome() Outcome { return s.outcome }

// Prompt pairs an interview prompt with whether it was already asked.
type Prompt struct {
	Index int
	Text  string
	Asked bool
}

// Debrief carries the answer key. It is only available once the session has
// ended.
type Debrief struct {
	CorrectAnswer string
	Explanation   string
}

// Snapshot is everything the presentation layer may see at a point in time.
// The engine withholds revealed findings until they are paid for and the
// debrief until the session is over, so spoilers cannot leak through a
// careless renderer.
type Snapshot struct {
	CaseID   string
	Title    string
	Patient  models.Patient
	Prompts  []Prompt
	Options  []string
	Stamina  int
	Outcome  Outcome
	Physical *models.PhysicalFindings
	Labs     []models.LabFinding
	Asked    []int
	Log      []LogEntry
	Debrief  *Debrief
}

// Snapshot renders the current session state for display.
func (s *Session) Snapshot() Snapshot {
	snapshot := Snapshot{
		CaseID:  s.c.ID,
		Title:   s.c.DisplayTitle,
		Patient: s.c.Patient,
		Stamina: s.stamina,
		Outcome: s.outcome,
		Options: s.c.Diagnosis.Options,
		Log:     append([]LogEntry(nil), s.log...),
	}
	for i, item := range s.c.InterviewItems {
		snapshot.Prompts = append(snapshot.Prompts, Prompt{Index: i, Text: item.Prompt, Asked: s.asked[i]})
	}
	for i := range s.asked {
		snapshot.Asked = append(snapshot.Asked, i)
	}
	sort.Ints(snapshot.Asked)
	if s.physicalRevealed {
		physical := s.c.PhysicalFindings
		snapshot.Physical = &physical
	}
	if s.labsRevealed {
		snapshot.Labs = s.c.LabFindings
	}
	if s.outcome != OutcomeInProgress {
		snapshot.Debrief = &Debrief{
			CorrectAnswer: s.c.Diagnosis.CorrectAnswer,
			Explanation:   s.c.Explanation,
		}
	}
	return snapshot
}
