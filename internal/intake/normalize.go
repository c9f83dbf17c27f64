// Package intake turns raw generated case payloads into the canonical case
// model. The generator's output schema drifted repeatedly over the project's
// lifetime, so normalization dispatches on which fields are present instead of
// trusting any single shape.
package intake

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/models"
	"github.com/myrjola/triage/internal/random"
)

// MalformedCaseError reports that a payload resembles no known generator
// schema closely enough to locate the required fields. Loading such a case
// must fail; the normalizer never fabricates medical content.
type MalformedCaseError struct {
	Missing []string
}

func (e *MalformedCaseError) Error() string {
	return fmt.Sprintf("malformed case payload: missing %s", strings.Join(e.Missing, ", "))
}

// Normalize maps a raw case payload to the canonical case model.
//
// The id comes from the case store, not from the payload. rng drives the
// single randomized step, the diagnosis option shuffle; pass nil outside of
// tests to use a crypto-seeded source.
func Normalize(id string, raw []byte, rng *rand.Rand) (*models.Case, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode case payload")
	}

	docs := sources(&doc)

	patient := extractPatient(docs)
	narrative := extractNarrative(docs, &patient)
	patient.Narrative = narrative

	correct := extractCorrectAnswer(docs)
	options := extractOptions(docs, correct)

	var missing []string
	if narrative == "" {
		missing = append(missing, "narrative")
	}
	if correct == "" {
		missing = append(missing, "correct answer")
	}
	if len(options) == 0 {
		missing = append(missing, "diagnosis options")
	}
	if len(missing) > 0 {
		return nil, &MalformedCaseError{Missing: missing}
	}

	if rng == nil {
		seed, err := random.NewSeed()
		if err != nil {
			return nil, errors.Wrap(err, "seed option shuffle")
		}
		rng = rand.New(rand.NewPCG(uint64(seed), 0))
	}
	options = dedupeOptions(options, correct)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	c := models.Case{
		ID:             id,
		DisplayTitle:   displayTitle(docs, patient, correct),
		Patient:        patient,
		InterviewItems: extractInterview(docs),
		PhysicalFindings: models.PhysicalFindings{
			Vitals:       extractVitals(docs),
			Observations: extractObservations(docs),
		},
		LabFindings: extractLabs(docs),
		Diagnosis: models.Diagnosis{
			CorrectAnswer: correct,
			Options:       options,
		},
		Explanation: extractExplanation(docs),
	}
	return &c, nil
}

// sources orders the nested documents by extraction priority: a scenario
// wrapper wins over its siblings, a simulation block wins over legacy
// top-level fields, and the top level fills whatever remains.
func sources(doc *document) []*document {
	var docs []*document
	if doc.Inner != nil {
		docs = append(docs, sources(doc.Inner)...)
	}
	if doc.Sim != nil {
		docs = append(docs, doc.Sim)
	}
	if doc.Raw != nil {
		docs = append(docs, sources(doc.Raw)...)
	}
	return append(docs, doc)
}

func extractPatient(docs []*document) models.Patient {
	for _, d := range docs {
		if d.Pat == nil {
			continue
		}
		return models.Patient{
			Name:       strings.TrimSpace(d.Pat.Name),
			Age:        int(d.Pat.Age),
			Occupation: strings.TrimSpace(d.Pat.Occupation),
			Narrative:  strings.TrimSpace(d.Pat.History),
		}
	}
	return models.Patient{}
}

func extractNarrative(docs []*document, patient *models.Patient) string {
	if patient.Narrative != "" {
		return patient.Narrative
	}
	for _, d := range docs {
		if s := strings.TrimSpace(d.ChiefComplaint); s != "" {
			return s
		}
	}
	return ""
}

func extractInterview(docs []*document) []models.InterviewItem {
	items := []models.InterviewItem{}
	for _, d := range docs {
		switch {
		case len(d.Anamnesis) > 0:
			for _, e := range d.Anamnesis {
				items = append(items, exchangeItem(e))
			}
		case len(d.Interview) > 0:
			for _, e := range d.Interview {
				items = append(items, exchangeItem(e))
			}
		case len(d.Dialogues) > 0:
			for _, e := range d.Dialogues {
				items = append(items, exchangeItem(e))
			}
		case len(d.Symptoms) > 0:
			// Symptom lists predate the interview mechanic. Each symptom
			// becomes one askable finding, and without a relevance signal in
			// the source everything stays relevant.
			for i, s := range d.Symptoms {
				items = append(items, models.InterviewItem{
					Prompt:    fmt.Sprintf("Ask about clinical sign #%d", i+1),
					Response:  strings.TrimSpace(s),
					Relevance: models.RelevanceRelevant,
				})
			}
		default:
			continue
		}
		return items
	}
	return items
}

func exchangeItem(e rawExchange) models.InterviewItem {
	return models.InterviewItem{
		Prompt:    stripSpeaker(e.Question),
		Response:  stripSpeaker(e.Answer),
		Relevance: relevanceOf(e),
	}
}

func relevanceOf(e rawExchange) models.Relevance {
	switch strings.ToLower(strings.TrimSpace(e.Type)) {
	case "noise":
		return models.RelevanceNoise
	case "trap":
		return models.RelevanceTrap
	case "relevant":
		return models.RelevanceRelevant
	}
	if e.IsRelevant != nil && !*e.IsRelevant {
		return models.RelevanceNoise
	}
	// Absence of a relevance signal must not invent pedagogy.
	return models.RelevanceRelevant
}

var speakerLabels = map[string]bool{
	"doctor": true, "patient": true, "dr": true,
	"dokter": true, "pasien": true,
}

// stripSpeaker removes a leading "Doctor:"/"Patient:" label left over from
// the dialogue-oriented payload shape.
func stripSpeaker(s string) string {
	s = strings.TrimSpace(s)
	head, tail, found := strings.Cut(s, ":")
	if !found {
		return s
	}
	if speakerLabels[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(head), "."))] {
		return strings.TrimSpace(tail)
	}
	return s
}

func extractVitals(docs []*document) map[string]string {
	for _, d := range docs {
		if d.Examinations != nil && d.Examinations.Physical != nil && len(d.Examinations.Physical.Vitals) > 0 {
			return d.Examinations.Physical.Vitals
		}
	}
	for _, d := range docs {
		if v := d.VitalSigns; v != nil {
			return map[string]string{
				"Blood pressure":   fmt.Sprintf("%d/%d mmHg", int(v.Systolic), int(v.Diastolic)),
				"Heart rate":       fmt.Sprintf("%d bpm", int(v.HeartRate)),
				"Temperature":      fmt.Sprintf("%.1f °C", v.Temperature),
				"Respiratory rate": fmt.Sprintf("%d /min", int(v.RespRate)),
			}
		}
	}
	return map[string]string{}
}

func extractObservations(docs []*document) []string {
	for _, d := range docs {
		if d.Examinations != nil && d.Examinations.Physical != nil && len(d.Examinations.Physical.Observations) > 0 {
			return d.Examinations.Physical.Observations
		}
	}
	for _, d := range docs {
		if len(d.PhysicalCheck) > 0 {
			return d.PhysicalCheck
		}
	}
	return []string{}
}

func extractLabs(docs []*document) []models.LabFinding {
	var entries []flexLab
	for _, d := range docs {
		if d.Examinations != nil && len(d.Examinations.Labs) > 0 {
			entries = d.Examinations.Labs
			break
		}
	}
	if entries == nil {
		for _, d := range docs {
			if len(d.LabAbnormal) > 0 {
				entries = d.LabAbnormal
				break
			}
			if len(d.LabResults) > 0 {
				entries = d.LabResults
				break
			}
		}
	}
	labs := []models.LabFinding{}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = "Result"
		}
		labs = append(labs, models.LabFinding{Name: name, Result: strings.TrimSpace(e.Result)})
	}
	return labs
}

func extractCorrectAnswer(docs []*document) string {
	for _, d := range docs {
		if d.Diagnosis != nil && strings.TrimSpace(d.Diagnosis.CorrectAnswer) != "" {
			return strings.TrimSpace(d.Diagnosis.CorrectAnswer)
		}
	}
	for _, d := range docs {
		if s := strings.TrimSpace(d.CorrectDiagnosis); s != "" {
			return s
		}
		if s := strings.TrimSpace(d.DiagnosisAnswer); s != "" {
			return s
		}
	}
	return ""
}

func extractOptions(docs []*document, correct string) []string {
	for _, d := range docs {
		if d.Diagnosis != nil && len(d.Diagnosis.Options) > 0 {
			return d.Diagnosis.Options
		}
	}
	for _, d := range docs {
		if len(d.Options) > 0 {
			return d.Options
		}
		if len(d.DiagnosisOptions) > 0 {
			return d.DiagnosisOptions
		}
	}
	for _, d := range docs {
		if len(d.DifferentialDiagnosis) > 0 {
			return append([]string{correct}, d.DifferentialDiagnosis...)
		}
	}
	if correct != "" {
		return []string{correct}
	}
	return nil
}

// dedupeOptions guarantees the correct answer appears exactly once among the
// candidates. Comparison is case-sensitive, matching the resolver.
func dedupeOptions(options []string, correct string) []string {
	out := make([]string, 0, len(options))
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	if !seen[correct] {
		out = append(out, correct)
	}
	return out
}

func extractExplanation(docs []*document) string {
	for _, d := range docs {
		if s := strings.TrimSpace(d.Explanation); s != "" {
			return s
		}
	}
	for _, d := range docs {
		if s := strings.TrimSpace(string(d.Wiki)); s != "" {
			return s
		}
	}
	return ""
}

// displayTitle picks the pre-resolution title. Older payloads put the
// diagnosis name straight into the title field, so an explicit anti-spoiler
// field or a synthesized patient title always wins over the raw title.
func displayTitle(docs []*document, patient models.Patient, correct string) string {
	for _, d := range docs {
		if d.Meta != nil && strings.TrimSpace(d.Meta.CaseTitle) != "" {
			if t := strings.TrimSpace(d.Meta.CaseTitle); !strings.EqualFold(t, correct) {
				return t
			}
		}
	}
	if t := syntheticTitle(patient); t != "" {
		return t
	}
	for _, d := range docs {
		if t := strings.TrimSpace(d.Title); t != "" && !strings.EqualFold(t, correct) {
			return t
		}
	}
	return "Unidentified illness"
}

func syntheticTitle(patient models.Patient) string {
	complaint := complaintExcerpt(patient.Narrative)
	switch {
	case patient.Name != "" && complaint != "":
		return fmt.Sprintf("Case of %s – %s", patient.Name, complaint)
	case patient.Name != "":
		return fmt.Sprintf("Case of %s", patient.Name)
	case patient.Age > 0 && complaint != "":
		return fmt.Sprintf("Case of a %d-year-old patient – %s", patient.Age, complaint)
	case complaint != "":
		return fmt.Sprintf("Case of a patient with %s", complaint)
	}
	return ""
}

const maxComplaintExcerpt = 60

// complaintExcerpt shortens the narrative to a title-sized chief complaint.
func complaintExcerpt(narrative string) string {
	s := strings.TrimSpace(narrative)
	if i := strings.IndexAny(s, ".!?\n"); i > 0 {
		s = s[:i]
	}
	if len(s) > maxComplaintExcerpt {
		if i := strings.LastIndex(s[:maxComplaintExcerpt], " "); i > 0 {
			s = s[:i] + "…"
		} else {
			s = s[:maxComplaintExcerpt] + "…"
		}
	}
	return strings.ToLower(strings.TrimSpace(s))
}
