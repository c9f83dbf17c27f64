package intake

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The case generator has emitted several mutually incompatible JSON shapes
// over time and none of them carries a version tag. The document type decodes
// the union of every observed shape. Dispatch happens on field presence, not
// on a schema identifier.
type document struct {
	Title string      `json:"title"`
	Meta  *meta       `json:"meta"`
	Wiki  flexText    `json:"wiki"`
	Sim   *document   `json:"simulation"`
	Inner *document   `json:"scenario"`
	Raw   *document   `json:"content"`
	Pat   *rawPatient `json:"patient"`

	Symptoms      []string       `json:"symptoms"`
	Dialogues     []rawExchange  `json:"dialogues"`
	Anamnesis     []rawExchange  `json:"anamnesis"`
	Interview     []rawExchange  `json:"interview_questions"`
	PhysicalCheck []string       `json:"physical_check"`
	LabResults    []flexLab      `json:"lab_results"`
	LabAbnormal   []flexLab      `json:"lab_abnormalities"`
	Examinations  *examinations  `json:"examinations"`
	VitalSigns    *rawVitalSigns `json:"vital_signs"`

	Diagnosis             *rawDiagnosis `json:"diagnosis"`
	CorrectDiagnosis      string        `json:"correct_diagnosis"`
	DiagnosisAnswer       string        `json:"diagnosis_answer"`
	DifferentialDiagnosis []string      `json:"differential_diagnosis"`
	Options               []string      `json:"options"`
	DiagnosisOptions      []string      `json:"diagnosis_options"`

	ChiefComplaint string `json:"chief_complaint"`
	Explanation    string `json:"explanation"`
}

type meta struct {
	CaseTitle string `json:"case_title"`
}

type rawPatient struct {
	Name       string  `json:"name"`
	Age        flexInt `json:"age"`
	Gender     string  `json:"gender"`
	Occupation string  `json:"occupation"`
	History    string  `json:"history"`
}

// rawExchange covers anamnesis entries (typed relevant/noise/trap), dialogue
// pairs (optionally prefixed with a speaker label), and the multiple-choice
// interview shape that tags relevance with a boolean.
type rawExchange struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Type       string `json:"type"`
	IsRelevant *bool  `json:"is_relevant"`
}

type rawDiagnosis struct {
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options"`
}

type examinations struct {
	Physical *rawPhysical `json:"physical"`
	Labs     []flexLab    `json:"labs"`
}

// rawPhysical is either an object with vitals and observations or a bare list
// of observation strings.
type rawPhysical struct {
	Vitals       map[string]string
	Observations []string
}

func (p *rawPhysical) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &p.Observations)
	}
	var obj struct {
		Vitals       map[string]string `json:"vitals"`
		Observations []string          `json:"observations"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Vitals = obj.Vitals
	p.Observations = obj.Observations
	return nil
}

// rawVitalSigns is the numeric vitals block from the multiple-choice shape.
type rawVitalSigns struct {
	Systolic    flexInt `json:"systolic"`
	Diastolic   flexInt `json:"diastolic"`
	HeartRate   flexInt `json:"heart_rate"`
	Temperature float64 `json:"temperature"`
	RespRate    flexInt `json:"resp_rate"`
}

// flexLab decodes a lab result that is either a bare display string or an
// object naming the parameter.
type flexLab struct {
	Name   string
	Result string
}

func (l *flexLab) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &l.Result)
	}
	var obj struct {
		Name   string `json:"name"`
		Result string `json:"result"`
		Value  string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	l.Name = obj.Name
	l.Result = obj.Result
	if l.Result == "" {
		l.Result = obj.Value
	}
	return nil
}

// flexText decodes a field that is either a plain string or an education
// object whose definition carries the text.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = flexText(s)
		return nil
	}
	var obj struct {
		Definition string `json:"definition"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = flexText(obj.Definition)
	return nil
}

// flexInt decodes a number that some payloads quote as a string.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Tolerate decorated ages such as "30 years".
		fields := strings.Fields(s)
		if len(fields) > 0 {
			if v, err = strconv.Atoi(fields[0]); err == nil {
				*n = flexInt(v)
				return nil
			}
		}
		*n = 0
		return nil
	}
	*n = flexInt(v)
	return nil
}
