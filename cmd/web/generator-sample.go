package main

import (
	"context"
	"sync/atomic"
)

// samplePayloads are shipped with the binary so the game is playable without
// an OpenAI API key. They use the same flat schema the generator prompt asks
// the model for.
var samplePayloads = []string{
	`{
  "title": "The Gardener Who Could Not Cool Down",
  "patient": {
    "name": "Aino Lehto",
    "age": 34,
    "gender": "Female",
    "history": "Returned from a two-week trip to Southeast Asia five days ago. High fever and severe muscle aches since yesterday."
  },
  "symptoms": ["High fever", "Retro-orbital headache", "Muscle and joint pain", "Faint skin rash"],
  "lab_results": ["Platelets: 68 x10^9/L (low)", "Leukocytes: low", "Hematocrit: elevated", "Temp: 39.4C"],
  "correct_diagnosis": "Dengue Fever",
  "differential_diagnosis": ["Malaria", "Influenza", "Zika virus infection"],
  "explanation": "Fever with retro-orbital pain, thrombocytopenia and recent travel to an endemic region point to dengue. Malaria typically shows cyclical fevers and parasites on blood smear.",
  "difficulty": "Medium"
}`,
	`{
  "title": "A Night Shift Turns Breathless",
  "patient": {
    "name": "Mikko Rantanen",
    "age": 58,
    "gender": "Male",
    "history": "Long-haul truck driver. Sudden shortness of breath and sharp chest pain that worsens on inspiration, starting this morning. Right calf has been swollen for three days."
  },
  "symptoms": ["Sudden dyspnea", "Pleuritic chest pain", "Unilateral calf swelling", "Tachycardia"],
  "lab_results": ["D-dimer: markedly elevated", "SpO2: 89% on room air", "ECG: sinus tachycardia", "Troponin: normal"],
  "correct_diagnosis": "Pulmonary Embolism",
  "differential_diagnosis": ["Myocardial infarction", "Pneumothorax", "Community-acquired pneumonia"],
  "explanation": "Immobility, unilateral leg swelling and raised D-dimer with hypoxia fit a thromboembolic event. A normal troponin and the pleuritic character argue against infarction.",
  "difficulty": "Easy"
}`,
	`{
  "title": "The Student with a Stiff Neck",
  "patient": {
    "name": "Sara Virtanen",
    "age": 21,
    "gender": "Female",
    "history": "University student living in a dormitory. Overnight onset of fever, severe headache and vomiting. Housemates say she is increasingly confused."
  },
  "symptoms": ["Fever", "Severe headache", "Neck stiffness", "Photophobia", "Petechial rash"],
  "lab_results": ["CSF: cloudy, neutrophils high, glucose low", "CRP: 240 mg/L", "Leukocytes: 21 x10^9/L", "Temp: 39.8C"],
  "correct_diagnosis": "Bacterial Meningitis",
  "differential_diagnosis": ["Viral meningitis", "Subarachnoid hemorrhage", "Migraine"],
  "explanation": "Neutrophilic pleocytosis with low CSF glucose indicates a bacterial cause. The petechial rash in a dormitory resident raises meningococcal disease in particular.",
  "difficulty": "Hard"
}`,
}

// sampleGenerator cycles through the canned payloads ignoring the topic.
type sampleGenerator struct{}

var sampleCursor atomic.Uint64

func (sampleGenerator) GenerateCase(_ context.Context, _, _ string) ([]byte, error) {
	i := sampleCursor.Add(1)
	return []byte(samplePayloads[int(i)%len(samplePayloads)]), nil
}
