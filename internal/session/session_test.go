package session_test

import (
	"testing"

	"github.com/myrjola/triage/internal/models"
	"github.com/myrjola/triage/internal/session"
	"github.com/stretchr/testify/require"
)

func testCase() *models.Case {
	return &models.Case{
		ID:           "case-1",
		DisplayTitle: "Case of Budi – fever for three days",
		Patient: models.Patient{
			Name:      "Budi",
			Age:       30,
			Narrative: "Fever for three days with joint pain.",
		},
		InterviewItems: []models.InterviewItem{
			{Prompt: "Since when?", Response: "Three days.", Relevance: models.RelevanceRelevant},
			{Prompt: "Do you like spicy food?", Response: "Very much.", Relevance: models.RelevanceNoise},
			{Prompt: "Any burning when urinating?", Response: "A little.", Relevance: models.RelevanceTrap},
		},
		PhysicalFindings: models.PhysicalFindings{
			Vitals:       map[string]string{"Temperature": "38.8 °C"},
			Observations: []string{"Petechial rash on both legs"},
		},
		LabFindings: []models.LabFinding{{Name: "Platelets", Result: "80.000 /uL"}},
		Diagnosis: models.Diagnosis{
			CorrectAnswer: "Dengue Fever",
			Options:       []string{"Malaria", "Dengue Fever", "Typhoid Fever", "Chikungunya"},
		},
		Explanation: "Thrombocytopenia with fever points to dengue.",
	}
}

func TestSession_winningRun(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())
	require.Equal(t, session.InitialStamina, s.Stamina())
	require.Equal(t, session.OutcomeInProgress, s.Outcome())

	item, err := s.AskInterview(0)
	require.NoError(t, err)
	require.Equal(t, "Since when?", item.Prompt)
	require.Equal(t, 90, s.Stamina())

	labs, err := s.RevealLabs()
	require.NoError(t, err)
	require.Len(t, labs, 1)
	require.Equal(t, 50, s.Stamina())

	verdict, err := s.SubmitDiagnosis("Dengue Fever")
	require.NoError(t, err)
	require.True(t, verdict.Correct)
	require.Equal(t, 0, verdict.Penalty)
	require.Equal(t, session.OutcomeSolved, s.Outcome())
	// Winning costs nothing.
	require.Equal(t, 50, s.Stamina())
}

func TestSession_lossByExhaustion(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())

	// Burn stamina down to 20 with a wrong answer and reveals.
	_, err := s.SubmitDiagnosis("Malaria")
	require.NoError(t, err)
	_, err = s.RevealPhysical()
	require.NoError(t, err)
	_, err = s.AskInterview(0)
	require.NoError(t, err)
	_, err = s.AskInterview(1)
	require.NoError(t, err)
	require.Equal(t, 5, s.Stamina())

	// The lab work-up costs more than remains: nothing is deducted and the
	// session fails.
	_, err = s.RevealLabs()
	require.ErrorIs(t, err, session.ErrOutOfStamina)
	require.Equal(t, 5, s.Stamina())
	require.Equal(t, session.OutcomeFailed, s.Outcome())
}

func TestSession_lossByWrongGuesses(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())

	verdict, err := s.SubmitDiagnosis("Malaria")
	require.NoError(t, err)
	require.False(t, verdict.Correct)
	require.Equal(t, session.WrongDiagnosisPenalty, verdict.Penalty)
	require.Equal(t, 50, s.Stamina())
	require.Equal(t, session.OutcomeInProgress, s.Outcome())

	// The second wrong guess clamps stamina at zero and ends the session.
	_, err = s.SubmitDiagnosis("Typhoid Fever")
	require.NoError(t, err)
	require.Equal(t, 0, s.Stamina())
	require.Equal(t, session.OutcomeFailed, s.Outcome())

	// A third guess is rejected outright.
	_, err = s.SubmitDiagnosis("Chikungunya")
	require.ErrorIs(t, err, session.ErrSessionOver)
	require.ErrorIs(t, err, session.ErrInvalidCommand)
}

func TestSession_revealOnceInterview(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())

	_, err := s.AskInterview(1)
	require.NoError(t, err)
	require.Equal(t, 90, s.Stamina())

	_, err = s.AskInterview(1)
	require.ErrorIs(t, err, session.ErrAlreadyAsked)
	require.Equal(t, 90, s.Stamina(), "repeat ask must not charge")

	_, err = s.AskInterview(7)
	require.ErrorIs(t, err, session.ErrUnknownIndex)
	require.Equal(t, session.OutcomeInProgress, s.Outcome(), "rejected commands leave the session usable")
}

func TestSession_idempotentReveals(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())

	physical, err := s.RevealPhysical()
	require.NoError(t, err)
	require.Equal(t, 75, s.Stamina())

	again, err := s.RevealPhysical()
	require.NoError(t, err)
	require.Equal(t, physical, again, "second reveal returns cached content")
	require.Equal(t, 75, s.Stamina(), "second reveal is free")

	labs, err := s.RevealLabs()
	require.NoError(t, err)
	require.Equal(t, 35, s.Stamina())
	again2, err := s.RevealLabs()
	require.NoError(t, err)
	require.Equal(t, labs, again2)
	require.Equal(t, 35, s.Stamina())
}

func TestSession_staminaIsMonotonic(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())

	previous := s.Stamina()
	commands := []func() error{
		func() error { _, err := s.AskInterview(0); return err },
		func() error { _, err := s.RevealPhysical(); return err },
		func() error { _, err := s.AskInterview(0); return err },
		func() error { _, err := s.SubmitDiagnosis("Malaria"); return err },
		func() error { _, err := s.RevealLabs(); return err },
		func() error { _, err := s.SubmitDiagnosis("Typhoid Fever"); return err },
		func() error { _, err := s.RevealLabs(); return err },
	}
	for i, command := range commands {
		_ = command()
		require.LessOrEqual(t, s.Stamina(), previous, "command %d increased stamina", i)
		require.GreaterOrEqual(t, s.Stamina(), 0, "command %d drove stamina negative", i)
		previous = s.Stamina()
	}
}

func TestSession_terminalStateIsFinal(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())

	_, err := s.SubmitDiagnosis("Dengue Fever")
	require.NoError(t, err)
	require.Equal(t, session.OutcomeSolved, s.Outcome())
	stamina := s.Stamina()

	_, err = s.AskInterview(0)
	require.ErrorIs(t, err, session.ErrSessionOver)
	_, err = s.RevealLabs()
	require.ErrorIs(t, err, session.ErrSessionOver)
	_, err = s.SubmitDiagnosis("Malaria")
	require.ErrorIs(t, err, session.ErrSessionOver)

	require.Equal(t, session.OutcomeSolved, s.Outcome())
	require.Equal(t, stamina, s.Stamina())
}

func TestSession_unknownOptionIsRejected(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())

	_, err := s.SubmitDiagnosis("Common Cold")
	require.ErrorIs(t, err, session.ErrUnknownOption)
	require.Equal(t, session.InitialStamina, s.Stamina(), "rejected submissions are free")
	require.Equal(t, session.OutcomeInProgress, s.Outcome())
}

func TestSession_snapshotWithholdsSpoilers(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())

	snapshot := s.Snapshot()
	require.Nil(t, snapshot.Debrief, "answer key must stay hidden while in progress")
	require.Nil(t, snapshot.Physical)
	require.Nil(t, snapshot.Labs)
	require.NotEqual(t, "Dengue Fever", snapshot.Title)
	require.Len(t, snapshot.Prompts, 3)
	require.NotEmpty(t, snapshot.Log)

	_, err := s.RevealPhysical()
	require.NoError(t, err)
	snapshot = s.Snapshot()
	require.NotNil(t, snapshot.Physical)
	require.Nil(t, snapshot.Debrief)

	_, err = s.SubmitDiagnosis("Dengue Fever")
	require.NoError(t, err)
	snapshot = s.Snapshot()
	require.NotNil(t, snapshot.Debrief)
	require.Equal(t, "Dengue Fever", snapshot.Debrief.CorrectAnswer)
	require.Equal(t, "Thrombocytopenia with fever points to dengue.", snapshot.Debrief.Explanation)
}

func TestSession_noisyAnswerIsDeliveredVerbatim(t *testing.T) {
	t.Parallel()
	s := session.New(testCase())

	item, err := s.AskInterview(1)
	require.NoError(t, err)
	require.Equal(t, "Very much.", item.Response)

	// The transcript annotates the answer without altering its text.
	log := s.Snapshot().Log
	last := log[len(log)-1]
	require.Equal(t, session.KindExchange, last.Kind)
	require.Contains(t, last.Text, "Very much.")
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	registry := session.NewRegistry()

	require.Nil(t, registry.Get("player/case-1"))

	s := registry.GetOrStart("player/case-1", func() *session.Session {
		return session.New(testCase())
	})
	require.NotNil(t, s)
	require.Same(t, s, registry.Get("player/case-1"))
	require.Same(t, s, registry.GetOrStart("player/case-1", func() *session.Session {
		t.Fatal("start must not be called for a live session")
		return nil
	}))

	registry.Drop("player/case-1")
	require.Nil(t, registry.Get("player/case-1"))
}
