package session

// WrongDiagnosisPenalty is the stamina cost of a rejected diagnosis. It does
// not scale with the number of attempts.
const WrongDiagnosisPenalty = 50

// Verdict is the outcome of resolving one submitted diagnosis.
type Verdict struct {
	Correct bool
	// Penalty is the stamina charge the verdict carries: zero on a match.
	Penalty int
}

// resolve compares a submitted option against the answer key. Comparison is
// exact string equality: options are complete strings copied from the answer
// sheet, never typed in, so fuzzy matching would only mask data corruption.
func resolve(submitted, correct string) Verdict {
	if submitted == correct {
		return Verdict{Correct: true, Penalty: 0}
	}
	return Verdict{Correct: false, Penalty: WrongDiagnosisPenalty}
}
