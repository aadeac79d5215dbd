package segmenter

// ResolverMode is the state of the class-identity search.
type ResolverMode int32

const (
	// ModeFixed uses the configured target class id unconditionally.
	ModeFixed ResolverMode = iota
	// ModeSearching rotates through the candidate list looking for a class
	// whose coverage exceeds the lock fraction.
	ModeSearching
	// ModeLocked has committed to a class id. Permanent until Reset.
	ModeLocked
)

func (m ResolverMode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeSearching:
		return "searching"
	case ModeLocked:
		return "locked"
	}
	return "unknown"
}

// ResolverState decides which class id represents the target region. It is
// owned exclusively by one pipeline instance and mutated only by resolve.
//
// Single-frame noise in model output must not destabilize the identity
// decision: a candidate locks only by exceeding a coverage fraction, and a
// candidate that fails is retried for a whole rotation window before the
// search advances, so evidence can accumulate over time.
type ResolverState struct {
	mode     ResolverMode
	targetID int32

	candidates        []int32
	candidateIdx      int
	framesOnCandidate int
	coverageStreak    int

	rotationInterval int
	lockFraction     float64
	minConfidence    float32
}

func newResolverState(cfg Config) *ResolverState {
	if !cfg.EnableAdaptiveDetection {
		return &ResolverState{mode: ModeFixed, targetID: cfg.TargetClassID}
	}
	minConfidence := cfg.ConfidenceThreshold
	if cfg.UseArgmaxMode {
		// Argmax decoding carries raw winner scores that are not comparable
		// to a probability threshold, so coverage counts every pixel.
		minConfidence = 0
	}
	return &ResolverState{
		mode:             ModeSearching,
		targetID:         cfg.CandidateClassIDs[0],
		candidates:       append([]int32(nil), cfg.CandidateClassIDs...),
		rotationInterval: cfg.RotationInterval,
		lockFraction:     cfg.LockCoverageFraction,
		minConfidence:    minConfidence,
	}
}

// Mode returns the current search state.
func (s *ResolverState) Mode() ResolverMode {
	return s.mode
}

// TargetID returns the class id the resolver currently stands behind: the
// fixed id, the locked id, or the candidate being tried.
func (s *ResolverState) TargetID() int32 {
	return s.targetID
}

// CoverageStreak returns how many consecutive frames the candidate under
// trial has shown any coverage. Diagnostic only.
func (s *ResolverState) CoverageStreak() int {
	return s.coverageStreak
}

// resolve returns the target class id for this frame and advances the
// search. In fixed and locked modes the histogram is skipped entirely.
func (s *ResolverState) resolve(cm *ClassMap) int32 {
	if s.mode != ModeSearching {
		return s.targetID
	}

	hist := cm.Histogram(s.minConfidence)
	total := float64(cm.Pixels())

	// Lock on the best-covered candidate above the fraction. Ties break
	// toward the earlier list position, the caller's stated preference.
	lockID := int32(-1)
	lockCoverage := 0.0
	for _, id := range s.candidates {
		coverage := float64(hist[id]) / total
		if coverage > s.lockFraction && coverage > lockCoverage {
			lockID = id
			lockCoverage = coverage
		}
	}
	if lockCoverage > 0 {
		s.mode = ModeLocked
		s.targetID = lockID
		return s.targetID
	}

	tried := s.candidates[s.candidateIdx]
	s.targetID = tried
	if hist[tried] > 0 {
		s.coverageStreak++
	} else {
		s.coverageStreak = 0
	}
	s.framesOnCandidate++
	if s.framesOnCandidate >= s.rotationInterval {
		s.framesOnCandidate = 0
		s.coverageStreak = 0
		s.candidateIdx = (s.candidateIdx + 1) % len(s.candidates)
	}
	return tried
}

// reset returns the resolver to its initial state. This is the only way out
// of ModeLocked.
func (s *ResolverState) reset() {
	if s.mode == ModeFixed {
		return
	}
	s.mode = ModeSearching
	s.candidateIdx = 0
	s.framesOnCandidate = 0
	s.coverageStreak = 0
	s.targetID = s.candidates[0]
}
