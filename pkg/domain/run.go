package domain

import "time"

// Status is the state of the inference loop.
type Status string

const (
	StatusRunning         Status = "running"          // More iterations may follow
	StatusConstraintFound Status = "constraint_found" // The oracle induced a separating rule
	StatusExhausted       Status = "exhausted"        // No unexplained candidate is left
	StatusIterationLimit  Status = "iteration_limit"  // The iteration cap was reached
)

// Terminal reports whether no further iteration may run.
func (s Status) Terminal() bool {
	return s != StatusRunning && s != ""
}

// Candidate is the pair selected by one iteration together with its visitation mass.
type Candidate struct {
	Pair   Pair    `json:"pair" yaml:"pair"`
	State  State   `json:"state" yaml:"state"`
	Action string  `json:"action" yaml:"action"`
	Value  float64 `json:"value" yaml:"value"`
}

func (c *Candidate) clone() *Candidate {
	if c == nil {
		return nil
	}
	out := *c
	out.State = append(State(nil), c.State...)
	return &out
}

// OracleResponse is the interpreted answer of the induction solver.
type OracleResponse struct {
	// Found is true when the output contains a rule whose head is "violation".
	Found bool `json:"found"`
	// Rule holds the rule lines only.
	Rule string `json:"rule,omitempty"`
	// Raw is the full trimmed output.
	Raw string `json:"raw,omitempty"`
}

// Verification is the outcome of re-checking an induced rule against the examples.
type Verification struct {
	Checked   bool   `json:"checked"`
	Separates bool   `json:"separates"`
	Detail    string `json:"detail,omitempty"`
}

// RunState is the snapshot of a run between iterations.
type RunState struct {
	RunID       string
	Iteration   int
	Status      Status
	Constraints *ConstraintSet

	// Set once the loop stops.
	Candidate    *Candidate
	Response     *OracleResponse
	Verification *Verification
}

// NewRunState creates a fresh running state with an empty constraint set.
func NewRunState(runID string) *RunState {
	return &RunState{
		RunID:       runID,
		Status:      StatusRunning,
		Constraints: NewConstraintSet(),
	}
}

// Checkpoint is the persisted form of a RunState.
type Checkpoint struct {
	RunID       string    `json:"run_id"`
	Iteration   int       `json:"iteration"`
	Status      Status    `json:"status"`
	Constraints []Pair    `json:"constraints"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Kept only for StatusConstraintFound, so the rule survives a resume.
	Candidate    *Candidate      `json:"candidate,omitempty"`
	Response     *OracleResponse `json:"response,omitempty"`
	Verification *Verification   `json:"verification,omitempty"`
}

// Checkpoint captures the parts of the state needed to resume.
func (r *RunState) Checkpoint() *Checkpoint {
	cp := &Checkpoint{
		RunID:       r.RunID,
		Iteration:   r.Iteration,
		Status:      r.Status,
		Constraints: r.Constraints.Pairs(),
		UpdatedAt:   time.Now().UTC(),
	}
	if r.Status == StatusConstraintFound {
		cp.Candidate = r.Candidate.clone()
		if r.Response != nil {
			resp := *r.Response
			cp.Response = &resp
		}
		if r.Verification != nil {
			v := *r.Verification
			cp.Verification = &v
		}
	}
	return cp
}

// Clone returns a deep copy of the checkpoint.
func (c *Checkpoint) Clone() *Checkpoint {
	out := *c
	out.Constraints = append([]Pair{}, c.Constraints...)
	out.Candidate = c.Candidate.clone()
	if c.Response != nil {
		resp := *c.Response
		out.Response = &resp
	}
	if c.Verification != nil {
		v := *c.Verification
		out.Verification = &v
	}
	return &out
}

// Restore rebuilds a running state from a checkpoint.
func (c *Checkpoint) Restore() *RunState {
	status := c.Status
	if status == "" {
		status = StatusRunning
	}
	state := &RunState{
		RunID:       c.RunID,
		Iteration:   c.Iteration,
		Status:      status,
		Constraints: NewConstraintSet(c.Constraints...),
	}
	if status == StatusConstraintFound {
		state.Candidate = c.Candidate.clone()
		if c.Response != nil {
			resp := *c.Response
			state.Response = &resp
		}
		if c.Verification != nil {
			v := *c.Verification
			state.Verification = &v
		}
	}
	return state
}

// JournalEntry is one row of the per-iteration run journal.
type JournalEntry struct {
	RunID     string
	Iteration int
	State     string
	Action    string
	Value     float64
	Found     bool
	Rule      string
	Duration  time.Duration
	CreatedAt time.Time
}
