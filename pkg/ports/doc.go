/*
Package ports defines the driven ports (interfaces) of the gleaner solver.

These interfaces decouple the inference loop from the external solver process,
persistence backends and diagnostics, so the loop can be tested with in-memory
doubles and run against ILASP, Redis or SQLite in production.

# Key Interfaces

  - Oracle: runs the rule-induction solver on a program and interprets its answer.
  - CheckpointStore: persists the constraint set between runs so a run can resume.
  - DistributedLocker: guards a run ID against two processes advancing it at once.
  - Journal: appends one record per iteration.
  - RuleVerifier: re-checks an induced rule against the examples it was learned from.
*/
package ports
