/*
Package domain contains the core models of the gleaner constraint learner.

It defines the puzzle's index space, the transition model, the expert
trajectories and the constraint set threaded across iterations. The package
is kept pure and free of I/O; loaders, stores and the solver process live in
adapters.

# Key Entities

  - Space: the ordered states (peg per disk) and actions (move(F, T)) used as tensor axes.
  - TransitionModel: dense [state][action][next] probabilities.
  - Pair: a (state, action) index pair; the unit of constraints and of the expert set.
  - ConstraintSet: the append-only, ordered set of pairs believed to be illegal.
  - RunState / Checkpoint: the loop's snapshot and its persisted form.
*/
package domain
