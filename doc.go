/*
Package gleaner learns the legality rule of a peg puzzle from expert play.

It alternates two learners. A constraint-inference step ranks (state, action)
pairs by how much a uniformly random policy visits them while the expert never
does; the most visited one is assumed forbidden. An external rule-induction
solver then looks for one symbolic rule that fires on every assumed-forbidden
move and on none of the expert's moves. The loop stops when the solver
answers, when no candidate is left, or at an iteration cap.

# Concept

The puzzle itself (state space, transition model, demonstrations) is the fixed
Problem. The run is a sequence of RunState snapshots; each iteration adds
exactly one pair to the constraint set. Snapshots are checkpointed through a
CheckpointStore so a long run can stop and resume under the same run ID.

# Usage

	space, _ := domain.NewSpace(3, 3)
	model, _ := hanoi.TransitionModel(space, 0)
	expert, _ := hanoi.Solve(space, 1, 3)

	solver, err := gleaner.New(gleaner.Problem{
		Space:        space,
		Model:        model,
		Trajectories: []domain.Trajectory{expert},
	}, process.NewRunner())
	if err != nil {
		log.Fatal(err)
	}

	result, err := solver.Run(ctx, "")
	if err != nil {
		log.Fatal(err)
	}
	if result.Status == domain.StatusConstraintFound {
		fmt.Println(result.Response.Rule)
	}
*/
package gleaner
