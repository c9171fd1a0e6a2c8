package gleaner_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/gleaner"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/aretw0/gleaner/pkg/hanoi"
	"github.com/aretw0/gleaner/pkg/ports"
)

// ExampleNew runs the loop on the three-disk puzzle with a stand-in solver
// that accepts the first program it sees.
func ExampleNew() {
	space, err := domain.NewSpace(3, 3)
	if err != nil {
		log.Fatal(err)
	}
	model, err := hanoi.TransitionModel(space, 0)
	if err != nil {
		log.Fatal(err)
	}
	expert, err := hanoi.Solve(space, 1, 3)
	if err != nil {
		log.Fatal(err)
	}

	var program string
	oracle := ports.OracleFunc(func(_ context.Context, p string) (domain.OracleResponse, error) {
		program = p
		rule := "violation :- moving_disk(V1), disk_below(V2), smaller(V2,V1)."
		return domain.OracleResponse{Found: true, Rule: rule, Raw: rule}, nil
	})

	solver, err := gleaner.New(gleaner.Problem{
		Space:        space,
		Model:        model,
		Trajectories: []domain.Trajectory{expert},
	}, oracle)
	if err != nil {
		log.Fatal(err)
	}

	result, err := solver.Run(context.Background(), "example")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.Status, result.Iterations, len(result.Constraints))
	fmt.Println(strings.Count(program, "#pos"), strings.Count(program, "#neg"))
	// Output:
	// constraint_found 1 1
	// 1 7
}
