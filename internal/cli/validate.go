package cli

import (
	"fmt"
	"sort"
)

// ValidateCmd checks server data for states the client treats as
// inconsistent. Problems are reported, not fixed.
type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	var problems []string

	ctx.println("Validating routine...")
	r, err := ctx.Routine.Routine(ctx.Ctx, true)
	if err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	for _, day := range r.Days {
		orders := make([]int, len(day.Blocks))
		for i, b := range day.Blocks {
			orders[i] = b.Order
		}
		sort.Ints(orders)
		for i, o := range orders {
			if o != i {
				problems = append(problems, fmt.Sprintf("%s: block orders are not 0..%d: %v", day.WeekDay, len(orders)-1, orders))
				break
			}
		}
	}

	ctx.println("Validating dreams...")
	dreams, err := ctx.Dreams.List(ctx.Ctx, false, true)
	if err != nil {
		return err
	}
	for _, d := range dreams {
		if d.SlotVisualized && d.CanVisualize {
			problems = append(problems, fmt.Sprintf("dream %s is visualized today but still visualizable", d.ID))
		}
	}

	ctx.println()
	if len(problems) == 0 {
		ctx.println("No problems found")
		return nil
	}
	ctx.printf("%d problem(s):\n", len(problems))
	for _, p := range problems {
		ctx.printf("  - %s\n", p)
	}
	return nil
}
