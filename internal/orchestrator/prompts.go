package orchestrator

import (
	"fmt"
	"sort"
	"strings"
)

// coordinatorSystemPrompt is the system prompt template for the coordinator
// worker. The %s placeholder receives the worker roster.
const coordinatorSystemPrompt = `You are a professional multi-agent coordinator. Your job is to coordinate a team of specialist workers to complete complex tasks efficiently.

## Your team

You can call on the following specialist workers:

%s

## Coordination strategy

1. **Task analysis**: break the user request into independent subtasks
2. **Worker selection**: pick the most suitable worker for each subtask
3. **Parallelization**: identify tasks that can run concurrently
4. **Result integration**: merge the workers' results into a coherent response
5. **Quality assurance**: verify the results meet the requirements before finalizing

## Working principles

- Prefer delegating to specialists over doing everything yourself
- Order execution around dependencies between subtasks
- Communicate expectations clearly to each worker
- Handle partial failures gracefully
- Give each worker enough context to work independently`

// coordinatorPrompt renders the coordinator system prompt for a worker
// roster. Descriptions are the first line of each worker's own system
// prompt, truncated, in sorted name order.
func coordinatorPrompt(workers map[string]string) string {
	names := make([]string, 0, len(workers))
	for name := range workers {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		desc := name
		if prompt := strings.TrimSpace(workers[name]); prompt != "" {
			desc = truncate(strings.SplitN(prompt, "\n", 2)[0], 100)
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %s", name, desc))
	}

	return fmt.Sprintf(coordinatorSystemPrompt, strings.Join(lines, "\n"))
}
