package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sasplan/planner/pkg/task"
)

// taskDoc is the plain JSON structure planctl reads from disk: a direct
// mirror of task.Task's fields, not a grounded problem-file format. Parsing
// an actual planning problem file (PDDL, SAS) is out of scope; this is only
// the CLI's own convenience encoding for the task the search core consumes.
type taskDoc struct {
	Variables []task.Variable `json:"variables"`
	Operators []task.Operator `json:"operators"`
	Axioms    []task.Operator `json:"axioms"`
	Initial   []int           `json:"initial"`
	Goal      task.Goal       `json:"goal"`
}

func loadTask(path string) (*task.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}
	var doc taskDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing task file %s: %w", path, err)
	}
	return task.New(doc.Variables, doc.Operators, doc.Axioms, doc.Initial, doc.Goal)
}
