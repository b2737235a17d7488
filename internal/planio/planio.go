// Package planio persists and replays plans: one operator name per line,
// in forward (initial-to-goal) order, mirroring the plain-text plan
// format a planning system's driver scripts and validators expect.
package planio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sasplan/planner/pkg/task"
)

// WritePlan writes opNames to path, one parenthesized name per line.
func WritePlan(path string, opNames []string) error {
	f, err := os.Create(path)
	if err != nil {
		return task.NewInputError(fmt.Sprintf("planio: cannot create %s", path), err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, name := range opNames {
		if _, err := fmt.Fprintf(w, "(%s)\n", name); err != nil {
			return task.NewInputError("planio: write failed", err)
		}
	}
	return w.Flush()
}

// ReadPlan reads a plan file written by WritePlan, stripping the
// parentheses back off each line.
func ReadPlan(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, task.NewInputError(fmt.Sprintf("planio: cannot open %s", path), err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "(")
		line = strings.TrimSuffix(line, ")")
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, task.NewInputError("planio: read failed", err)
	}
	return names, nil
}

// OpNames maps operator indices (as returned by a search Result's Plan
// field) to their task.Operator.Name.
func OpNames(t *task.Task, plan []int) []string {
	names := make([]string, len(plan))
	for i, opID := range plan {
		names[i] = t.Operators[opID].Name
	}
	return names
}

// Manager names successive plans base, base.2, base.3, ... so an
// improving sequence of plans (as iterated search can produce) is never
// overwritten, only ever superseded by a cheaper numbered file.
type Manager struct {
	base  string
	count int
}

// NewManager returns a Manager that will name its first saved plan base
// itself, and every subsequent one base.N for increasing N.
func NewManager(base string) *Manager {
	return &Manager{base: base}
}

// Save writes opNames under this manager's next plan filename and
// returns the path used.
func (m *Manager) Save(opNames []string) (string, error) {
	m.count++
	path := m.base
	if m.count > 1 {
		path = m.base + "." + strconv.Itoa(m.count)
	}
	if err := WritePlan(path, opNames); err != nil {
		return "", err
	}
	return path, nil
}

// Count returns how many plans this Manager has saved so far.
func (m *Manager) Count() int { return m.count }
