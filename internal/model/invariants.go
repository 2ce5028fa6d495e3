package model

import (
	"fmt"
	"sort"
)

// CheckProject verifies that ColumnOrder is a permutation of the Columns
// keys and that every task id appears in exactly one column.
func CheckProject(p Project) error {
	if len(p.ColumnOrder) != len(p.Columns) {
		return fmt.Errorf("project %s: column order has %d ids for %d columns",
			p.ID, len(p.ColumnOrder), len(p.Columns))
	}
	seenCols := make(map[string]bool, len(p.ColumnOrder))
	for _, id := range p.ColumnOrder {
		if _, ok := p.Columns[id]; !ok {
			return fmt.Errorf("project %s: column order references unknown column %s", p.ID, id)
		}
		if seenCols[id] {
			return fmt.Errorf("project %s: column %s appears twice in column order", p.ID, id)
		}
		seenCols[id] = true
	}

	owner := make(map[string]string, len(p.Tasks))
	for colID, c := range p.Columns {
		for _, taskID := range c.TaskIDs {
			if prev, dup := owner[taskID]; dup {
				return fmt.Errorf("project %s: task %s listed in columns %s and %s",
					p.ID, taskID, prev, colID)
			}
			if _, ok := p.Tasks[taskID]; !ok {
				return fmt.Errorf("project %s: column %s references unknown task %s",
					p.ID, colID, taskID)
			}
			owner[taskID] = colID
		}
	}
	for taskID := range p.Tasks {
		if _, ok := owner[taskID]; !ok {
			return fmt.Errorf("project %s: task %s is in no column", p.ID, taskID)
		}
	}
	return nil
}

// CheckFolders verifies that no project id is listed in more than one
// folder, nor twice in the same folder.
func CheckFolders(folders map[string]Folder) error {
	owner := make(map[string]string)
	for _, id := range sortedKeys(folders) {
		for _, projectID := range folders[id].ProjectIDs {
			if prev, dup := owner[projectID]; dup {
				return fmt.Errorf("project %s listed in folders %s and %s", projectID, prev, id)
			}
			owner[projectID] = id
		}
	}
	return nil
}

// NormalizeProject repairs a project so it satisfies CheckProject. Unknown
// and duplicate ids are dropped, columns missing from the order are
// appended, and tasks in no column are appended to the first column.
// It reports whether anything changed.
func NormalizeProject(p *Project) bool {
	changed := false
	if p.Columns == nil {
		p.Columns = map[string]Column{}
	}
	if p.Tasks == nil {
		p.Tasks = map[string]Task{}
	}

	order := make([]string, 0, len(p.Columns))
	seenCols := make(map[string]bool, len(p.Columns))
	for _, id := range p.ColumnOrder {
		if _, ok := p.Columns[id]; !ok || seenCols[id] {
			changed = true
			continue
		}
		seenCols[id] = true
		order = append(order, id)
	}
	for _, id := range sortedKeys(p.Columns) {
		if !seenCols[id] {
			order = append(order, id)
			changed = true
		}
	}
	p.ColumnOrder = order

	owned := make(map[string]bool, len(p.Tasks))
	for _, colID := range order {
		c := p.Columns[colID]
		ids := make([]string, 0, len(c.TaskIDs))
		for _, taskID := range c.TaskIDs {
			if _, ok := p.Tasks[taskID]; !ok || owned[taskID] {
				changed = true
				continue
			}
			owned[taskID] = true
			ids = append(ids, taskID)
		}
		c.TaskIDs = ids
		p.Columns[colID] = c
	}

	var orphans []string
	for _, taskID := range sortedKeys(p.Tasks) {
		if !owned[taskID] {
			orphans = append(orphans, taskID)
		}
	}
	if len(orphans) > 0 {
		changed = true
		if len(order) == 0 {
			// No column to hold them; the tasks cannot be shown.
			for _, id := range orphans {
				delete(p.Tasks, id)
			}
		} else {
			first := p.Columns[order[0]]
			first.TaskIDs = append(first.TaskIDs, orphans...)
			p.Columns[order[0]] = first
		}
	}
	return changed
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
