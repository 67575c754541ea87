package scheduler

import "sort"

// ChangeKind classifies one entry of a change set.
type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeChange ChangeKind = "change"
	ChangeRemove ChangeKind = "remove"
)

// FieldDiff records one definition field that differs between the stored
// schedule and the declared definition.
type FieldDiff struct {
	Field string
	Old   string
	New   string
}

// Change is one entry of a change set: a schedule that would be added,
// updated, or removed by reconciliation.
type Change struct {
	Kind  ChangeKind
	Name  string
	Diffs []FieldDiff
}

// ComputeChangeSet diffs stored schedules against declared definitions.
// Definitions with no stored counterpart become adds, stored schedules with
// no definition become removes, and schedules whose cron expression differs
// become changes. The result is sorted by name within each kind, adds first.
func ComputeChangeSet(stored []Schedule, defs []Definition) []Change {
	defsByName := make(map[string]Definition, len(defs))
	for _, d := range defs {
		defsByName[d.Name] = d
	}
	storedByName := make(map[string]Schedule, len(stored))
	for _, s := range stored {
		storedByName[s.Name()] = s
	}

	var added, changed, removed []Change

	for name, def := range defsByName {
		old, exists := storedByName[name]
		if !exists {
			added = append(added, Change{Kind: ChangeAdd, Name: name})
			continue
		}
		var diffs []FieldDiff
		if old.CronSchedule() != def.CronSchedule {
			diffs = append(diffs, FieldDiff{
				Field: "cron_schedule",
				Old:   old.CronSchedule(),
				New:   def.CronSchedule,
			})
		}
		if len(diffs) > 0 {
			changed = append(changed, Change{Kind: ChangeChange, Name: name, Diffs: diffs})
		}
	}

	for name := range storedByName {
		if _, exists := defsByName[name]; !exists {
			removed = append(removed, Change{Kind: ChangeRemove, Name: name})
		}
	}

	for _, group := range [][]Change{added, changed, removed} {
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
	}

	result := make([]Change, 0, len(added)+len(changed)+len(removed))
	result = append(result, added...)
	result = append(result, changed...)
	result = append(result, removed...)
	return result
}
