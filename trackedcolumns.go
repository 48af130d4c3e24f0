package changestreamcore

// TrackedNonKeyColumns resolves which non-key columns of t are tracked by
// cs, and whether t is tracked by cs at all. For TrackModeAllColumns (and
// FOR ALL) this is every non-key column; for TrackModeKeysOnly it is none
// (but tracked is still true — a KEYS_ONLY stream still emits on INSERT
// and DELETE, see DESIGN.md); for TrackModeColumnSet it is the explicit set.
func TrackedNonKeyColumns(cs *ChangeStream, t *Table) (cols []*Column, tracked bool) {
	if cs.ForAll {
		return t.NonKeyColumns(), true
	}

	spec := cs.specFor(t)
	if spec == nil {
		return nil, false
	}

	switch spec.Mode {
	case TrackModeAllColumns:
		return t.NonKeyColumns(), true
	case TrackModeKeysOnly:
		return nil, true
	case TrackModeColumnSet:
		cols := make([]*Column, len(spec.Columns))
		copy(cols, spec.Columns)
		sortColumnsByOrdinal(cols)
		return cols, true
	default:
		return nil, false
	}
}

// ProjectedNonKeyColumns resolves the projected non-key column set a mod
// should carry, and whether the mod should be logged at all.
//
// INSERT and DELETE project onto the constant tracked set — pk ∪
// tracked_non_key — independent of which columns the mutation actually
// supplied; unsupplied tracked columns render as explicit JSON null rather
// than being omitted (see DESIGN.md). UPDATE instead projects onto
// pk ∪ (affected ∩ tracked_non_key), and is skipped entirely — not merged,
// not recorded — when that intersection is empty.
func ProjectedNonKeyColumns(modType ModType, trackedNonKey, affectedNonKey []*Column) (projected []*Column, logged bool) {
	switch modType {
	case ModTypeInsert, ModTypeDelete:
		return trackedNonKey, true
	case ModTypeUpdate:
		intersect := intersectColumnsByName(affectedNonKey, trackedNonKey)
		if len(intersect) == 0 {
			return nil, false
		}
		return intersect, true
	default:
		return nil, false
	}
}

func intersectColumnsByName(a, b []*Column) []*Column {
	inB := make(map[string]bool, len(b))
	for _, c := range b {
		inB[c.Name] = true
	}

	out := make([]*Column, 0, len(a))
	for _, c := range a {
		if inB[c.Name] {
			out = append(out, c)
		}
	}
	sortColumnsByOrdinal(out)
	return out
}

// columnSetKey builds a comparable identity for a projected column set,
// used to test whether two consecutive mods can merge into the same group.
func columnSetKey(cols []*Column) string {
	key := make([]byte, 0, 16*len(cols))
	for _, c := range cols {
		key = append(key, c.Name...)
		key = append(key, 0)
	}
	return string(key)
}
