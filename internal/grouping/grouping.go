package grouping

import (
	"sort"
	"strconv"

	"github.com/dotswift/Pulse/internal/model"
)

// PendingKey is the reserved group for entities that have no grouping
// attribute yet (a network task without a status code). The pending group
// always sorts last so settled groups keep stable positions at the top.
const PendingKey = "pending"

// Group is an ordered bucket of entities sharing a derived key.
type Group struct {
	Key      string
	Entities []model.Entity
}

// KeyFunc derives the group key for an entity. Returning ("", false) routes
// the entity to the reserved pending group.
type KeyFunc func(model.Entity) (string, bool)

// ByStatusCode groups network tasks by HTTP status code.
func ByStatusCode(e model.Entity) (string, bool) {
	if e.StatusCode == 0 {
		return "", false
	}
	return strconv.Itoa(e.StatusCode), true
}

// Partition splits entities into ordered groups. Deterministic: group order
// follows first occurrence of each key in the input, except the pending group
// which is moved last; entities within a group are sorted ascending by
// creation time, tie-broken by id. A nil keyFn yields a single implicit group.
func Partition(entities []model.Entity, keyFn KeyFunc) []Group {
	if keyFn == nil {
		if len(entities) == 0 {
			return nil
		}
		all := append([]model.Entity(nil), entities...)
		sortGroup(all)
		return []Group{{Key: "", Entities: all}}
	}
	index := map[string]int{}
	var groups []Group
	for _, e := range entities {
		key, ok := keyFn(e)
		if !ok {
			key = PendingKey
		}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Entities = append(groups[i].Entities, e)
	}
	for i := range groups {
		sortGroup(groups[i].Entities)
	}
	// Pending sorts last regardless of first occurrence.
	if i, ok := index[PendingKey]; ok && i != len(groups)-1 {
		p := groups[i]
		groups = append(groups[:i], groups[i+1:]...)
		groups = append(groups, p)
	}
	return groups
}

func sortGroup(es []model.Entity) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].Before(es[j]) })
}
