package engine

import "sort"

// Gatherer is a moving segment with a collection width: a dog's displacement
// during one tick.
type Gatherer struct {
	Start Position
	End   Position
	Width float64
}

// Item is a stationary object a gatherer can run over: a dropped loot item
// (width 0) or an office (width 0.25).
type Item struct {
	Position Position
	Width    float64
}

// GatherEvent records a gatherer passing over an item. Time is the fraction
// of the gatherer's displacement at which the closest approach happens.
type GatherEvent struct {
	ItemIndex     int
	GathererIndex int
	SqDistance    float64
	Time          float64
}

// ItemGathererProvider enumerates the items and gatherers of one tick.
type ItemGathererProvider interface {
	ItemsCount() int
	Item(i int) Item
	GatherersCount() int
	Gatherer(i int) Gatherer
}

// GatherProvider is a slice-backed ItemGathererProvider.
type GatherProvider struct {
	items     []Item
	gatherers []Gatherer
}

// AddItem appends an item; its index is the order of addition.
func (p *GatherProvider) AddItem(item Item) {
	p.items = append(p.items, item)
}

// AddGatherer appends a gatherer; its index is the order of addition.
func (p *GatherProvider) AddGatherer(g Gatherer) {
	p.gatherers = append(p.gatherers, g)
}

func (p *GatherProvider) ItemsCount() int        { return len(p.items) }
func (p *GatherProvider) Item(i int) Item        { return p.items[i] }
func (p *GatherProvider) GatherersCount() int    { return len(p.gatherers) }
func (p *GatherProvider) Gatherer(i int) Gatherer { return p.gatherers[i] }

// collectionResult is the projection of an item onto a gatherer's path.
type collectionResult struct {
	sqDistance float64
	ratio      float64
}

// collected reports whether the projection falls on the path and within
// gather distance.
func (c collectionResult) collected(gatherWidth float64) bool {
	return c.sqDistance <= gatherWidth*gatherWidth && c.ratio >= 0 && c.ratio <= 1
}

// tryCollect projects item onto the segment from start to end. The segment
// must have nonzero length.
func tryCollect(start, end, item Position) (collectionResult, error) {
	if start == end {
		return collectionResult{}, ErrZeroLengthGatherer
	}

	ux := item.X - start.X
	uy := item.Y - start.Y
	vx := end.X - start.X
	vy := end.Y - start.Y

	uDotV := ux*vx + uy*vy
	uLen2 := ux*ux + uy*uy
	vLen2 := vx*vx + vy*vy

	return collectionResult{
		sqDistance: uLen2 - uDotV*uDotV/vLen2,
		ratio:      uDotV / vLen2,
	}, nil
}

// FindGatherEvents computes every gather event of a tick, ordered by the
// moment it happens. Gatherers that did not move are skipped.
func FindGatherEvents(provider ItemGathererProvider) []GatherEvent {
	var events []GatherEvent
	for g := 0; g < provider.GatherersCount(); g++ {
		gatherer := provider.Gatherer(g)
		if gatherer.Start == gatherer.End {
			continue
		}
		for i := 0; i < provider.ItemsCount(); i++ {
			item := provider.Item(i)
			result, err := tryCollect(gatherer.Start, gatherer.End, item.Position)
			if err != nil {
				continue
			}
			if result.collected(gatherer.Width + item.Width) {
				events = append(events, GatherEvent{
					ItemIndex:     i,
					GathererIndex: g,
					SqDistance:    result.sqDistance,
					Time:          result.ratio,
				})
			}
		}
	}
	sort.Slice(events, func(a, b int) bool {
		return events[a].Time < events[b].Time
	})
	return events
}
