package memory

import (
	"fmt"

	"github.com/google/btree"

	"github.com/storefront/dbquery/query"
)

const btreeDegree = 12

type orderByItem struct {
	Key                  []interface{}
	Record               *record
	DirectionMultipliers []int
}

func (item *orderByItem) Less(than btree.Item) bool {
	thanTyped, ok := than.(*orderByItem)
	if !ok {
		panic(fmt.Sprintf("invalid order by key comparison: %T", than))
	}

	for i := 0; i < len(item.Key); i++ {
		if comp := Compare(item.Key[i], thanTyped.Key[i]); comp != 0 {
			return comp*item.DirectionMultipliers[i] == -1
		}
	}

	// If keys are equal, differentiate by primary key.
	return Compare(item.Record.id, thanTyped.Record.id) == -1
}

// orderRecords sorts the records by the terms. Ordinal terms sort by list position,
// with values missing from the list last.
func orderRecords(records []*record, terms []query.OrderTerm) []*record {
	directionMultipliers := make([]int, len(terms))
	for i, term := range terms {
		directionMultipliers[i] = 1
		if term.Ordinal == nil && term.Descending {
			directionMultipliers[i] = -1
		}
	}

	tree := btree.New(btreeDegree)
	for _, rec := range records {
		key := make([]interface{}, len(terms))
		for i, term := range terms {
			if term.Ordinal != nil {
				key[i] = ordinalPosition(rec.row[term.Column], term.Ordinal)
			} else {
				key[i] = rec.row[term.Column]
			}
		}
		tree.ReplaceOrInsert(&orderByItem{
			Key:                  key,
			Record:               rec,
			DirectionMultipliers: directionMultipliers,
		})
	}

	out := make([]*record, 0, len(records))
	tree.Ascend(func(item btree.Item) bool {
		itemTyped, ok := item.(*orderByItem)
		if !ok {
			panic(fmt.Sprintf("invalid order by item: %v", item))
		}
		out = append(out, itemTyped.Record)
		return true
	})
	return out
}

func ordinalPosition(v interface{}, list []interface{}) int64 {
	if v != nil {
		for i := range list {
			if Compare(v, list[i]) == 0 {
				return int64(i)
			}
		}
	}
	return int64(len(list))
}
