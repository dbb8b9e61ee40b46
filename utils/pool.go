package utils

import (
	"sync"

	"github.com/oomph-ac/teesim/game/types"
)

// IDListPool is a pool of reusable entity id slices for proximity queries.
var IDListPool = sync.Pool{
	New: func() interface{} {
		s := make([]types.EntityID, 0, 64)
		return &s
	},
}

// GetIDList retrieves an id slice from the pool.
func GetIDList() *[]types.EntityID {
	list := IDListPool.Get().(*[]types.EntityID)
	*list = (*list)[:0]
	return list
}

// PutIDList returns an id slice to the pool.
func PutIDList(list *[]types.EntityID) {
	if list != nil {
		*list = (*list)[:0]
		IDListPool.Put(list)
	}
}

