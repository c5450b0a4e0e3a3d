package dummydb

import (
	"sync"
)

type (
	DB struct {
		cart *cartTable
	}

	cartTable struct {
		sync.RWMutex
		table map[string][]byte // serialized slot per owner
	}
)

func Open() (*DB, error) {
	db := &DB{
		cart: &cartTable{table: make(map[string][]byte)},
	}
	return db, nil
}
