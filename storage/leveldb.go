/*
 * Copyright 2022 The Entropychain Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package storage

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/entropychain/entropy/utils/log"
)

// LevelDB is a Database backed by a goleveldb file store.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens (or creates) a leveldb store at filename.
func NewLevelDB(filename string) (p *LevelDB, err error) {
	p = &LevelDB{}
	if p.db, err = leveldb.OpenFile(filename, nil); err != nil {
		err = errors.Wrap(err, "open database failed")
		return
	}
	log.WithField("path", filename).Debug("opened record store")
	return
}

// Get implements Database.Get.
func (p *LevelDB) Get(key []byte) (value []byte, err error) {
	if value, err = p.db.Get(key, nil); err == leveldb.ErrNotFound {
		err = ErrKeyNotFound
	} else if err != nil {
		err = errors.Wrap(err, "access leveldb failed")
	}
	return
}

// Has implements Database.Has.
func (p *LevelDB) Has(key []byte) (exists bool, err error) {
	if exists, err = p.db.Has(key, nil); err != nil {
		err = errors.Wrap(err, "access leveldb failed")
	}
	return
}

// Scan implements Database.Scan.
func (p *LevelDB) Scan(prefix []byte, each func(key, value []byte) bool) (err error) {
	it := p.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	for it.Next() {
		if !each(dup(it.Key()), dup(it.Value())) {
			break
		}
	}
	if err = it.Error(); err != nil {
		err = errors.Wrap(err, "iterate leveldb failed")
	}
	return
}

// Write implements Database.Write.
func (p *LevelDB) Write(b *Batch) (err error) {
	batch := new(leveldb.Batch)
	for _, op := range b.ops {
		if op.delete {
			batch.Delete(op.key)
		} else {
			batch.Put(op.key, op.value)
		}
	}
	if err = p.db.Write(batch, nil); err != nil {
		err = errors.Wrap(err, "write leveldb batch failed")
	}
	return
}

// Close implements Database.Close.
func (p *LevelDB) Close() error {
	return p.db.Close()
}
